package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin là role duy nhất được phép mutate roster
const RoleAdmin = "admin"

// Claims represents JWT claims structure
type Claims struct {
	Subject string `json:"sub_name"`
	Role    string `json:"role"`
	Type    string `json:"type"` // "access"
	jwt.RegisteredClaims
}

// Manager handles JWT operations
type Manager struct {
	secret string
	expiry time.Duration
}

// NewManager creates new JWT manager
func NewManager(secret string, expiry time.Duration) *Manager {
	return &Manager{secret: secret, expiry: expiry}
}

// GenerateAccessToken sinh access token cho subject/role
func (m *Manager) GenerateAccessToken(subject, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.expiry)
	claims := Claims{
		Subject: subject,
		Role:    role,
		Type:    "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates and parses token
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// ValidateAccessToken validates access token specifically
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != "access" {
		return nil, fmt.Errorf("invalid token type: expected access, got %s", claims.Type)
	}

	return claims, nil
}
