package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lw-rpg-backend/pkg/jwt"
)

// Token là kết quả login
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService xác thực admin bằng một password duy nhất (bcrypt hash trong config)
type AuthService struct {
	passwordHash []byte
	jwt          *jwt.Manager
}

func NewAuthService(passwordHash string, manager *jwt.Manager) *AuthService {
	return &AuthService{passwordHash: []byte(passwordHash), jwt: manager}
}

func (s *AuthService) Login(ctx context.Context, password string) (*Token, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrAuthDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken("admin", jwt.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// HashPassword sinh bcrypt hash cho ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
