package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoginRequest - POST /auth/login
type LoginRequest struct {
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(1, 256)),
	)
}

// CharacterCreated - response của POST /characters
type CharacterCreated struct {
	Index     int         `json:"index"`
	Character interface{} `json:"character"`
}

// SubmitResponse - response của POST /roster/submit
type SubmitResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Count      int       `json:"count"`
	Async      bool      `json:"async"`
	CreatedAt  time.Time `json:"created_at"`
}
