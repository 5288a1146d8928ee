package models

import "github.com/google/uuid"

type User struct {
	ID        uuid.UUID  `json:"uuid"`
	Username  string     `json:"username"`
	FullName  *string    `json:"full_name"`
	Biography *string    `json:"biography"`
	TrainerID *uuid.UUID `json:"trainer_uuid"`
}

// UserCredential is kept apart from the profile so that disabling an
// account or rotating a password never touches profile fields.
type UserCredential struct {
	UserID       uuid.UUID `json:"user_uuid"`
	PasswordHash string    `json:"-"`
	IsDisabled   bool      `json:"is_disabled"`
}
