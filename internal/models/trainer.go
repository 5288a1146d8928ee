package models

import "github.com/google/uuid"

// TrainerRequest is a user's ask to be paired with a trainer. Rows are
// never deleted, only marked processed, so the table doubles as an audit
// trail of every pairing attempt.
type TrainerRequest struct {
	UserID      uuid.UUID `json:"user_uuid"`
	TrainerID   uuid.UUID `json:"trainer_uuid"`
	CreatedAt   int64     `json:"created_at"`
	IsProcessed bool      `json:"is_processed"`
}

type Interest struct {
	ID   uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// InterestStatus is an Interest annotated with whether the requesting
// identity has selected it.
type InterestStatus struct {
	ID       uuid.UUID `json:"uuid"`
	Name     string    `json:"name"`
	Selected bool      `json:"selected"`
}

// Recommendation records that a trainer assigned a workout template to a
// paired user. Composite key (user, trainer, workout).
type Recommendation struct {
	UserID    uuid.UUID `json:"user_uuid"`
	TrainerID uuid.UUID `json:"trainer_uuid"`
	WorkoutID uuid.UUID `json:"workout_uuid"`
}
