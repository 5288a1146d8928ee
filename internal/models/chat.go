package models

import "github.com/google/uuid"

// Message is one chat message between a user and their trainer. The
// composite key (user, trainer, timestamp) keeps a conversation unique at
// any instant.
type Message struct {
	UserID          uuid.UUID `json:"user_uuid"`
	TrainerID       uuid.UUID `json:"trainer_uuid"`
	Timestamp       int64     `json:"timestamp"`
	Content         string    `json:"content"`
	IsSentByTrainer bool      `json:"is_sent_by_trainer"`
}
