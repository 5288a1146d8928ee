package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO message (user_uuid, trainer_uuid, timestamp, content, is_sent_by_trainer)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		message.UserID, message.TrainerID, message.Timestamp, message.Content, message.IsSentByTrainer)
	return err
}

// ListForPair returns the conversation oldest first.
func (r *MessageRepository) ListForPair(ctx context.Context, userID, trainerID uuid.UUID) ([]models.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_uuid, trainer_uuid, timestamp, content, is_sent_by_trainer
		FROM message
		WHERE user_uuid = $1 AND trainer_uuid = $2
		ORDER BY timestamp ASC
	`, userID, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var message models.Message
		if err := rows.Scan(&message.UserID, &message.TrainerID, &message.Timestamp,
			&message.Content, &message.IsSentByTrainer); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// DeleteByIdentity removes every message where the identity is either
// party. Only the account deletion cascade calls this.
func (r *MessageRepository) DeleteByIdentity(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM message
		WHERE user_uuid = $1 OR trainer_uuid = $1
	`, id)
	return err
}
