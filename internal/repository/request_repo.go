package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type RequestRepository struct {
	db DBTX
}

func NewRequestRepository(db DBTX) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts an unprocessed request. A partial unique index on
// (user_uuid) WHERE NOT is_processed makes the database the final
// arbiter of the one-pending-request-per-user invariant; callers map the
// unique violation to a conflict.
func (r *RequestRepository) Create(ctx context.Context, request *models.TrainerRequest) error {
	query := `
		INSERT INTO trainer_request (user_uuid, trainer_uuid, created_at, is_processed)
		VALUES ($1, $2, $3, FALSE)
	`
	_, err := r.db.Exec(ctx, query, request.UserID, request.TrainerID, request.CreatedAt)
	return err
}

func (r *RequestRepository) GetPendingByUser(ctx context.Context, userID uuid.UUID) (*models.TrainerRequest, error) {
	query := `
		SELECT user_uuid, trainer_uuid, created_at, is_processed
		FROM trainer_request
		WHERE user_uuid = $1 AND is_processed = FALSE
	`
	var request models.TrainerRequest
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&request.UserID, &request.TrainerID, &request.CreatedAt, &request.IsProcessed)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListPendingByTrainer returns unprocessed requests oldest first, the
// order trainers review them in.
func (r *RequestRepository) ListPendingByTrainer(ctx context.Context, trainerID uuid.UUID) ([]models.TrainerRequest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_uuid, trainer_uuid, created_at, is_processed
		FROM trainer_request
		WHERE trainer_uuid = $1 AND is_processed = FALSE
		ORDER BY created_at ASC
	`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.TrainerRequest, 0)
	for rows.Next() {
		var request models.TrainerRequest
		if err := rows.Scan(&request.UserID, &request.TrainerID, &request.CreatedAt, &request.IsProcessed); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// MarkProcessed flags the pending request for the pair. Returns false
// when no pending request exists. History rows are never deleted here;
// the request table is an append-only audit trail.
func (r *RequestRepository) MarkProcessed(ctx context.Context, userID, trainerID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE trainer_request
		SET is_processed = TRUE
		WHERE user_uuid = $1 AND trainer_uuid = $2 AND is_processed = FALSE
	`, userID, trainerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkPendingProcessed flags the user's pending request regardless of its
// target trainer. Used for user-initiated cancellation.
func (r *RequestRepository) MarkPendingProcessed(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE trainer_request
		SET is_processed = TRUE
		WHERE user_uuid = $1 AND is_processed = FALSE
	`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkTrainerPendingProcessed flags every pending request aimed at the
// trainer. Used when a trainer resigns or is disabled so stale requests
// do not linger in anyone's inbox.
func (r *RequestRepository) MarkTrainerPendingProcessed(ctx context.Context, trainerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE trainer_request
		SET is_processed = TRUE
		WHERE trainer_uuid = $1 AND is_processed = FALSE
	`, trainerID)
	return err
}

// DeleteByIdentity removes every request where the identity is either
// party. Only the account deletion cascade may call this.
func (r *RequestRepository) DeleteByIdentity(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM trainer_request
		WHERE user_uuid = $1 OR trainer_uuid = $1
	`, id)
	return err
}
