package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type InterestRepository struct {
	db DBTX
}

func NewInterestRepository(db DBTX) *InterestRepository {
	return &InterestRepository{db: db}
}

func (r *InterestRepository) ListAll(ctx context.Context) ([]models.Interest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT uuid, name
		FROM interest
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interests := make([]models.Interest, 0)
	for rows.Next() {
		var interest models.Interest
		if err := rows.Scan(&interest.ID, &interest.Name); err != nil {
			return nil, err
		}
		interests = append(interests, interest)
	}
	return interests, rows.Err()
}

func (r *InterestRepository) ListSelectedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT interest_uuid
		FROM interest_selection
		WHERE user_uuid = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceSelection swaps the identity's whole selection set: delete then
// insert, never a diff. Callers run it inside a transaction.
func (r *InterestRepository) ReplaceSelection(ctx context.Context, userID uuid.UUID, interestIDs []uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM interest_selection WHERE user_uuid = $1
	`, userID); err != nil {
		return err
	}
	for _, interestID := range interestIDs {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO interest_selection (user_uuid, interest_uuid)
			VALUES ($1, $2)
			ON CONFLICT (user_uuid, interest_uuid) DO NOTHING
		`, userID, interestID); err != nil {
			return err
		}
	}
	return nil
}

func (r *InterestRepository) DeleteSelections(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM interest_selection WHERE user_uuid = $1
	`, userID)
	return err
}
