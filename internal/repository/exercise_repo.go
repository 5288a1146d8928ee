package repository

import (
	"context"

	"github.com/google/uuid"
)

type ExerciseRepository struct {
	db DBTX
}

func NewExerciseRepository(db DBTX) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// DeleteByCreator drops the identity's exercise catalogue. Workout
// entries referencing these exercises must already be gone, so the
// deletion cascade runs this after the workout purge.
func (r *ExerciseRepository) DeleteByCreator(ctx context.Context, creatorID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM exercise WHERE creator_uuid = $1
	`, creatorID)
	return err
}
