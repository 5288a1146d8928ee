package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type WorkoutRepository struct {
	db DBTX
}

func NewWorkoutRepository(db DBTX) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

func (r *WorkoutRepository) GetTemplate(ctx context.Context, workoutID, creatorID uuid.UUID) (*models.Workout, error) {
	query := `
		SELECT w.uuid, w.name, w.description, w.is_public, w.creator_uuid
		FROM workout_content w
		JOIN workout_template t ON t.workout_uuid = w.uuid
		WHERE w.uuid = $1 AND w.creator_uuid = $2
	`
	var workout models.Workout
	err := r.db.QueryRow(ctx, query, workoutID, creatorID).
		Scan(&workout.ID, &workout.Name, &workout.Description, &workout.IsPublic, &workout.CreatorID)
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

// ListTemplatesNotRecommended returns the trainer's own templates that
// have not yet been recommended to the given user, the candidate set for
// the next recommendation.
func (r *WorkoutRepository) ListTemplatesNotRecommended(ctx context.Context, trainerID, userID uuid.UUID) ([]models.Workout, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.uuid, w.name, w.description, w.is_public, w.creator_uuid
		FROM workout_content w
		JOIN workout_template t ON t.workout_uuid = w.uuid
		WHERE w.creator_uuid = $1
		  AND w.uuid NOT IN (
			SELECT workout_uuid FROM recommendation
			WHERE user_uuid = $2 AND trainer_uuid = $1
		  )
		ORDER BY w.name
	`, trainerID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]models.Workout, 0)
	for rows.Next() {
		var workout models.Workout
		if err := rows.Scan(&workout.ID, &workout.Name, &workout.Description, &workout.IsPublic, &workout.CreatorID); err != nil {
			return nil, err
		}
		workouts = append(workouts, workout)
	}
	return workouts, rows.Err()
}

// DeleteByCreator removes every workout the identity authored, children
// first so no foreign key is left dangling mid-cascade: sets, entries,
// instance and template markers, recommendations pointing at the
// workouts, then the content rows themselves.
func (r *WorkoutRepository) DeleteByCreator(ctx context.Context, creatorID uuid.UUID) error {
	statements := []string{
		`DELETE FROM workout_set
		 WHERE workout_uuid IN (SELECT uuid FROM workout_content WHERE creator_uuid = $1)`,
		`DELETE FROM workout_entry
		 WHERE workout_uuid IN (SELECT uuid FROM workout_content WHERE creator_uuid = $1)`,
		`DELETE FROM workout_instance
		 WHERE workout_uuid IN (SELECT uuid FROM workout_content WHERE creator_uuid = $1)`,
		`DELETE FROM workout_template
		 WHERE workout_uuid IN (SELECT uuid FROM workout_content WHERE creator_uuid = $1)`,
		`DELETE FROM recommendation
		 WHERE workout_uuid IN (SELECT uuid FROM workout_content WHERE creator_uuid = $1)`,
		`DELETE FROM workout_content WHERE creator_uuid = $1`,
	}
	for _, statement := range statements {
		if _, err := r.db.Exec(ctx, statement, creatorID); err != nil {
			return err
		}
	}
	return nil
}
