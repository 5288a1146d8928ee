package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type RecommendationRepository struct {
	db DBTX
}

func NewRecommendationRepository(db DBTX) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

func (r *RecommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	query := `
		INSERT INTO recommendation (user_uuid, trainer_uuid, workout_uuid)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, rec.UserID, rec.TrainerID, rec.WorkoutID)
	return err
}

// ListWorkoutsForPair returns the workout templates a trainer has
// recommended to a specific user.
func (r *RecommendationRepository) ListWorkoutsForPair(ctx context.Context, userID, trainerID uuid.UUID) ([]models.Workout, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.uuid, w.name, w.description, w.is_public, w.creator_uuid
		FROM workout_content w
		JOIN recommendation rec ON rec.workout_uuid = w.uuid
		WHERE rec.user_uuid = $1 AND rec.trainer_uuid = $2
		ORDER BY w.name
	`, userID, trainerID)
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

func (r *RecommendationRepository) Delete(ctx context.Context, userID, trainerID, workoutID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM recommendation
		WHERE user_uuid = $1 AND trainer_uuid = $2 AND workout_uuid = $3
	`, userID, trainerID, workoutID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteForPair clears every recommendation scoped to exactly this
// (user, trainer) pair. Recommendations from other trainers survive.
func (r *RecommendationRepository) DeleteForPair(ctx context.Context, userID, trainerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM recommendation
		WHERE user_uuid = $1 AND trainer_uuid = $2
	`, userID, trainerID)
	return err
}

// DeleteByTrainer clears everything the trainer has recommended,
// regardless of recipient.
func (r *RecommendationRepository) DeleteByTrainer(ctx context.Context, trainerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM recommendation WHERE trainer_uuid = $1
	`, trainerID)
	return err
}

// DeleteByIdentity removes recommendations where the identity is either
// the user or the trainer. Used when the account as a whole goes away,
// by the deletion cascade and by disable.
func (r *RecommendationRepository) DeleteByIdentity(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM recommendation
		WHERE user_uuid = $1 OR trainer_uuid = $1
	`, id)
	return err
}
