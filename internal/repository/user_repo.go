package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (uuid, username, full_name, biography)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.FullName, user.Biography)
	return err
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT uuid, username, full_name, biography, trainer_uuid
		FROM users
		WHERE username = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.FullName, &user.Biography, &user.TrainerID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT uuid, username, full_name, biography, trainer_uuid
		FROM users
		WHERE uuid = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.FullName, &user.Biography, &user.TrainerID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $2, full_name = $3, biography = $4
		WHERE uuid = $1
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.FullName, user.Biography)
	return err
}

// AssignTrainer links the user to the trainer only when no other trainer
// holds the link yet. Returns false when a concurrent accept already
// claimed the user.
func (r *UserRepository) AssignTrainer(ctx context.Context, userID, trainerID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET trainer_uuid = $2
		WHERE uuid = $1 AND trainer_uuid IS NULL
	`, userID, trainerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClearTrainer breaks the pairing only when it currently points at the
// given trainer.
func (r *UserRepository) ClearTrainer(ctx context.Context, userID, trainerID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET trainer_uuid = NULL
		WHERE uuid = $1 AND trainer_uuid = $2
	`, userID, trainerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) UnlinkTrainees(ctx context.Context, trainerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET trainer_uuid = NULL
		WHERE trainer_uuid = $1
	`, trainerID)
	return err
}

func (r *UserRepository) ListByTrainer(ctx context.Context, trainerID uuid.UUID) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT uuid, username, full_name, biography, trainer_uuid
		FROM users
		WHERE trainer_uuid = $1
		ORDER BY username
	`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.Biography, &user.TrainerID); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SearchTrainers returns every enabled trainer, other than the searcher,
// whose selected interests contain all of the given interest ids.
func (r *UserRepository) SearchTrainers(ctx context.Context, searcherID uuid.UUID, interestIDs []uuid.UUID) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.uuid, u.username, u.full_name, u.biography, u.trainer_uuid
		FROM users u
		JOIN trainer_role t ON t.user_uuid = u.uuid
		JOIN user_credential c ON c.user_uuid = u.uuid
		WHERE c.is_disabled = FALSE
		  AND u.uuid <> $1
		  AND u.uuid IN (
			SELECT s.user_uuid
			FROM interest_selection s
			WHERE s.interest_uuid = ANY($2)
			GROUP BY s.user_uuid
			HAVING COUNT(DISTINCT s.interest_uuid) = $3
		  )
		ORDER BY u.username
	`, searcherID, interestIDs, len(interestIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trainers := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.Biography, &user.TrainerID); err != nil {
			return nil, err
		}
		trainers = append(trainers, user)
	}
	return trainers, rows.Err()
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE uuid = $1`, id)
	return err
}

func (r *UserRepository) CreateCredential(ctx context.Context, credential *models.UserCredential) error {
	query := `
		INSERT INTO user_credential (user_uuid, password_hash, is_disabled)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, credential.UserID, credential.PasswordHash, credential.IsDisabled)
	return err
}

func (r *UserRepository) GetCredentialByID(ctx context.Context, id uuid.UUID) (*models.UserCredential, error) {
	query := `
		SELECT user_uuid, password_hash, is_disabled
		FROM user_credential
		WHERE user_uuid = $1
	`
	var credential models.UserCredential
	err := r.db.QueryRow(ctx, query, id).
		Scan(&credential.UserID, &credential.PasswordHash, &credential.IsDisabled)
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_credential
		SET password_hash = $2
		WHERE user_uuid = $1
	`, id, passwordHash)
	return err
}

func (r *UserRepository) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_credential
		SET is_disabled = $2
		WHERE user_uuid = $1
	`, id, disabled)
	return err
}

func (r *UserRepository) RenameUser(ctx context.Context, id uuid.UUID, username string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET username = $2
		WHERE uuid = $1
	`, id, username)
	return err
}

func (r *UserRepository) DeleteCredential(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_credential WHERE user_uuid = $1`, id)
	return err
}
