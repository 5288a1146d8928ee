package repository

import (
	"context"

	"github.com/google/uuid"
)

// RoleRepository manages the capability marker tables. A role is granted
// by the mere existence of a row; there is no flag on the user itself.
type RoleRepository struct {
	db DBTX
}

func NewRoleRepository(db DBTX) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) HasTrainerRole(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM trainer_role WHERE user_uuid = $1)
	`, userID).Scan(&exists)
	return exists, err
}

func (r *RoleRepository) GrantTrainerRole(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO trainer_role (user_uuid) VALUES ($1)
		ON CONFLICT (user_uuid) DO NOTHING
	`, userID)
	return err
}

func (r *RoleRepository) RevokeTrainerRole(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM trainer_role WHERE user_uuid = $1`, userID)
	return err
}

// DeleteRoles strips every capability marker for the identity. Used by
// the account deletion cascade; absent rows are a no-op.
func (r *RoleRepository) DeleteRoles(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM trainer_role WHERE user_uuid = $1`, userID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM admin_role WHERE user_uuid = $1`, userID)
	return err
}
