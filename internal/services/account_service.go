package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/j-planelles/projecte-dam/internal/repository"
)

// AccountService owns the lifecycle edges of an identity: granting and
// resigning the trainer capability, soft disable and the hard deletion
// cascade. The destructive paths run inside one transaction under an
// advisory lock on the identity, so a concurrent pairing operation can
// never observe a half-removed account.
type AccountService struct {
	db       *pgxpool.Pool
	roleRepo *repository.RoleRepository
}

func NewAccountService(db *pgxpool.Pool, roleRepo *repository.RoleRepository) *AccountService {
	return &AccountService{db: db, roleRepo: roleRepo}
}

func (s *AccountService) BecomeTrainer(ctx context.Context, userID uuid.UUID) error {
	return s.roleRepo.GrantTrainerRole(ctx, userID)
}

// ResignTrainer revokes the trainer capability and cleans up everything
// that only made sense while it existed: current trainees are unlinked,
// pending requests aimed at the trainer are closed and the trainer's
// recommendations disappear. Message history stays.
func (s *AccountService) ResignTrainer(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", userID.String()); err != nil {
		return err
	}

	txUserRepo := repository.NewUserRepository(tx)
	txRoleRepo := repository.NewRoleRepository(tx)
	txRequestRepo := repository.NewRequestRepository(tx)
	txRecRepo := repository.NewRecommendationRepository(tx)

	if err := txUserRepo.UnlinkTrainees(ctx, userID); err != nil {
		return err
	}
	if err := txRequestRepo.MarkTrainerPendingProcessed(ctx, userID); err != nil {
		return err
	}
	if err := txRecRepo.DeleteByTrainer(ctx, userID); err != nil {
		return err
	}
	if err := txRoleRepo.RevokeTrainerRole(ctx, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Disable retires the account without destroying its data. The login is
// blocked, the username is anonymised so it can be registered again, any
// trainees are released, open requests on both sides are closed and
// recommendations involving the account on either side are dropped.
func (s *AccountService) Disable(ctx context.Context, userID uuid.UUID) error {
	suffix, err := randomSuffix()
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", userID.String()); err != nil {
		return err
	}

	txUserRepo := repository.NewUserRepository(tx)
	txRequestRepo := repository.NewRequestRepository(tx)
	txRecRepo := repository.NewRecommendationRepository(tx)

	user, err := txUserRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := txUserRepo.UnlinkTrainees(ctx, userID); err != nil {
		return err
	}
	if err := txRecRepo.DeleteByIdentity(ctx, userID); err != nil {
		return err
	}
	if _, err := txRequestRepo.MarkPendingProcessed(ctx, userID); err != nil {
		return err
	}
	if err := txRequestRepo.MarkTrainerPendingProcessed(ctx, userID); err != nil {
		return err
	}
	if err := txUserRepo.RenameUser(ctx, userID, fmt.Sprintf("%s-deleted-%s", user.Username, suffix)); err != nil {
		return err
	}
	if err := txUserRepo.SetDisabled(ctx, userID, true); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete erases the identity and every row that references it, children
// first. Each step is idempotent, so retrying after a failed attempt is
// safe.
func (s *AccountService) Delete(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", userID.String()); err != nil {
		return err
	}

	txUserRepo := repository.NewUserRepository(tx)
	txRoleRepo := repository.NewRoleRepository(tx)
	txRequestRepo := repository.NewRequestRepository(tx)
	txRecRepo := repository.NewRecommendationRepository(tx)
	txMessageRepo := repository.NewMessageRepository(tx)
	txInterestRepo := repository.NewInterestRepository(tx)
	txWorkoutRepo := repository.NewWorkoutRepository(tx)
	txExerciseRepo := repository.NewExerciseRepository(tx)

	if err := txMessageRepo.DeleteByIdentity(ctx, userID); err != nil {
		return err
	}
	if err := txWorkoutRepo.DeleteByCreator(ctx, userID); err != nil {
		return err
	}
	if err := txExerciseRepo.DeleteByCreator(ctx, userID); err != nil {
		return err
	}
	if err := txRecRepo.DeleteByIdentity(ctx, userID); err != nil {
		return err
	}
	if err := txRequestRepo.DeleteByIdentity(ctx, userID); err != nil {
		return err
	}
	if err := txInterestRepo.DeleteSelections(ctx, userID); err != nil {
		return err
	}
	if err := txRoleRepo.DeleteRoles(ctx, userID); err != nil {
		return err
	}
	if err := txUserRepo.UnlinkTrainees(ctx, userID); err != nil {
		return err
	}
	if err := txUserRepo.DeleteCredential(ctx, userID); err != nil {
		return err
	}
	if err := txUserRepo.Delete(ctx, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func randomSuffix() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
