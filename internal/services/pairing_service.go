package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/j-planelles/projecte-dam/internal/models"
	"github.com/j-planelles/projecte-dam/internal/repository"
)

var (
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotPaired    = errors.New("not paired")
)

type userDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByTrainer(ctx context.Context, trainerID uuid.UUID) ([]models.User, error)
}

type credentialReader interface {
	GetCredentialByID(ctx context.Context, userID uuid.UUID) (*models.UserCredential, error)
}

type roleReader interface {
	HasTrainerRole(ctx context.Context, userID uuid.UUID) (bool, error)
}

type requestStore interface {
	Create(ctx context.Context, request *models.TrainerRequest) error
	GetPendingByUser(ctx context.Context, userID uuid.UUID) (*models.TrainerRequest, error)
	ListPendingByTrainer(ctx context.Context, trainerID uuid.UUID) ([]models.TrainerRequest, error)
	MarkPendingProcessed(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PairingService drives the trainer/user relationship lifecycle: request,
// accept or deny, and unpair. Writes that must observe a consistent view
// of the user row run inside a transaction holding an advisory lock keyed
// on the user, so two trainers accepting the same user cannot both win.
type PairingService struct {
	db          *pgxpool.Pool
	userRepo    userDirectory
	credRepo    credentialReader
	roleRepo    roleReader
	requestRepo requestStore
}

func NewPairingService(
	db *pgxpool.Pool,
	userRepo userDirectory,
	credRepo credentialReader,
	roleRepo roleReader,
	requestRepo requestStore,
) *PairingService {
	return &PairingService{
		db:          db,
		userRepo:    userRepo,
		credRepo:    credRepo,
		roleRepo:    roleRepo,
		requestRepo: requestRepo,
	}
}

// CreateRequest files a pending request from the user to the trainer.
// The target must be an enabled trainer, the user must be unpaired, and
// only one pending request may exist per user at a time.
func (s *PairingService) CreateRequest(ctx context.Context, userID, trainerID uuid.UUID) error {
	if userID == trainerID {
		return ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TrainerID != nil {
		return ErrConflict
	}

	if _, err := s.userRepo.GetByID(ctx, trainerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	isTrainer, err := s.roleRepo.HasTrainerRole(ctx, trainerID)
	if err != nil {
		return err
	}
	if !isTrainer {
		return ErrNotFound
	}
	cred, err := s.credRepo.GetCredentialByID(ctx, trainerID)
	if err != nil {
		return err
	}
	if cred.IsDisabled {
		return ErrNotFound
	}

	err = s.requestRepo.Create(ctx, &models.TrainerRequest{
		UserID:    userID,
		TrainerID: trainerID,
		CreatedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

// PendingTrainer returns the trainer targeted by the user's open request.
// A paired user has no open request by construction, so the pairing is
// reported as ErrConflict before the request lookup.
func (s *PairingService) PendingTrainer(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TrainerID != nil {
		return nil, ErrConflict
	}

	request, err := s.requestRepo.GetPendingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.userRepo.GetByID(ctx, request.TrainerID)
}

// PairedTrainer returns the user's current trainer, or ErrNotFound when
// the user is unpaired.
func (s *PairingService) PairedTrainer(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TrainerID == nil {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(ctx, *user.TrainerID)
}

// CancelOwnRequest withdraws the user's pending request, whoever its
// target. The request row survives as processed history. An already
// paired user gets ErrConflict, there is nothing left to withdraw.
func (s *PairingService) CancelOwnRequest(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TrainerID != nil {
		return ErrConflict
	}

	cancelled, err := s.requestRepo.MarkPendingProcessed(ctx, userID)
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrNotFound
	}
	return nil
}

// ListPendingRequests returns the identities queued in the trainer's
// inbox, oldest request first.
func (s *PairingService) ListPendingRequests(ctx context.Context, trainerID uuid.UUID) ([]models.User, error) {
	requests, err := s.requestRepo.ListPendingByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(requests))
	for _, request := range requests {
		user, err := s.userRepo.GetByID(ctx, request.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// Resolve accepts or denies a pending request aimed at the trainer. Both
// outcomes consume the request; acceptance additionally binds the user to
// the trainer, failing with ErrConflict when another trainer got there
// first.
func (s *PairingService) Resolve(ctx context.Context, trainerID, userID uuid.UUID, accept bool) error {
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

	txRequestRepo := repository.NewRequestRepository(tx)
	txUserRepo := repository.NewUserRepository(tx)

	processed, err := txRequestRepo.MarkProcessed(ctx, userID, trainerID)
	if err != nil {
		return err
	}
	if !processed {
		return ErrNotFound
	}

	if accept {
		assigned, err := txUserRepo.AssignTrainer(ctx, userID, trainerID)
		if err != nil {
			return err
		}
		if !assigned {
			return ErrConflict
		}
	}

	return tx.Commit(ctx)
}

// PairedUsers lists the trainer's current trainees.
func (s *PairingService) PairedUsers(ctx context.Context, trainerID uuid.UUID) ([]models.User, error) {
	return s.userRepo.ListByTrainer(ctx, trainerID)
}

// PairedUser returns one trainee, guarding that the pairing actually
// exists before handing out profile data.
func (s *PairingService) PairedUser(ctx context.Context, trainerID, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if user.TrainerID == nil || *user.TrainerID != trainerID {
		return nil, ErrNotFound
	}
	return user, nil
}

// Unpair dissolves the pairing between the user and the trainer and
// drops the recommendations scoped to that pair. Either side may
// initiate it; the conditional update makes it idempotent under races.
func (s *PairingService) Unpair(ctx context.Context, userID, trainerID uuid.UUID) error {
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
	txRecRepo := repository.NewRecommendationRepository(tx)

	cleared, err := txUserRepo.ClearTrainer(ctx, userID, trainerID)
	if err != nil {
		return err
	}
	if !cleared {
		return ErrNotFound
	}

	if err := txRecRepo.DeleteForPair(ctx, userID, trainerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
