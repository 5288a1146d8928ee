package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/j-planelles/projecte-dam/internal/models"
	"github.com/j-planelles/projecte-dam/internal/repository"
	"github.com/j-planelles/projecte-dam/pkg/utils"
)

type interestCatalog interface {
	ListAll(ctx context.Context) ([]models.Interest, error)
	ListSelectedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type profileWriter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

type ProfileService struct {
	db           *pgxpool.Pool
	userRepo     profileWriter
	interestRepo interestCatalog
}

func NewProfileService(db *pgxpool.Pool, userRepo profileWriter, interestRepo interestCatalog) *ProfileService {
	return &ProfileService{db: db, userRepo: userRepo, interestRepo: interestRepo}
}

// UpdateProfile rewrites the identity's public fields. The username stays
// unique; a taken name surfaces as ErrConflict.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, username string, fullName, biography *string) (*models.User, error) {
	if username == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Username = username
	user.FullName = fullName
	user.Biography = biography

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePasswordHash(ctx, userID, hash)
}

// ListInterests returns the whole catalogue annotated with whether the
// identity currently has each entry selected.
func (s *ProfileService) ListInterests(ctx context.Context, userID uuid.UUID) ([]models.InterestStatus, error) {
	all, err := s.interestRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := s.interestRepo.ListSelectedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	selectedSet := make(map[uuid.UUID]struct{}, len(selected))
	for _, id := range selected {
		selectedSet[id] = struct{}{}
	}

	statuses := make([]models.InterestStatus, 0, len(all))
	for _, interest := range all {
		_, isSelected := selectedSet[interest.ID]
		statuses = append(statuses, models.InterestStatus{
			ID:       interest.ID,
			Name:     interest.Name,
			Selected: isSelected,
		})
	}
	return statuses, nil
}

// SetInterests replaces the identity's selection wholesale. Unknown
// interest ids are rejected before anything is written.
func (s *ProfileService) SetInterests(ctx context.Context, userID uuid.UUID, interestIDs []uuid.UUID) error {
	all, err := s.interestRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]struct{}, len(all))
	for _, interest := range all {
		known[interest.ID] = struct{}{}
	}
	for _, id := range interestIDs {
		if _, ok := known[id]; !ok {
			return ErrNotFound
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txInterestRepo := repository.NewInterestRepository(tx)
	if err := txInterestRepo.ReplaceSelection(ctx, userID, interestIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
