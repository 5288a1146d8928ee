package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type interestSelectionReader interface {
	ListSelectedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type trainerSearcher interface {
	SearchTrainers(ctx context.Context, searcherID uuid.UUID, interestIDs []uuid.UUID) ([]models.User, error)
}

// MatchmakingService suggests trainers whose selected interests cover
// every interest the searching user picked.
type MatchmakingService struct {
	interestRepo interestSelectionReader
	userRepo     trainerSearcher
}

func NewMatchmakingService(interestRepo interestSelectionReader, userRepo trainerSearcher) *MatchmakingService {
	return &MatchmakingService{interestRepo: interestRepo, userRepo: userRepo}
}

// FindTrainers returns enabled trainers whose interest set is a superset
// of the user's. A user with no selected interests matches nobody rather
// than everybody.
func (s *MatchmakingService) FindTrainers(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	selected, err := s.interestRepo.ListSelectedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return []models.User{}, nil
	}
	return s.userRepo.SearchTrainers(ctx, userID, selected)
}
