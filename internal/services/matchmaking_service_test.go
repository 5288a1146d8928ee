package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type stubSelectionReader struct {
	ids []uuid.UUID
	err error
}

func (s *stubSelectionReader) ListSelectedIDs(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubTrainerSearcher struct {
	result       []models.User
	lastSearcher uuid.UUID
	lastIDs      []uuid.UUID
	called       bool
}

func (s *stubTrainerSearcher) SearchTrainers(_ context.Context, searcherID uuid.UUID, interestIDs []uuid.UUID) ([]models.User, error) {
	s.called = true
	s.lastSearcher = searcherID
	s.lastIDs = interestIDs
	return s.result, nil
}

func TestFindTrainersWithoutInterestsMatchesNobody(t *testing.T) {
	searcher := &stubTrainerSearcher{}
	service := NewMatchmakingService(&stubSelectionReader{}, searcher)

	got, err := service.FindTrainers(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("FindTrainers: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
	if searcher.called {
		t.Fatal("search must not run for an empty selection")
	}
}

func TestFindTrainersForwardsSelection(t *testing.T) {
	interests := []uuid.UUID{uuid.New(), uuid.New()}
	trainerID := uuid.New()
	searcher := &stubTrainerSearcher{result: []models.User{{ID: trainerID, Username: "coach"}}}
	service := NewMatchmakingService(&stubSelectionReader{ids: interests}, searcher)

	userID := uuid.New()
	got, err := service.FindTrainers(context.Background(), userID)
	if err != nil {
		t.Fatalf("FindTrainers: %v", err)
	}
	if len(got) != 1 || got[0].ID != trainerID {
		t.Fatalf("unexpected result: %+v", got)
	}
	if searcher.lastSearcher != userID {
		t.Fatalf("expected searcher %s, got %s", userID, searcher.lastSearcher)
	}
	if len(searcher.lastIDs) != 2 {
		t.Fatalf("expected 2 interest ids forwarded, got %d", len(searcher.lastIDs))
	}
}
