package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type stubMessageStore struct {
	created    []*models.Message
	listResult []models.Message
	lastUser   uuid.UUID
	lastCoach  uuid.UUID
}

func (s *stubMessageStore) Create(_ context.Context, message *models.Message) error {
	s.created = append(s.created, message)
	return nil
}

func (s *stubMessageStore) ListForPair(_ context.Context, userID, trainerID uuid.UUID) ([]models.Message, error) {
	s.lastUser = userID
	s.lastCoach = trainerID
	return s.listResult, nil
}

func newChatFixture() (*ChatService, *stubMessageStore, *stubUserDirectory) {
	messages := &stubMessageStore{}
	users := &stubUserDirectory{users: make(map[uuid.UUID]*models.User)}
	return NewChatService(messages, users), messages, users
}

func TestListForUserRequiresPairing(t *testing.T) {
	service, _, users := newChatFixture()

	userID := uuid.New()
	users.users[userID] = &models.User{ID: userID}

	if _, err := service.ListForUser(context.Background(), userID); !errors.Is(err, ErrNotPaired) {
		t.Fatalf("expected ErrNotPaired, got %v", err)
	}
}

func TestSendFromUserTrimsAndTagsMessage(t *testing.T) {
	service, messages, users := newChatFixture()

	trainerID := uuid.New()
	userID := uuid.New()
	users.users[userID] = &models.User{ID: userID, TrainerID: &trainerID}

	message, err := service.SendFromUser(context.Background(), userID, "  hello coach  ")
	if err != nil {
		t.Fatalf("SendFromUser: %v", err)
	}
	if message.Content != "hello coach" {
		t.Fatalf("expected trimmed content, got %q", message.Content)
	}
	if message.IsSentByTrainer {
		t.Fatal("user message must not be tagged as trainer-sent")
	}
	if message.TrainerID != trainerID {
		t.Fatalf("expected trainer %s, got %s", trainerID, message.TrainerID)
	}
	if len(messages.created) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(messages.created))
	}
}

func TestSendFromUserRejectsEmptyContent(t *testing.T) {
	service, _, users := newChatFixture()

	trainerID := uuid.New()
	userID := uuid.New()
	users.users[userID] = &models.User{ID: userID, TrainerID: &trainerID}

	if _, err := service.SendFromUser(context.Background(), userID, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSendFromTrainerRejectsForeignTrainee(t *testing.T) {
	service, _, users := newChatFixture()

	trainerID := uuid.New()
	otherTrainer := uuid.New()
	userID := uuid.New()
	users.users[userID] = &models.User{ID: userID, TrainerID: &otherTrainer}

	if _, err := service.SendFromTrainer(context.Background(), trainerID, userID, "hi"); !errors.Is(err, ErrNotPaired) {
		t.Fatalf("expected ErrNotPaired, got %v", err)
	}
}

func TestListForTrainerScopesToPair(t *testing.T) {
	service, messages, users := newChatFixture()

	trainerID := uuid.New()
	userID := uuid.New()
	users.users[userID] = &models.User{ID: userID, TrainerID: &trainerID}
	messages.listResult = []models.Message{{UserID: userID, TrainerID: trainerID, Content: "hello"}}

	got, err := service.ListForTrainer(context.Background(), trainerID, userID)
	if err != nil {
		t.Fatalf("ListForTrainer: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if messages.lastUser != userID || messages.lastCoach != trainerID {
		t.Fatal("list must be scoped to the pair")
	}
}
