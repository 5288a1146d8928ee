package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type messageStore interface {
	Create(ctx context.Context, message *models.Message) error
	ListForPair(ctx context.Context, userID, trainerID uuid.UUID) ([]models.Message, error)
}

// ChatService exposes the conversation between a user and their trainer.
// Every operation re-checks the pairing, so a conversation goes dark the
// moment the pair dissolves even though its history stays stored.
type ChatService struct {
	messageRepo messageStore
	userRepo    userDirectory
}

func NewChatService(messageRepo messageStore, userRepo userDirectory) *ChatService {
	return &ChatService{messageRepo: messageRepo, userRepo: userRepo}
}

func (s *ChatService) pairedTrainerID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if user.TrainerID == nil {
		return uuid.Nil, ErrNotPaired
	}
	return *user.TrainerID, nil
}

func (s *ChatService) requirePair(ctx context.Context, userID, trainerID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TrainerID == nil || *user.TrainerID != trainerID {
		return ErrNotPaired
	}
	return nil
}

func (s *ChatService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	trainerID, err := s.pairedTrainerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.ListForPair(ctx, userID, trainerID)
}

func (s *ChatService) SendFromUser(ctx context.Context, userID uuid.UUID, content string) (*models.Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	trainerID, err := s.pairedTrainerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		UserID:          userID,
		TrainerID:       trainerID,
		Timestamp:       time.Now().UnixMilli(),
		Content:         trimmed,
		IsSentByTrainer: false,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *ChatService) ListForTrainer(ctx context.Context, trainerID, userID uuid.UUID) ([]models.Message, error) {
	if err := s.requirePair(ctx, userID, trainerID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListForPair(ctx, userID, trainerID)
}

func (s *ChatService) SendFromTrainer(ctx context.Context, trainerID, userID uuid.UUID, content string) (*models.Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	if err := s.requirePair(ctx, userID, trainerID); err != nil {
		return nil, err
	}

	message := &models.Message{
		UserID:          userID,
		TrainerID:       trainerID,
		Timestamp:       time.Now().UnixMilli(),
		Content:         trimmed,
		IsSentByTrainer: true,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}
