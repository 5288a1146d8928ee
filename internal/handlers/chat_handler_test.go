package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
	"github.com/j-planelles/projecte-dam/internal/services"
	chatws "github.com/j-planelles/projecte-dam/internal/websocket"
)

type stubChatService struct {
	listResult    []models.Message
	listErr       error
	sendResult    *models.Message
	sendErr       error
	lastUserID    uuid.UUID
	lastTrainerID uuid.UUID
	lastContent   string
}

func (s *stubChatService) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Message, error) {
	s.lastUserID = userID
	return s.listResult, s.listErr
}

func (s *stubChatService) SendFromUser(_ context.Context, userID uuid.UUID, content string) (*models.Message, error) {
	s.lastUserID = userID
	s.lastContent = content
	return s.sendResult, s.sendErr
}

func (s *stubChatService) ListForTrainer(_ context.Context, trainerID, userID uuid.UUID) ([]models.Message, error) {
	s.lastTrainerID = trainerID
	s.lastUserID = userID
	return s.listResult, s.listErr
}

func (s *stubChatService) SendFromTrainer(_ context.Context, trainerID, userID uuid.UUID, content string) (*models.Message, error) {
	s.lastTrainerID = trainerID
	s.lastUserID = userID
	s.lastContent = content
	return s.sendResult, s.sendErr
}

type stubRoleChecker struct {
	isTrainer bool
}

func (s *stubRoleChecker) HasTrainerRole(_ context.Context, _ uuid.UUID) (bool, error) {
	return s.isTrainer, nil
}

func newChatTestApp(service *stubChatService, actorID uuid.UUID) (*fiber.App, *ChatHandler) {
	handler := NewChatHandler(service, &stubRoleChecker{}, chatws.NewHub(), "secret")
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", actorID)
		return c.Next()
	})
	return app, handler
}

func TestUserMessagesReturnsConversation(t *testing.T) {
	userID := uuid.New()
	trainerID := uuid.New()
	service := &stubChatService{
		listResult: []models.Message{
			{UserID: userID, TrainerID: trainerID, Content: "see you tomorrow", IsSentByTrainer: true},
		},
	}
	app, handler := newChatTestApp(service, userID)
	app.Get("/user/messages", handler.UserMessages)

	req := httptest.NewRequest(http.MethodGet, "/user/messages", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUserID != userID {
		t.Fatalf("expected user %s, got %s", userID, service.lastUserID)
	}

	var body []models.Message
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body) != 1 || !body[0].IsSentByTrainer {
		t.Fatalf("unexpected response: %+v", body)
	}
}

func TestUserMessagesReturnsNotFoundWhenUnpaired(t *testing.T) {
	service := &stubChatService{listErr: services.ErrNotPaired}
	app, handler := newChatTestApp(service, uuid.New())
	app.Get("/user/messages", handler.UserMessages)

	req := httptest.NewRequest(http.MethodGet, "/user/messages", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUserSendForwardsContent(t *testing.T) {
	userID := uuid.New()
	trainerID := uuid.New()
	service := &stubChatService{
		sendResult: &models.Message{UserID: userID, TrainerID: trainerID, Content: "hello"},
	}
	app, handler := newChatTestApp(service, userID)
	app.Post("/user/messages", handler.UserSend)

	req := httptest.NewRequest(http.MethodPost, "/user/messages", strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastContent != "hello" {
		t.Fatalf("expected forwarded content, got %q", service.lastContent)
	}
}

func TestUserSendRejectsEmptyContent(t *testing.T) {
	service := &stubChatService{sendErr: services.ErrInvalidInput}
	app, handler := newChatTestApp(service, uuid.New())
	app.Post("/user/messages", handler.UserSend)

	req := httptest.NewRequest(http.MethodPost, "/user/messages", strings.NewReader(`{"content":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTrainerMessagesScopesToRequestedTrainee(t *testing.T) {
	trainerID := uuid.New()
	traineeID := uuid.New()
	service := &stubChatService{}
	app, handler := newChatTestApp(service, trainerID)
	app.Get("/trainer/users/:userID/messages", handler.TrainerMessages)

	req := httptest.NewRequest(http.MethodGet, "/trainer/users/"+traineeID.String()+"/messages", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != trainerID || service.lastUserID != traineeID {
		t.Fatalf("unexpected scope: trainer=%s user=%s", service.lastTrainerID, service.lastUserID)
	}
}

func TestTrainerMessagesRejectsMalformedUserID(t *testing.T) {
	service := &stubChatService{}
	app, handler := newChatTestApp(service, uuid.New())
	app.Get("/trainer/users/:userID/messages", handler.TrainerMessages)

	req := httptest.NewRequest(http.MethodGet, "/trainer/users/not-a-uuid/messages", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
