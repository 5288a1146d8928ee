package handlers

import (
	"context"
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/j-planelles/projecte-dam/internal/models"
	"github.com/j-planelles/projecte-dam/internal/services"
	chatws "github.com/j-planelles/projecte-dam/internal/websocket"
	"github.com/j-planelles/projecte-dam/pkg/utils"
)

type chatApplicationService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	SendFromUser(ctx context.Context, userID uuid.UUID, content string) (*models.Message, error)
	ListForTrainer(ctx context.Context, trainerID, userID uuid.UUID) ([]models.Message, error)
	SendFromTrainer(ctx context.Context, trainerID, userID uuid.UUID, content string) (*models.Message, error)
}

type trainerRoleChecker interface {
	HasTrainerRole(ctx context.Context, userID uuid.UUID) (bool, error)
}

type ChatHandler struct {
	service   chatApplicationService
	roleRepo  trainerRoleChecker
	hub       *chatws.Hub
	jwtSecret string
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func NewChatHandler(service chatApplicationService, roleRepo trainerRoleChecker, hub *chatws.Hub, jwtSecret string) *ChatHandler {
	return &ChatHandler{
		service:   service,
		roleRepo:  roleRepo,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

// UserMessages returns the caller's conversation with their trainer.
func (h *ChatHandler) UserMessages(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	messages, err := h.service.ListForUser(c.Context(), userID)
	if err != nil {
		return mapChatError(c, err)
	}
	return c.JSON(messages)
}

func (h *ChatHandler) UserSend(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	message, err := h.service.SendFromUser(c.Context(), userID, req.Content)
	if err != nil {
		return mapChatError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// TrainerMessages returns the conversation with one of the caller's
// trainees.
func (h *ChatHandler) TrainerMessages(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	messages, err := h.service.ListForTrainer(c.Context(), trainerID, userID)
	if err != nil {
		return mapChatError(c, err)
	}
	return c.JSON(messages)
}

func (h *ChatHandler) TrainerSend(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	message, err := h.service.SendFromTrainer(c.Context(), trainerID, userID, req.Content)
	if err != nil {
		return mapChatError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// WebSocketAuth upgrades only authenticated connections. The token comes
// from the query string or a bearer header, whichever the client can
// manage.
func (h *ChatHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	userID, err := h.parseWSIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Could not validate credentials"})
	}

	isTrainer, err := h.roleRepo.HasTrainerRole(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check role"})
	}

	c.Locals("user_id", userID)
	c.Locals("is_trainer", isTrainer)
	return c.Next()
}

func (h *ChatHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(uuid.UUID)
	isTrainer, _ := conn.Locals("is_trainer").(bool)
	client := chatws.NewClient(h.hub, conn, userID, isTrainer)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump(h.service)
}

func (h *ChatHandler) parseWSIdentity(c *fiber.Ctx) (uuid.UUID, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return uuid.Nil, errors.New("missing token")
	}

	subject, err := utils.ValidateToken(tokenString, h.jwtSecret)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(subject)
}

func mapChatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotPaired):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not paired"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process chat request"})
	}
}
