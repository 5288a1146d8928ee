package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/j-planelles/projecte-dam/internal/repository"
	"github.com/j-planelles/projecte-dam/internal/services"
)

// UserTrainerHandler serves the user side of the pairing lifecycle:
// finding trainers, requesting one, tracking the request and living with
// (or leaving) the resulting pairing.
type UserTrainerHandler struct {
	pairingService     *services.PairingService
	matchmakingService *services.MatchmakingService
	profileService     *services.ProfileService
	recommendationRepo *repository.RecommendationRepository
}

func NewUserTrainerHandler(
	pairingService *services.PairingService,
	matchmakingService *services.MatchmakingService,
	profileService *services.ProfileService,
	recommendationRepo *repository.RecommendationRepository,
) *UserTrainerHandler {
	return &UserTrainerHandler{
		pairingService:     pairingService,
		matchmakingService: matchmakingService,
		profileService:     profileService,
		recommendationRepo: recommendationRepo,
	}
}

type createRequestBody struct {
	TrainerID uuid.UUID `json:"trainer_uuid"`
}

type setInterestsBody struct {
	Interests []uuid.UUID `json:"interests"`
}

func mapPairingError(c *fiber.Ctx, err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundMessage})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Conflicting pairing state"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	case errors.Is(err, services.ErrNotPaired):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not paired with a trainer"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

// SearchTrainers lists enabled trainers covering all of the caller's
// selected interests. No interests selected means no matches.
func (h *UserTrainerHandler) SearchTrainers(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	trainers, err := h.matchmakingService.FindTrainers(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to search trainers"})
	}
	return c.JSON(trainers)
}

func (h *UserTrainerHandler) CreateRequest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	var body createRequestBody
	if err := c.BodyParser(&body); err != nil || body.TrainerID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.pairingService.CreateRequest(c.Context(), userID, body.TrainerID); err != nil {
		return mapPairingError(c, err, "Trainer not found")
	}
	return c.SendStatus(fiber.StatusCreated)
}

// RequestStatus returns the trainer targeted by the caller's pending
// request, 404 when there is none and 409 once the caller is paired.
func (h *UserTrainerHandler) RequestStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	trainer, err := h.pairingService.PendingTrainer(c.Context(), userID)
	if err != nil {
		return mapPairingError(c, err, "No pending request")
	}
	return c.JSON(trainer)
}

func (h *UserTrainerHandler) CancelRequest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	if err := h.pairingService.CancelOwnRequest(c.Context(), userID); err != nil {
		return mapPairingError(c, err, "No pending request")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserTrainerHandler) TrainerInfo(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	trainer, err := h.pairingService.PairedTrainer(c.Context(), userID)
	if err != nil {
		return mapPairingError(c, err, "Not paired with a trainer")
	}
	return c.JSON(trainer)
}

// Unpair breaks the caller's pairing from the user side.
func (h *UserTrainerHandler) Unpair(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	trainer, err := h.pairingService.PairedTrainer(c.Context(), userID)
	if err != nil {
		return mapPairingError(c, err, "Not paired with a trainer")
	}
	if err := h.pairingService.Unpair(c.Context(), userID, trainer.ID); err != nil {
		return mapPairingError(c, err, "Not paired with a trainer")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Recommendations lists the workouts the caller's trainer has suggested.
func (h *UserTrainerHandler) Recommendations(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	trainer, err := h.pairingService.PairedTrainer(c.Context(), userID)
	if err != nil {
		return mapPairingError(c, err, "Not paired with a trainer")
	}

	workouts, err := h.recommendationRepo.ListWorkoutsForPair(c.Context(), userID, trainer.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list recommendations"})
	}
	return c.JSON(workouts)
}

func (h *UserTrainerHandler) ListInterests(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	interests, err := h.profileService.ListInterests(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list interests"})
	}
	return c.JSON(interests)
}

func (h *UserTrainerHandler) SetInterests(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	var body setInterestsBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.profileService.SetInterests(c.Context(), userID, body.Interests); err != nil {
		return mapPairingError(c, err, "Unknown interest")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
