package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/j-planelles/projecte-dam/internal/models"
	"github.com/j-planelles/projecte-dam/internal/repository"
	"github.com/j-planelles/projecte-dam/internal/services"
)

// TrainerHandler serves the trainer side: the request inbox, the trainee
// roster and workout recommendations. Routes mounting it sit behind the
// trainer role middleware.
type TrainerHandler struct {
	pairingService     *services.PairingService
	workoutRepo        *repository.WorkoutRepository
	recommendationRepo *repository.RecommendationRepository
}

func NewTrainerHandler(
	pairingService *services.PairingService,
	workoutRepo *repository.WorkoutRepository,
	recommendationRepo *repository.RecommendationRepository,
) *TrainerHandler {
	return &TrainerHandler{
		pairingService:     pairingService,
		workoutRepo:        workoutRepo,
		recommendationRepo: recommendationRepo,
	}
}

type recommendBody struct {
	WorkoutID uuid.UUID `json:"workout_uuid"`
}

func parseUserParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("userID"))
}

func (h *TrainerHandler) ListRequests(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)

	users, err := h.pairingService.ListPendingRequests(c.Context(), trainerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list requests"})
	}
	return c.JSON(users)
}

// AcceptRequest consumes the pending request and binds the user to the
// caller. A user claimed by another trainer in the meantime surfaces as
// a conflict.
func (h *TrainerHandler) AcceptRequest(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.pairingService.Resolve(c.Context(), trainerID, userID, true); err != nil {
		return mapPairingError(c, err, "Request not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TrainerHandler) DenyRequest(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.pairingService.Resolve(c.Context(), trainerID, userID, false); err != nil {
		return mapPairingError(c, err, "Request not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TrainerHandler) ListUsers(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)

	users, err := h.pairingService.PairedUsers(c.Context(), trainerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list users"})
	}
	return c.JSON(users)
}

func (h *TrainerHandler) GetUser(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	user, err := h.pairingService.PairedUser(c.Context(), trainerID, userID)
	if err != nil {
		return mapPairingError(c, err, "User not found")
	}
	return c.JSON(user)
}

// RemoveUser breaks the pairing from the trainer side.
func (h *TrainerHandler) RemoveUser(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.pairingService.Unpair(c.Context(), userID, trainerID); err != nil {
		return mapPairingError(c, err, "User not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecommendableWorkouts lists the caller's templates not yet recommended
// to the given trainee.
func (h *TrainerHandler) RecommendableWorkouts(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if _, err := h.pairingService.PairedUser(c.Context(), trainerID, userID); err != nil {
		return mapPairingError(c, err, "User not found")
	}

	workouts, err := h.workoutRepo.ListTemplatesNotRecommended(c.Context(), trainerID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list workouts"})
	}
	return c.JSON(workouts)
}

func (h *TrainerHandler) ListRecommendations(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if _, err := h.pairingService.PairedUser(c.Context(), trainerID, userID); err != nil {
		return mapPairingError(c, err, "User not found")
	}

	workouts, err := h.recommendationRepo.ListWorkoutsForPair(c.Context(), userID, trainerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list recommendations"})
	}
	return c.JSON(workouts)
}

// CreateRecommendation suggests one of the caller's own templates to a
// trainee. Recommending the same workout twice is a conflict.
func (h *TrainerHandler) CreateRecommendation(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var body recommendBody
	if err := c.BodyParser(&body); err != nil || body.WorkoutID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if _, err := h.pairingService.PairedUser(c.Context(), trainerID, userID); err != nil {
		return mapPairingError(c, err, "User not found")
	}
	if _, err := h.workoutRepo.GetTemplate(c.Context(), body.WorkoutID, trainerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Workout not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch workout"})
	}

	err = h.recommendationRepo.Create(c.Context(), &models.Recommendation{
		UserID:    userID,
		TrainerID: trainerID,
		WorkoutID: body.WorkoutID,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"error": "Workout already recommended"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to create recommendation"})
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (h *TrainerHandler) DeleteRecommendation(c *fiber.Ctx) error {
	trainerID := c.Locals("user_id").(uuid.UUID)
	userID, err := parseUserParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	workoutID, err := uuid.Parse(c.Params("workoutID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workout id"})
	}

	deleted, err := h.recommendationRepo.Delete(c.Context(), userID, trainerID, workoutID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to delete recommendation"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recommendation not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
