package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
	"github.com/j-planelles/projecte-dam/pkg/utils"
)

type credentialReader interface {
	GetCredentialByID(ctx context.Context, userID uuid.UUID) (*models.UserCredential, error)
}

type roleReader interface {
	HasTrainerRole(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AuthRequired validates the bearer token and stores the authenticated
// identity under the "user_id" local as a uuid.UUID.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		subject, err := utils.ValidateToken(parts[1], secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Could not validate credentials",
			})
		}
		userID, err := uuid.Parse(subject)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Could not validate credentials",
			})
		}

		c.Locals("user_id", userID)

		return c.Next()
	}
}

// ActiveAccountRequired rejects tokens whose identity has since been
// disabled or deleted. Must run after AuthRequired.
func ActiveAccountRequired(credRepo credentialReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uuid.UUID)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Could not validate credentials",
			})
		}

		cred, err := credRepo.GetCredentialByID(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Could not validate credentials",
			})
		}
		if cred.IsDisabled {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Inactive user",
			})
		}

		return c.Next()
	}
}

// TrainerRequired gates endpoints to identities holding the trainer
// role. Must run after AuthRequired.
func TrainerRequired(roleRepo roleReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uuid.UUID)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Could not validate credentials",
			})
		}

		isTrainer, err := roleRepo.HasTrainerRole(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to check role",
			})
		}
		if !isTrainer {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "User is not a trainer",
			})
		}

		return c.Next()
	}
}
