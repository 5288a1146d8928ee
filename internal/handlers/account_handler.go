package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/services"
)

// AccountHandler exposes the account lifecycle edges: trainer enrollment
// and resignation, soft disable and permanent deletion.
type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) EnrollTrainer(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	if err := h.accountService.BecomeTrainer(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to enroll as trainer"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AccountHandler) ResignTrainer(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	if err := h.accountService.ResignTrainer(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to resign as trainer"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Disable retires the account while keeping its history. The issued
// tokens stop working at the next active-account check.
func (h *AccountHandler) Disable(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	if err := h.accountService.Disable(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to disable account"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete erases the account and everything it owns.
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	if err := h.accountService.Delete(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to delete account"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
