package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/j-planelles/projecte-dam/internal/keys"
	"github.com/j-planelles/projecte-dam/internal/models"
	"github.com/j-planelles/projecte-dam/internal/repository"
	"github.com/j-planelles/projecte-dam/internal/services"
	"github.com/j-planelles/projecte-dam/pkg/utils"
)

type AuthHandler struct {
	db             *pgxpool.Pool
	userRepo       *repository.UserRepository
	profileService *services.ProfileService
	keyService     *keys.KeyService
	jwtSecret      string
	tokenValidity  time.Duration
}

func NewAuthHandler(
	db *pgxpool.Pool,
	userRepo *repository.UserRepository,
	profileService *services.ProfileService,
	keyService *keys.KeyService,
	jwtSecret string,
	tokenValidity time.Duration,
) *AuthHandler {
	return &AuthHandler{
		db:             db,
		userRepo:       userRepo,
		profileService: profileService,
		keyService:     keyService,
		jwtSecret:      jwtSecret,
		tokenValidity:  tokenValidity,
	}
}

type registerRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

type updateProfileRequest struct {
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	Biography *string `json:"biography"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// PublicKey hands out the PEM-encoded RSA key clients encrypt their
// passwords with before sending them over the wire.
func (h *AuthHandler) PublicKey(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(h.keyService.PublicKeyPEM())
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username is required"})
	}

	password, err := h.keyService.Decrypt(req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Could not decrypt password"})
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: req.Username,
		FullName: req.FullName,
	}

	tx, err := h.db.Begin(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to start registration transaction"})
	}
	defer func() {
		_ = tx.Rollback(c.Context())
	}()

	txUserRepo := repository.NewUserRepository(tx)

	if err := txUserRepo.Create(c.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"error": "Username already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to create user"})
	}
	if err := txUserRepo.CreateCredential(c.Context(), &models.UserCredential{
		UserID:       user.ID,
		PasswordHash: hashed,
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to store credentials"})
	}

	if err := tx.Commit(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to finalize registration"})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Token exchanges form credentials for a bearer token. The password
// arrives RSA-encrypted like everywhere else. Wrong username, wrong
// password and undecryptable payloads all produce the same response.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	username := c.FormValue("username")
	encrypted := c.FormValue("password")
	if username == "" || encrypted == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing credentials"})
	}

	unauthorized := func() error {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"error": "Incorrect username or password"})
	}

	password, err := h.keyService.Decrypt(encrypted)
	if err != nil {
		return unauthorized()
	}

	user, err := h.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return unauthorized()
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to lookup user"})
	}

	cred, err := h.userRepo.GetCredentialByID(c.Context(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to lookup credentials"})
	}
	if cred.IsDisabled || !utils.CheckPassword(password, cred.PasswordHash) {
		return unauthorized()
	}

	token, err := utils.GenerateToken(user.ID.String(), h.jwtSecret, h.tokenValidity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	return c.JSON(user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.profileService.UpdateProfile(c.Context(), userID, strings.TrimSpace(req.Username), req.FullName, req.Biography)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username is required"})
		case errors.Is(err, services.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists"})
		case errors.Is(err, pgx.ErrNoRows):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	password, err := h.keyService.Decrypt(req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Could not decrypt password"})
	}

	if err := h.profileService.ChangePassword(c.Context(), userID, password); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to change password"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
