package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/splitkaro/billscan/internal/database"
	"github.com/splitkaro/billscan/internal/middleware"
	"github.com/splitkaro/billscan/internal/models"
)

// Register creates a new account
func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return Error(c, fiber.StatusBadRequest, "valid email is required")
	}
	if len(req.Password) < 8 {
		return Error(c, fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to hash password")
	}

	user, err := h.db.CreateUser(c.Context(), req.Email, string(hash), strings.TrimSpace(req.DisplayName))
	if err != nil {
		if err == database.ErrEmailTaken {
			return Error(c, fiber.StatusConflict, "email already registered")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to create user")
	}

	token, err := h.issueToken(user)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to issue token")
	}

	return Success(c, models.AuthResponse{Token: token, User: user})
}

// Login authenticates an existing account
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.db.GetUserByEmail(c.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return Error(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.issueToken(user)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to issue token")
	}

	return Success(c, models.AuthResponse{Token: token, User: user})
}

// GetCurrentUser returns the authenticated user's profile
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.db.GetUserByID(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusNotFound, "user not found")
	}

	return Success(c, user)
}

func (h *Handler) issueToken(user *models.User) (string, error) {
	claims := middleware.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.cfg.JWTExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}
