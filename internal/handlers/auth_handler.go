package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nikgithub05/travel-buddy/internal/logging"
	"github.com/nikgithub05/travel-buddy/internal/repositories"
	"github.com/nikgithub05/travel-buddy/internal/services"
)

// AuthHandler handles HTTP requests for signup and login.
type AuthHandler struct {
	authService *services.AuthService
	logger      logging.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/signup", h.HandleSignup)
	router.Post("/login", h.HandleLogin)
}

// HandleSignup registers a user in both stores.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	user, err := h.authService.Signup(c.UserContext(), req)
	if err != nil {
		h.logger.Warn(c.UserContext(), "signup failed", "email", req.Email, "error", err)
		var dwErr *services.DualWriteError
		if errors.As(err, &dwErr) && !errors.Is(err, repositories.ErrDuplicateKey) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message":         "An error occurred during registration",
				"error":           err.Error(),
				"user_registered": false,
			})
		}
		return writeError(c, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         "User registered successfully",
		"user_registered": true,
		"user":            user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.logger.Info(c.UserContext(), "login failed", "email", req.Email, "error", err)
		return writeError(c, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message":  "Login successful",
		"token":    result.Token,
		"username": result.Username,
		"user_id":  result.UserID,
	})
}
