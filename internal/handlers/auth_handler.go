package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"ulasan/internal/services"
	"ulasan/internal/validation"
)

// AuthHandler handles the anonymous signup and token endpoints.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validation.Validator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validation.New(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/token", h.HandleToken)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=150,username,notme"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

// HandleSignup issues a new confirmation code and mails it to the caller.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	if _, err := h.authService.RequestSignup(req.Username, req.Email); err != nil {
		log.Printf("Signup failed for %s: %v", req.Username, err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

// TokenRequest represents the request body for the token exchange.
type TokenRequest struct {
	Username         string `json:"username" validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// HandleToken exchanges a confirmation code for an access token.
func (h *AuthHandler) HandleToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	token, err := h.authService.ExchangeToken(req.Username, req.ConfirmationCode)
	if err != nil {
		log.Printf("Token exchange failed for %s: %v", req.Username, err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
	})
}
