package handlers

import (
	"strings"

	"finance-backoffice/internal/adapters/http/middleware"
	"finance-backoffice/internal/core/services"
	"finance-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles user registration
// @Summary Register new user
// @Description Register a new STAFF user. Any requested role is ignored.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 200 {object} domain.Principal
// @Failure 400 {object} response.Message
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, msgInvalidBody)
	}

	principal, err := h.authService.Register(c.Context(), services.RegisterInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return response.Success(c, principal)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user and return a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} domain.TokenPair
// @Failure 400 {object} response.Message
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, msgInvalidBody)
	}

	pair, err := h.authService.Login(c.Context(), services.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return response.Success(c, pair)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} domain.TokenPair
// @Failure 400 {object} response.Message
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, msgInvalidBody)
	}

	pair, err := h.authService.RefreshToken(c.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return writeError(c, err)
	}

	return response.Success(c, pair)
}

// Logout handles user logout
// @Summary Logout user
// @Description Stateless by default. With strict rotation the given refresh token is revoked.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest false "Refresh token"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Message
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, msgInvalidBody)
		}
	}

	if err := h.authService.Logout(c.Context(), strings.TrimSpace(req.RefreshToken)); err != nil {
		return writeError(c, err)
	}

	return response.OK(c, "Logged out successfully")
}

// Me returns current user info
// @Summary Get current user
// @Description Get the authenticated user's id, username and role
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Principal
// @Failure 401 {object} response.Message
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := h.authService.Me(c.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, principal)
}
