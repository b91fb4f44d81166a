package handlers

import (
	"errors"
	"strings"

	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Stable client-facing messages
const (
	msgInvalidCredentials = "Invalid username or password"
	msgUsernameTaken      = "Username is already taken"
	msgInvalidRefresh     = "Invalid refresh token"
	msgTokenRequired      = "Access token required"
	msgForbidden          = "You don't have permission to access this resource"
	msgNotFound           = "Transaction not found"
	msgInternal           = "Internal server error"
	msgInvalidBody        = "Invalid request body"
)

// writeError maps a domain error to its status code and message. Store
// failures and unknown errors never leak their detail.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.BadRequest(c, msgInvalidCredentials)
	case errors.Is(err, domain.ErrUsernameTaken):
		return response.BadRequest(c, msgUsernameTaken)
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		return response.BadRequest(c, msgInvalidRefresh)
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, detail(err, domain.ErrInvalidInput))
	case errors.Is(err, domain.ErrInvalidPageRequest):
		return response.BadRequest(c, detail(err, domain.ErrInvalidPageRequest))
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, msgTokenRequired)
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, msgForbidden)
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, msgNotFound)
	default:
		return response.InternalServerError(c, msgInternal)
	}
}

// detail strips the sentinel prefix from a wrapped validation error
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" || msg == sentinel.Error() {
		return sentinel.Error()
	}
	return msg
}
