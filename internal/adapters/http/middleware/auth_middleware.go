package middleware

import (
	"errors"
	"strings"

	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// AccessVerifier validates an access token and returns its principal
type AccessVerifier interface {
	VerifyAccess(token string) (*domain.Principal, error)
}

// AuthMiddleware requires a valid Bearer access token and stores the
// principal for downstream handlers
func AuthMiddleware(tokens AccessVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		principal, err := tokens.VerifyAccess(accessToken)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// CurrentPrincipal returns the authenticated principal, or nil when the
// request did not pass AuthMiddleware
func CurrentPrincipal(c *fiber.Ctx) *domain.Principal {
	p, _ := c.Locals(principalKey).(*domain.Principal)
	return p
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
