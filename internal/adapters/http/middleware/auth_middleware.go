package middleware

import (
	"errors"
	"strings"

	"kas-kelas/internal/core/domain"
	"kas-kelas/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PrincipalKey is the Locals key holding the authenticated *domain.Principal
const PrincipalKey = "principal"

// AccessTokenCookie is the cookie the auth handler writes the access token to
const AccessTokenCookie = "access_token"

// TokenValidator turns a raw access token into the caller's principal
type TokenValidator interface {
	ValidateAccessToken(token string) (*domain.Principal, error)
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Cookie first, then Authorization header
		accessToken := extractToken(c)

		// 2. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 3. Validate token
		principal, err := validator.ValidateAccessToken(accessToken)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 4. Set principal in context
		c.Locals(PrincipalKey, principal)

		return c.Next()
	}
}

// Require rejects callers the capability does not admit. Handlers still pass
// the principal down to services, which make the final decision.
func Require(capability domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch err := domain.Authorize(CurrentPrincipal(c), capability); {
		case err == nil:
			return c.Next()
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to access this resource")
		default:
			return response.Unauthorized(c, "Unauthorized")
		}
	}
}

// TreasurerOnly middleware allows only BENDAHARA role
func TreasurerOnly() fiber.Handler {
	return Require(domain.TreasurerOnly)
}

// AdminOnly middleware allows only ADMINISTRATOR role
func AdminOnly() fiber.Handler {
	return Require(domain.AdminOnly)
}

// TreasurerOrAdmin middleware allows BENDAHARA or ADMINISTRATOR roles
func TreasurerOrAdmin() fiber.Handler {
	return Require(domain.TreasurerOrAdmin)
}

// CurrentPrincipal returns the principal set by AuthMiddleware, or nil
func CurrentPrincipal(c *fiber.Ctx) *domain.Principal {
	p, _ := c.Locals(PrincipalKey).(*domain.Principal)
	return p
}

func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies(AccessTokenCookie); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
