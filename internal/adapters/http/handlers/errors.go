package handlers

import (
	"errors"
	"log"
	"strings"

	"kas-kelas/internal/core/domain"
	"kas-kelas/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// notFoundMessages maps not-found sentinels to client messages
var notFoundMessages = []struct {
	err     error
	message string
}{
	{domain.ErrBillNotFound, "Bill not found"},
	{domain.ErrTransactionNotFound, "Transaction not found"},
	{domain.ErrUserNotFound, "User not found"},
	{domain.ErrNoMembers, "No members found"},
	{domain.ErrNotFound, "Resource not found"},
}

// handleError writes the response for a service error. Errors outside the
// domain taxonomy are logged and reported as fallback with status 500.
func handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return response.Unauthorized(c, "Token expired")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenInvalid):
		return response.Unauthorized(c, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to access this resource")
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, validationMessage(err))
	case errors.Is(err, domain.ErrDuplicateEntry):
		return response.Conflict(c, validationMessage(err))
	}

	for _, nf := range notFoundMessages {
		if errors.Is(err, nf.err) {
			return response.NotFound(c, nf.message)
		}
	}

	log.Printf("❌ %s: %v", fallback, err)
	return response.InternalServerError(c, fallback)
}

// validationMessage strips the sentinel prefix so clients see the reason only
func validationMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{domain.ErrValidation.Error() + ": ", domain.ErrDuplicateEntry.Error() + ": "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}
