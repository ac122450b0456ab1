package handlers

import (
	"errors"
	"reflect"
	"strings"

	"kas-kelas/internal/adapters/http/middleware"
	"kas-kelas/internal/core/domain"
	"kas-kelas/internal/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the request body into req and validates it. When it returns
// false the error response has already been written.
func bind(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]response.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, response.FieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
			return false, response.ValidationFailed(c, fields)
		}
		return false, response.BadRequest(c, "Invalid request body")
	}
	return true, nil
}

// principal returns the authenticated caller set by the auth middleware
func principal(c *fiber.Ctx) *domain.Principal {
	return middleware.CurrentPrincipal(c)
}
