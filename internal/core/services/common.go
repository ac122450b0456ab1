package services

import (
	"errors"
	"fmt"
	"time"

	"kas-kelas/internal/core/domain"

	"gorm.io/gorm"
)

// notFound maps a missing record onto sentinel and passes every other error through
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// invalid wraps reason as a validation failure
func invalid(reason error) error {
	return fmt.Errorf("%w: %w", domain.ErrValidation, reason)
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// startOfDay returns midnight of t's calendar day in time.Local, the zone
// due dates are parsed in
func startOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.In(time.Local).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.Local)
}
