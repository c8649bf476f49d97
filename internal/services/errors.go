package services

import (
	"errors"
	"fmt"
	"time"

	"lunchdesk/internal/models"
)

// ErrUniqueViolation is returned by stores when a write collides with a
// storage-level uniqueness constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

// ValidationError reports bad input the caller can correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OrderWindowClosedError is a temporal policy rejection for the requested day.
type OrderWindowClosedError struct {
	Day     models.Weekday
	Message string
}

func (e OrderWindowClosedError) Error() string {
	return e.Message
}

// DuplicateOrderError means the user already holds an active order for the
// same day and delivery week.
type DuplicateOrderError struct {
	ExistingID    string
	ExistingCount int
	Day           models.Weekday
	WeekStart     time.Time
}

func (e DuplicateOrderError) Error() string {
	return fmt.Sprintf("active order %s already exists for %s of week %s",
		e.ExistingID, e.Day, models.DateKey(e.WeekStart))
}

type OrderNotFoundError struct {
	ID string
}

func (e OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.ID)
}

type ForbiddenOrderActionError struct {
	ID     string
	Reason string
}

func (e ForbiddenOrderActionError) Error() string {
	return fmt.Sprintf("order %s: %s", e.ID, e.Reason)
}

// RateLimitedError is returned when the limiter explicitly refuses the user.
// Limiter failures never produce it.
type RateLimitedError struct {
	UserID string
}

func (e RateLimitedError) Error() string {
	return "too many orders, try again in a minute"
}

// IsDomainError reports whether err is one of the typed errors above, as
// opposed to an infrastructure failure.
func IsDomainError(err error) bool {
	var (
		validation ValidationError
		closed     OrderWindowClosedError
		duplicate  DuplicateOrderError
		notFound   OrderNotFoundError
		forbidden  ForbiddenOrderActionError
		limited    RateLimitedError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &closed) ||
		errors.As(err, &duplicate) ||
		errors.As(err, &notFound) ||
		errors.As(err, &forbidden) ||
		errors.As(err, &limited)
}
