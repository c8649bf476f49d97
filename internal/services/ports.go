package services

//go:generate mockgen -destination=mocks/collaborators_mock.go -package=mocks lunchdesk/internal/services RateLimiter,ProfileWriter

import (
	"context"
	"time"

	"lunchdesk/internal/models"
)

// Clock supplies the current time in the operating timezone.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	return ClockFunc(func() time.Time { return time.Now().In(loc) })
}

// WindowStore persists the single WindowState record.
type WindowStore interface {
	// LoadWindow returns nil when no state has been persisted yet.
	LoadWindow(ctx context.Context) (*models.WindowState, error)
	SaveWindow(ctx context.Context, state models.WindowState) error
}

// CatalogReader is the read-only view of published menus and day offers.
// Single-offer lookups go through GetOffersByIDs with one id.
type CatalogReader interface {
	WeekExists(ctx context.Context, weekStart time.Time) (bool, error)
	// GetWeeks returns published weeks keyed by models.DateKey(weekStart).
	GetWeeks(ctx context.Context, weekStarts []time.Time) (map[string]models.MenuWeek, error)
	GetDishes(ctx context.Context, weekStart time.Time, day models.Weekday) ([]string, error)
	// GetDayOffer returns nil when the week has no offer for day.
	GetDayOffer(ctx context.Context, weekStart time.Time, day models.Weekday) (*models.DayOffer, error)
	// GetOffersByIDs returns the offers that exist, keyed by hex id, with
	// WeekStart resolved. Unknown ids are simply absent.
	GetOffersByIDs(ctx context.Context, ids []string) (map[string]models.DayOffer, error)
}

// OrderStore persists orders. Insert and Update return ErrUniqueViolation
// when the write would create a second active order for the same
// (user, day, delivery week) or reuse an order id.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	// FindByID returns nil when the order does not exist.
	FindByID(ctx context.Context, id string) (*models.Order, error)
	// FindActive returns nil when the slot is free.
	FindActive(ctx context.Context, userID string, day models.Weekday, weekStart time.Time) (*models.Order, error)
	// ListByUser returns one newest-first page of the user's orders and the
	// user's total order count.
	ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error)
	ListByWeek(ctx context.Context, weekStart time.Time, statuses []models.OrderStatus) ([]models.Order, error)
}

// TemplateStore persists a checkout template with all of its week rows
// atomically.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, template models.CheckoutTemplate, weeks []models.CheckoutTemplateWeek) error
}

// RateLimiter throttles order creation per user.
type RateLimiter interface {
	CheckAndConsume(ctx context.Context, userID string) (bool, error)
}

// ProfileWriter stores the last used contact details on the user profile.
// Nil fields are left untouched.
type ProfileWriter interface {
	UpdateAddressPhone(ctx context.Context, userID string, address, phone *string) error
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}
