package handlers

import (
	"context"
	"time"

	"lunchdesk/internal/models"
	"lunchdesk/internal/services"
)

// The handlers depend on these narrow views of the services so tests can
// swap in stubs where wiring the real service is not worth it.

type OrderWindow interface {
	State(ctx context.Context) (models.WindowState, error)
	SetWindow(ctx context.Context, enabled bool, weekStart *time.Time, note string) (models.WindowState, error)
	EvaluateDay(ctx context.Context, day models.Weekday, now time.Time) (services.WindowDecision, error)
}

type Orders interface {
	Create(ctx context.Context, actor services.Actor, draft services.OrderDraft) (*models.Order, error)
	Get(ctx context.Context, actor services.Actor, id string) (*models.Order, error)
	Update(ctx context.Context, actor services.Actor, id string, patch services.OrderPatch) (*models.Order, error)
	Cancel(ctx context.Context, actor services.Actor, id string) (*models.Order, error)
	ListForUser(ctx context.Context, actor services.Actor, page services.PageRequest) (services.OrderPage, error)
	ListForWeek(ctx context.Context, actor services.Actor, weekStart time.Time, statuses []models.OrderStatus) ([]models.Order, error)
	SetStatus(ctx context.Context, actor services.Actor, id string, status models.OrderStatus) (*models.Order, error)
}

type Quoter interface {
	Quote(ctx context.Context, req services.QuoteRequest) (services.PlannerQuote, error)
}

type TemplateCreator interface {
	CreateTemplate(ctx context.Context, actor services.Actor, req services.CheckoutRequest) (*services.CheckoutResult, error)
}

var (
	_ OrderWindow     = (*services.WindowEvaluator)(nil)
	_ Orders          = (*services.OrderService)(nil)
	_ Quoter          = (*services.Planner)(nil)
	_ TemplateCreator = (*services.CheckoutService)(nil)
)
