package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"lunchdesk/internal/models"
)

const (
	DefaultDailyLimit = 4
	DefaultUnitPrice  = 1500

	// attempts at finding a free order id before giving up
	orderIDAttempts = 3
)

// OrderDeps are the collaborators of OrderService. Limiter and Profiles
// may be nil.
type OrderDeps struct {
	Window   *WindowEvaluator
	Catalog  CatalogReader
	Orders   OrderStore
	Limiter  RateLimiter
	Profiles ProfileWriter
	Clock    Clock
	Random   io.Reader
}

type OrderSettings struct {
	DailyLimit       int
	DefaultUnitPrice int64
	Currency         string
}

// OrderDraft is the raw order request. Day is an external day key and is
// normalized by Create.
type OrderDraft struct {
	Day     string
	Count   int
	Address string
	Phone   string
}

// OrderPatch lists the fields an update may change. Nil means unchanged.
type OrderPatch struct {
	Count   *int
	Address *string
}

type OrderService struct {
	window   *WindowEvaluator
	catalog  CatalogReader
	orders   OrderStore
	limiter  RateLimiter
	profiles ProfileWriter
	clock    Clock
	random   io.Reader
	settings OrderSettings
}

func NewOrderService(deps OrderDeps, settings OrderSettings) *OrderService {
	if settings.DailyLimit <= 0 {
		settings.DailyLimit = DefaultDailyLimit
	}
	if settings.DefaultUnitPrice <= 0 {
		settings.DefaultUnitPrice = DefaultUnitPrice
	}
	if settings.Currency == "" {
		settings.Currency = "GEL"
	}
	random := deps.Random
	if random == nil {
		random = rand.Reader
	}
	return &OrderService{
		window:   deps.Window,
		catalog:  deps.Catalog,
		orders:   deps.Orders,
		limiter:  deps.Limiter,
		profiles: deps.Profiles,
		clock:    deps.Clock,
		random:   random,
		settings: settings,
	}
}

// Create validates the draft, admits it through the order window and
// persists a new order. Nothing is written unless every check passes.
func (s *OrderService) Create(ctx context.Context, actor Actor, draft OrderDraft) (*models.Order, error) {
	day, err := models.ParseWeekday(draft.Day)
	if err != nil {
		return nil, ValidationError{Field: "day", Message: "only weekdays from monday to friday can be ordered"}
	}
	if err := s.validateCount(draft.Count); err != nil {
		return nil, err
	}
	address := strings.TrimSpace(draft.Address)
	if address == "" {
		return nil, ValidationError{Field: "address", Message: "delivery address is required"}
	}
	phone := strings.TrimSpace(draft.Phone)

	if err := s.consumeRateLimit(ctx, actor.UserID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	decision, err := s.window.EvaluateDay(ctx, day, now)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, OrderWindowClosedError{Day: day, Message: decision.Warning}
	}
	weekStart := decision.TargetWeekStart

	published, err := s.catalog.WeekExists(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("check menu week: %w", err)
	}
	if !published {
		return nil, ValidationError{Field: "menu", Message: "the menu for this week is not published yet"}
	}
	dishes, err := s.catalog.GetDishes(ctx, weekStart, day)
	if err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}
	if len(dishes) == 0 {
		return nil, ValidationError{Field: "day", Message: "there is no menu for this day"}
	}

	if err := s.ensureSlotFree(ctx, actor.UserID, day, weekStart); err != nil {
		return nil, err
	}

	unitPrice, currency, err := s.unitPrice(ctx, weekStart, day)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:            actor.UserID,
		Day:               day,
		Count:             draft.Count,
		Status:            models.OrderStatusNew,
		MenuSnapshot:      dishes,
		AddressSnapshot:   address,
		PhoneSnapshot:     phone,
		DeliveryWeekStart: weekStart,
		DeliveryDate:      day.DateIn(weekStart),
		IsNextWeek:        decision.IsNextWeek,
		UnitPrice:         unitPrice,
		Currency:          currency,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.insert(ctx, order); err != nil {
		return nil, err
	}

	var phoneUpdate *string
	if phone != "" {
		phoneUpdate = &phone
	}
	s.syncProfile(ctx, actor.UserID, &address, phoneUpdate)

	log.WithFields(log.Fields{
		"component":  "order",
		"orderId":    order.ID,
		"userId":     order.UserID,
		"day":        order.Day,
		"weekStart":  models.DateKey(weekStart),
		"isNextWeek": order.IsNextWeek,
	}).Info("order created")

	return order, nil
}

// insert stores the order under a fresh id. The unique index is the real
// duplicate guard: a violation with an active order in the slot means a
// concurrent create won the race, anything else is treated as an id
// collision and retried.
func (s *OrderService) insert(ctx context.Context, order *models.Order) error {
	for attempt := 0; attempt < orderIDAttempts; attempt++ {
		id, err := GenerateOrderID(order.CreatedAt, order.UserID, s.random)
		if err != nil {
			return fmt.Errorf("generate order id: %w", err)
		}
		order.ID = id

		err = s.orders.Insert(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrUniqueViolation) {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := s.ensureSlotFree(ctx, order.UserID, order.Day, order.DeliveryWeekStart); err != nil {
			return err
		}
	}
	return fmt.Errorf("insert order: no free id after %d attempts", orderIDAttempts)
}

func (s *OrderService) ensureSlotFree(ctx context.Context, userID string, day models.Weekday, weekStart time.Time) error {
	existing, err := s.orders.FindActive(ctx, userID, day, weekStart)
	if err != nil {
		return fmt.Errorf("find active order: %w", err)
	}
	if existing != nil {
		return DuplicateOrderError{
			ExistingID:    existing.ID,
			ExistingCount: existing.Count,
			Day:           day,
			WeekStart:     weekStart,
		}
	}
	return nil
}

func (s *OrderService) unitPrice(ctx context.Context, weekStart time.Time, day models.Weekday) (int64, string, error) {
	offer, err := s.catalog.GetDayOffer(ctx, weekStart, day)
	if err != nil {
		return 0, "", fmt.Errorf("load day offer: %w", err)
	}
	if offer == nil || offer.PriceAmount <= 0 {
		return s.settings.DefaultUnitPrice, s.settings.Currency, nil
	}
	currency := offer.Currency
	if currency == "" {
		currency = s.settings.Currency
	}
	return offer.PriceAmount, currency, nil
}

// consumeRateLimit fails open: a broken limiter never blocks an order.
func (s *OrderService) consumeRateLimit(ctx context.Context, userID string) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.CheckAndConsume(ctx, userID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"component": "order",
			"userId":    userID,
		}).Warn("rate limiter unavailable, allowing order")
		return nil
	}
	if !allowed {
		return RateLimitedError{UserID: userID}
	}
	return nil
}

// syncProfile runs after the order is stored, so a failure only costs the
// remembered contact details.
func (s *OrderService) syncProfile(ctx context.Context, userID string, address, phone *string) {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.UpdateAddressPhone(ctx, userID, address, phone); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"component": "order",
			"userId":    userID,
		}).Warn("failed to update user profile")
	}
}

func (s *OrderService) validateCount(count int) error {
	if count < 1 || count > s.settings.DailyLimit {
		return ValidationError{
			Field:   "count",
			Message: fmt.Sprintf("count must be between 1 and %d", s.settings.DailyLimit),
		}
	}
	return nil
}

func (s *OrderService) Get(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return nil, ForbiddenOrderActionError{ID: id, Reason: "only the owner or an admin can view this order"}
	}
	return order, nil
}

// Update changes count and/or address of an active order.
func (s *OrderService) Update(ctx context.Context, actor Actor, id string, patch OrderPatch) (*models.Order, error) {
	if patch.Count == nil && patch.Address == nil {
		return nil, ValidationError{Field: "payload", Message: "nothing to update"}
	}

	order, err := s.editable(ctx, actor, id, "edit")
	if err != nil {
		return nil, err
	}

	if patch.Count != nil {
		if err := s.validateCount(*patch.Count); err != nil {
			return nil, err
		}
		order.Count = *patch.Count
	}

	var newAddress string
	if patch.Address != nil {
		newAddress = strings.TrimSpace(*patch.Address)
		if newAddress == "" {
			return nil, ValidationError{Field: "address", Message: "delivery address is required"}
		}
		order.AddressSnapshot = newAddress
	}

	order.UpdatedAt = s.clock.Now()
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if newAddress != "" && order.UserID == actor.UserID {
		s.syncProfile(ctx, actor.UserID, &newAddress, nil)
	}

	log.WithFields(log.Fields{
		"component": "order",
		"orderId":   order.ID,
		"actor":     actor.UserID,
	}).Info("order updated")

	return order, nil
}

// Cancel moves an active order to cancelled_by_user when the owner cancels
// it, or to cancelled when an admin does.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.editable(ctx, actor, id, "cancel")
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	order.Status = models.OrderStatusCancelled
	if !actor.IsAdmin && order.UserID == actor.UserID {
		order.Status = models.OrderStatusCancelledByUser
	}
	order.CancelledAt = &now
	order.UpdatedAt = now

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	log.WithFields(log.Fields{
		"component": "order",
		"orderId":   order.ID,
		"status":    order.Status,
		"actor":     actor.UserID,
	}).Info("order cancelled")

	return order, nil
}

func (s *OrderService) editable(ctx context.Context, actor Actor, id, action string) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return nil, ForbiddenOrderActionError{ID: id, Reason: fmt.Sprintf("only the owner or an admin can %s this order", action)}
	}
	if !order.Status.Active() {
		return nil, ForbiddenOrderActionError{ID: id, Reason: fmt.Sprintf("cannot %s an order with status %s", action, order.Status)}
	}
	return order, nil
}

func (s *OrderService) load(ctx context.Context, id string) (*models.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, OrderNotFoundError{ID: id}
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, OrderNotFoundError{ID: id}
	}
	return order, nil
}

// ListForUser returns one page of the actor's orders, newest first. Pages
// past the end are empty but still carry the total.
func (s *OrderService) ListForUser(ctx context.Context, actor Actor, page PageRequest) (OrderPage, error) {
	page, err := page.normalize()
	if err != nil {
		return OrderPage{}, err
	}
	orders, total, err := s.orders.ListByUser(ctx, actor.UserID, page.Skip(), int64(page.Limit))
	if err != nil {
		return OrderPage{}, fmt.Errorf("list user orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return OrderPage{Orders: orders, Page: page.Page, Limit: page.Limit, Total: total}, nil
}

// ListForWeek returns the orders of one delivery week ordered by day and
// creation time. An empty statuses list means every status.
func (s *OrderService) ListForWeek(ctx context.Context, actor Actor, weekStart time.Time, statuses []models.OrderStatus) ([]models.Order, error) {
	if !actor.IsAdmin {
		return nil, ForbiddenOrderActionError{Reason: "only admins can list weekly orders"}
	}
	for _, status := range statuses {
		if !status.Valid() {
			return nil, ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
		}
	}
	orders, err := s.orders.ListByWeek(ctx, models.MondayOf(weekStart), statuses)
	if err != nil {
		return nil, fmt.Errorf("list week orders: %w", err)
	}
	return orders, nil
}

// SetStatus lets an admin move an order to any known status.
func (s *OrderService) SetStatus(ctx context.Context, actor Actor, id string, status models.OrderStatus) (*models.Order, error) {
	if !actor.IsAdmin {
		return nil, ForbiddenOrderActionError{ID: id, Reason: "only admins can change order status"}
	}
	if !status.Valid() {
		return nil, ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	order.Status = status
	order.UpdatedAt = now
	if status == models.OrderStatusCancelled || status == models.OrderStatusCancelledByUser {
		order.CancelledAt = &now
	}

	if err := s.orders.Update(ctx, order); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			if dupErr := s.ensureSlotFree(ctx, order.UserID, order.Day, order.DeliveryWeekStart); dupErr != nil {
				return nil, dupErr
			}
		}
		return nil, fmt.Errorf("set order status: %w", err)
	}

	log.WithFields(log.Fields{
		"component": "order",
		"orderId":   order.ID,
		"status":    status,
	}).Info("order status changed")

	return order, nil
}
