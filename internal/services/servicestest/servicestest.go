// Package servicestest provides in-memory implementations of the services
// ports. The order and template stores enforce the same uniqueness rules as
// the Mongo indexes.
package servicestest

import (
	"context"
	"encoding/binary"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lunchdesk/internal/models"
	"lunchdesk/internal/services"
)

// FixedClock always returns the same instant.
func FixedClock(t time.Time) services.Clock {
	return services.ClockFunc(func() time.Time { return t })
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CountingReader yields a counter as big-endian bytes, so every read of four
// bytes differs from the previous one.
type CountingReader struct {
	mu sync.Mutex
	n  uint32
}

func (r *CountingReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < len(p); i += 4 {
		r.n += 1 << 12
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], r.n)
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

type WindowStore struct {
	mu    sync.Mutex
	state *models.WindowState
	Saves int
	Err   error
}

func NewWindowStore(state *models.WindowState) *WindowStore {
	return &WindowStore{state: state}
}

func (s *WindowStore) LoadWindow(context.Context) (*models.WindowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.state == nil {
		return nil, nil
	}
	state := *s.state
	return &state, nil
}

func (s *WindowStore) SaveWindow(_ context.Context, state models.WindowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.state = &state
	s.Saves++
	return nil
}

// Catalog is an in-memory CatalogReader. Offer ids are assigned by AddOffer.
type Catalog struct {
	mu     sync.Mutex
	weeks  map[string]models.MenuWeek
	offers map[string]models.DayOffer

	OfferLookups int
	WeekLookups  int
	Err          error
}

func NewCatalog() *Catalog {
	return &Catalog{
		weeks:  map[string]models.MenuWeek{},
		offers: map[string]models.DayOffer{},
	}
}

// AddWeek publishes a menu week with the given dishes per day.
func (c *Catalog) AddWeek(weekStart time.Time, label string, dishes map[models.Weekday][]string) models.MenuWeek {
	c.mu.Lock()
	defer c.mu.Unlock()

	week := models.MenuWeek{
		ID:          primitive.NewObjectID(),
		WeekStart:   weekStart,
		Label:       label,
		IsPublished: true,
	}
	for _, day := range models.Weekdays {
		for i, title := range dishes[day] {
			week.Items = append(week.Items, models.MenuItem{Day: day, Position: i, Title: title})
		}
	}
	c.weeks[models.DateKey(weekStart)] = week
	return week
}

// AddOffer stores offer and returns its hex id. WeekStart must be set.
func (c *Catalog) AddOffer(offer models.DayOffer) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if offer.ID.IsZero() {
		offer.ID = primitive.NewObjectID()
	}
	if week, ok := c.weeks[models.DateKey(offer.WeekStart)]; ok {
		offer.WeekID = week.ID
	}
	c.offers[offer.ID.Hex()] = offer
	return offer.ID.Hex()
}

func (c *Catalog) WeekExists(_ context.Context, weekStart time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return false, c.Err
	}
	_, ok := c.weeks[models.DateKey(weekStart)]
	return ok, nil
}

func (c *Catalog) GetWeeks(_ context.Context, weekStarts []time.Time) (map[string]models.MenuWeek, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WeekLookups++
	if c.Err != nil {
		return nil, c.Err
	}
	found := map[string]models.MenuWeek{}
	for _, start := range weekStarts {
		key := models.DateKey(start)
		if week, ok := c.weeks[key]; ok {
			found[key] = week
		}
	}
	return found, nil
}

func (c *Catalog) GetDishes(_ context.Context, weekStart time.Time, day models.Weekday) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	week, ok := c.weeks[models.DateKey(weekStart)]
	if !ok {
		return nil, nil
	}
	var dishes []string
	for _, item := range week.Items {
		if item.Day == day {
			dishes = append(dishes, item.Title)
		}
	}
	return dishes, nil
}

func (c *Catalog) GetDayOffer(_ context.Context, weekStart time.Time, day models.Weekday) (*models.DayOffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	for _, offer := range c.offers {
		if offer.Day == day && offer.WeekStart.Equal(weekStart) {
			found := offer
			return &found, nil
		}
	}
	return nil, nil
}

func (c *Catalog) GetOffersByIDs(_ context.Context, ids []string) (map[string]models.DayOffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.OfferLookups++
	if c.Err != nil {
		return nil, c.Err
	}
	found := map[string]models.DayOffer{}
	for _, id := range ids {
		if offer, ok := c.offers[id]; ok {
			found[id] = offer
		}
	}
	return found, nil
}

// OrderStore keeps orders in memory. BeforeInsert, when set, runs inside
// Insert before the constraints are checked, which lets tests simulate a
// concurrent writer.
type OrderStore struct {
	mu     sync.Mutex
	orders map[string]models.Order

	BeforeInsert func(order models.Order)
	Err          error
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: map[string]models.Order{}}
}

// Put stores order directly, bypassing the constraints.
func (s *OrderStore) Put(order models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = cloneOrder(order)
}

func (s *OrderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// ActiveCount counts active orders in one (user, day, week) slot.
func (s *OrderStore) ActiveCount(userID string, day models.Weekday, weekStart time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, order := range s.orders {
		if sameSlot(order, userID, day, weekStart) && order.Status.Active() {
			n++
		}
	}
	return n
}

func (s *OrderStore) Insert(_ context.Context, order *models.Order) error {
	if s.BeforeInsert != nil {
		s.BeforeInsert(*order)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, exists := s.orders[order.ID]; exists {
		return services.ErrUniqueViolation
	}
	if err := s.checkSlot(*order); err != nil {
		return err
	}
	s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (s *OrderStore) Update(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if err := s.checkSlot(*order); err != nil {
		return err
	}
	s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (s *OrderStore) checkSlot(order models.Order) error {
	if !order.Status.Active() {
		return nil
	}
	for id, existing := range s.orders {
		if id != order.ID && existing.Status.Active() && sameSlot(existing, order.UserID, order.Day, order.DeliveryWeekStart) {
			return services.ErrUniqueViolation
		}
	}
	return nil
}

func (s *OrderStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	found := cloneOrder(order)
	return &found, nil
}

func (s *OrderStore) FindActive(_ context.Context, userID string, day models.Weekday, weekStart time.Time) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, order := range s.orders {
		if order.Status.Active() && sameSlot(order, userID, day, weekStart) {
			found := cloneOrder(order)
			return &found, nil
		}
	}
	return nil, nil
}

func (s *OrderStore) ListByUser(_ context.Context, userID string, skip, limit int64) ([]models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var orders []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, cloneOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	total := int64(len(orders))
	if skip >= total {
		return []models.Order{}, total, nil
	}
	end := total
	if limit > 0 && limit < total-skip {
		end = skip + limit
	}
	return orders[skip:end], total, nil
}

func (s *OrderStore) ListByWeek(_ context.Context, weekStart time.Time, statuses []models.OrderStatus) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, order := range s.orders {
		if !order.DeliveryWeekStart.Equal(weekStart) {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, order.Status) {
			continue
		}
		orders = append(orders, cloneOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Day != orders[j].Day {
			return orders[i].Day.Index() < orders[j].Day.Index()
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func sameSlot(order models.Order, userID string, day models.Weekday, weekStart time.Time) bool {
	return order.UserID == userID && order.Day == day && order.DeliveryWeekStart.Equal(weekStart)
}

func containsStatus(statuses []models.OrderStatus, status models.OrderStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func cloneOrder(order models.Order) models.Order {
	order.MenuSnapshot = append([]string(nil), order.MenuSnapshot...)
	if order.CancelledAt != nil {
		at := *order.CancelledAt
		order.CancelledAt = &at
	}
	return order
}

// TemplateStore keeps checkout templates in memory and rejects duplicate
// week indexes the way the (templateId, weekIndex) index does.
type TemplateStore struct {
	mu        sync.Mutex
	Templates map[string]models.CheckoutTemplate
	Weeks     map[string][]models.CheckoutTemplateWeek
	Err       error
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		Templates: map[string]models.CheckoutTemplate{},
		Weeks:     map[string][]models.CheckoutTemplateWeek{},
	}
}

func (s *TemplateStore) CreateTemplate(_ context.Context, template models.CheckoutTemplate, weeks []models.CheckoutTemplateWeek) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, exists := s.Templates[template.ID]; exists {
		return services.ErrUniqueViolation
	}
	seen := map[int]bool{}
	for _, week := range weeks {
		if seen[week.WeekIndex] {
			return services.ErrUniqueViolation
		}
		seen[week.WeekIndex] = true
	}
	s.Templates[template.ID] = template
	s.Weeks[template.ID] = append([]models.CheckoutTemplateWeek(nil), weeks...)
	return nil
}

// ProfileUpdate is one recorded ProfileWriter call.
type ProfileUpdate struct {
	UserID  string
	Address *string
	Phone   *string
}

type Profiles struct {
	mu      sync.Mutex
	Updates []ProfileUpdate
	Err     error
}

func (p *Profiles) UpdateAddressPhone(_ context.Context, userID string, address, phone *string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Updates = append(p.Updates, ProfileUpdate{UserID: userID, Address: address, Phone: phone})
	return p.Err
}

// Limiter answers every check with Allowed and Err.
type Limiter struct {
	Allowed bool
	Err     error
	Calls   int
}

func (l *Limiter) CheckAndConsume(context.Context, string) (bool, error) {
	l.Calls++
	return l.Allowed, l.Err
}
