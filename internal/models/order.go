package models

import "time"

// OrderStatus tracks an order through fulfilment. Orders are never deleted,
// only moved between statuses.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusCancelledByUser OrderStatus = "cancelled_by_user"
)

// ActiveOrderStatuses are the statuses that occupy a (user, day, week) slot.
var ActiveOrderStatuses = []OrderStatus{OrderStatusNew, OrderStatusConfirmed}

// Active reports whether the order still holds its delivery slot.
func (s OrderStatus) Active() bool {
	return s == OrderStatusNew || s == OrderStatusConfirmed
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusCancelledByUser:
		return true
	}
	return false
}

// Order is a single day's lunch order for one delivery week. The menu,
// address and phone are snapshots taken when the order was placed.
type Order struct {
	ID                string      `bson:"_id" json:"id"`
	UserID            string      `bson:"userId" json:"userId"`
	Day               Weekday     `bson:"day" json:"day"`
	Count             int         `bson:"count" json:"count"`
	Status            OrderStatus `bson:"status" json:"status"`
	MenuSnapshot      []string    `bson:"menuSnapshot" json:"menu"`
	AddressSnapshot   string      `bson:"addressSnapshot" json:"address"`
	PhoneSnapshot     string      `bson:"phoneSnapshot,omitempty" json:"phone,omitempty"`
	DeliveryWeekStart time.Time   `bson:"deliveryWeekStart" json:"deliveryWeekStart"`
	DeliveryDate      time.Time   `bson:"deliveryDate" json:"deliveryDate"`
	IsNextWeek        bool        `bson:"isNextWeek" json:"isNextWeek"`
	UnitPrice         int64       `bson:"unitPrice" json:"unitPrice"`
	Currency          string      `bson:"currency" json:"currency"`
	CreatedAt         time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time   `bson:"updatedAt" json:"updatedAt"`
	CancelledAt       *time.Time  `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// Total is the order price in minor units.
func (o Order) Total() int64 {
	return o.UnitPrice * int64(o.Count)
}

// WindowState is the admin-controlled next-week admission toggle. There is
// exactly one per deployment.
type WindowState struct {
	NextWeekEnabled bool       `bson:"nextWeekEnabled" json:"nextWeekEnabled"`
	WeekStart       *time.Time `bson:"weekStart,omitempty" json:"weekStart,omitempty"`
	Note            string     `bson:"note,omitempty" json:"note,omitempty"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}
