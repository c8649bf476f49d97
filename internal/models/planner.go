package models

import "time"

// LineStatus is the acceptance outcome of one planner line.
type LineStatus string

const (
	LineOK       LineStatus = "ok"
	LinePartial  LineStatus = "partial"
	LineSoldOut  LineStatus = "sold_out"
	LineClosed   LineStatus = "closed"
	LineMissing  LineStatus = "missing"
	LineReserved LineStatus = "reserved"
)

// MenuStatus describes whether a planned week has a menu to price against.
type MenuStatus string

const (
	MenuDisabled  MenuStatus = "disabled"
	MenuPending   MenuStatus = "pending"
	MenuEmpty     MenuStatus = "empty"
	MenuPublished MenuStatus = "published"
)

// PlannerSelection asks for a number of portions of one day offer.
type PlannerSelection struct {
	OfferID  string `bson:"offerId" json:"offerId"`
	Portions int    `bson:"portions" json:"portions"`
}

// PlannerWeekRequest is one week of a multi-week plan. A nil WeekStart means
// "whatever week the offers belong to".
type PlannerWeekRequest struct {
	WeekStart  *time.Time         `bson:"weekStart,omitempty" json:"weekStart,omitempty"`
	Enabled    bool               `bson:"enabled" json:"enabled"`
	Selections []PlannerSelection `bson:"selections" json:"selections"`
}

// PlannerLine is the priced outcome for one offer within a week.
type PlannerLine struct {
	OfferID           string     `bson:"offerId" json:"offerId"`
	Day               Weekday    `bson:"day,omitempty" json:"day,omitempty"`
	Status            LineStatus `bson:"status" json:"status"`
	RequestedPortions int        `bson:"requestedPortions" json:"requestedPortions"`
	AcceptedPortions  int        `bson:"acceptedPortions" json:"acceptedPortions"`
	UnitPrice         int64      `bson:"unitPrice" json:"unitPrice"`
	Currency          string     `bson:"currency" json:"currency"`
	Subtotal          int64      `bson:"subtotal" json:"subtotal"`
	Message           string     `bson:"message,omitempty" json:"message,omitempty"`
}

// PlannerWeekQuote is the priced breakdown of one week request.
type PlannerWeekQuote struct {
	WeekStart  *time.Time    `json:"weekStart,omitempty"`
	Label      string        `json:"label"`
	Enabled    bool          `json:"enabled"`
	MenuStatus MenuStatus    `json:"menuStatus"`
	Items      []PlannerLine `json:"items"`
	Subtotal   int64         `json:"subtotal"`
	Currency   string        `json:"currency"`
	Warnings   []string      `json:"warnings"`
}

// CheckoutTemplate is an accepted planner quote kept for repeat ordering.
// It is written once and never modified.
type CheckoutTemplate struct {
	ID                string     `bson:"_id" json:"id"`
	UserID            string     `bson:"userId" json:"userId"`
	BaseWeekStart     *time.Time `bson:"baseWeekStart,omitempty" json:"baseWeekStart,omitempty"`
	WeeksCount        int        `bson:"weeksCount" json:"weeksCount"`
	RepeatWeeks       bool       `bson:"repeatWeeks" json:"repeatWeeks"`
	Address           string     `bson:"address" json:"address"`
	PromoCode         string     `bson:"promoCode,omitempty" json:"promoCode,omitempty"`
	Subtotal          int64      `bson:"subtotal" json:"subtotal"`
	Discount          int64      `bson:"discount" json:"discount"`
	Total             int64      `bson:"total" json:"total"`
	Currency          string     `bson:"currency" json:"currency"`
	DeliveryZone      string     `bson:"deliveryZone,omitempty" json:"deliveryZone,omitempty"`
	DeliveryAvailable bool       `bson:"deliveryAvailable" json:"deliveryAvailable"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
}

// CheckoutTemplateWeek is one week row of a checkout template. WeekIndex is
// unique within its template.
type CheckoutTemplateWeek struct {
	TemplateID string             `bson:"templateId" json:"templateId"`
	WeekIndex  int                `bson:"weekIndex" json:"weekIndex"`
	WeekStart  *time.Time         `bson:"weekStart,omitempty" json:"weekStart,omitempty"`
	Label      string             `bson:"label" json:"label"`
	Enabled    bool               `bson:"enabled" json:"enabled"`
	MenuStatus MenuStatus         `bson:"menuStatus" json:"menuStatus"`
	Subtotal   int64              `bson:"subtotal" json:"subtotal"`
	Currency   string             `bson:"currency" json:"currency"`
	Selections []PlannerSelection `bson:"selections" json:"selections"`
	Items      []PlannerLine      `bson:"items" json:"items"`
	Warnings   []string           `bson:"warnings" json:"warnings"`
}
