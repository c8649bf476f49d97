package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OfferStatus is the sale state of a day offer.
type OfferStatus string

const (
	OfferAvailable OfferStatus = "available"
	OfferSoldOut   OfferStatus = "sold_out"
	OfferClosed    OfferStatus = "closed"
)

// MenuItem is one dish on a day's menu.
type MenuItem struct {
	Day      Weekday `bson:"day" json:"day"`
	Position int     `bson:"position" json:"position"`
	Title    string  `bson:"title" json:"title"`
}

// MenuWeek is a week of menus owned by the catalog.
type MenuWeek struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WeekStart   time.Time          `bson:"weekStart" json:"weekStart"`
	Label       string             `bson:"label" json:"label"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Items       []MenuItem         `bson:"items" json:"items"`
}

// DayOffer is the priced, capacity-limited unit sold for one weekday of one
// menu week. WeekStart is resolved from the owning week on read.
type DayOffer struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WeekID           primitive.ObjectID `bson:"weekId" json:"weekId"`
	WeekStart        time.Time          `bson:"-" json:"weekStart"`
	Day              Weekday            `bson:"day" json:"day"`
	Status           OfferStatus        `bson:"status" json:"status"`
	PriceAmount      int64              `bson:"priceAmount" json:"priceAmount"`
	Currency         string             `bson:"priceCurrency" json:"currency"`
	PortionLimit     *int               `bson:"portionLimit,omitempty" json:"portionLimit,omitempty"`
	PortionsReserved int                `bson:"portionsReserved" json:"portionsReserved"`
	OrderDeadline    *time.Time         `bson:"orderDeadline,omitempty" json:"orderDeadline,omitempty"`
}

// AvailableCapacity returns the portions still sellable. limited is false
// when the offer has no portion limit.
func (o DayOffer) AvailableCapacity() (capacity int, limited bool) {
	if o.PortionLimit == nil {
		return 0, false
	}
	return max(*o.PortionLimit-o.PortionsReserved, 0), true
}
