package database

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lunchdesk/internal/models"
)

const (
	OrdersCollection        = "orders"
	OrderWindowCollection   = "order_window"
	MenuWeeksCollection     = "menu_weeks"
	DayOffersCollection     = "day_offers"
	TemplatesCollection     = "checkout_templates"
	TemplateWeeksCollection = "checkout_template_weeks"
	UsersCollection         = "users"
	RateLimitsCollection    = "rate_limits"
)

// ActiveSlotIndex is the name of the index that allows one active order per
// (user, day, delivery week). Partial filters with $in need MongoDB 6.0+.
const ActiveSlotIndex = "active_slot_unique"

func createIndexes(db *mongo.Database, collection string, indexes ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := log.WithFields(log.Fields{"component": "database", "collection": collection})
	entry.Debug("creating indexes")

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		entry.WithError(err).Error("index creation failed")
		return err
	}
	entry.WithField("indexes", names).Info("indexes ensured")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	activeStatuses := bson.A{}
	for _, status := range models.ActiveOrderStatuses {
		activeStatuses = append(activeStatuses, string(status))
	}

	return createIndexes(db, OrdersCollection,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "day", Value: 1},
				{Key: "deliveryWeekStart", Value: 1},
			},
			Options: options.Index().
				SetName(ActiveSlotIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": activeStatuses},
				}),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "deliveryWeekStart", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("week_status"),
		},
	)
}

func EnsureCatalogIndexes(db *mongo.Database) error {
	if err := createIndexes(db, MenuWeeksCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "weekStart", Value: 1}},
		Options: options.Index().SetName("weekStart_unique").SetUnique(true),
	}); err != nil {
		return err
	}
	return createIndexes(db, DayOffersCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "weekId", Value: 1}, {Key: "day", Value: 1}},
		Options: options.Index().SetName("week_day_unique").SetUnique(true),
	})
}

func EnsureTemplateIndexes(db *mongo.Database) error {
	if err := createIndexes(db, TemplatesCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("user_created"),
	}); err != nil {
		return err
	}
	return createIndexes(db, TemplateWeeksCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "weekIndex", Value: 1}},
		Options: options.Index().SetName("template_week_unique").SetUnique(true),
	})
}

func EnsureUserIndexes(db *mongo.Database) error {
	return createIndexes(db, UsersCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"email": bson.M{"$type": "string"},
			}),
	})
}

// EnsureRateLimitIndexes expires counter buckets once their window is over.
func EnsureRateLimitIndexes(db *mongo.Database) error {
	return createIndexes(db, RateLimitsCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("expires_ttl").SetExpireAfterSeconds(0),
	})
}

// EnsureIndexes creates every index the application relies on. Failures are
// logged and the first one is returned after all collections were tried.
func EnsureIndexes(db *mongo.Database) error {
	var first error
	for _, ensure := range []func(*mongo.Database) error{
		EnsureOrderIndexes,
		EnsureCatalogIndexes,
		EnsureTemplateIndexes,
		EnsureUserIndexes,
		EnsureRateLimitIndexes,
	} {
		if err := ensure(db); err != nil && first == nil {
			first = err
		}
	}
	return first
}
