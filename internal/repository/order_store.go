package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lunchdesk/internal/database"
	"lunchdesk/internal/models"
)

// OrderStore persists orders. The active_slot_unique index turns a second
// active order for the same slot into services.ErrUniqueViolation.
type OrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{coll: db.Collection(database.OrdersCollection)}
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.coll.InsertOne(ctx, order)
	return translateWriteError("insert order", err)
}

func (s *OrderStore) Update(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return translateWriteError("update order", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update order %s: %w", order.ID, mongo.ErrNoDocuments)
	}
	return nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	return s.findOne(ctx, bson.M{"_id": id}, nil)
}

func (s *OrderStore) FindActive(ctx context.Context, userID string, day models.Weekday, weekStart time.Time) (*models.Order, error) {
	filter := bson.M{
		"userId":            userID,
		"day":               day,
		"deliveryWeekStart": weekStart,
		"status":            bson.M{"$in": models.ActiveOrderStatuses},
	}
	return s.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (s *OrderStore) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	findOpts := []*options.FindOneOptions{}
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	var order models.Order
	err := s.coll.FindOne(ctx, filter, findOpts...).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error) {
	filter := bson.M{"userId": userID}

	countCtx, cancel := withTimeout(ctx)
	total, err := s.coll.CountDocuments(countCtx, filter)
	cancel()
	if err != nil {
		return nil, 0, fmt.Errorf("count user orders: %w", err)
	}
	if skip >= total {
		return []models.Order{}, total, nil
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	findOptions.SetSkip(skip).SetLimit(limit)

	orders, err := s.find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByWeek sorts by delivery date, which follows weekday order inside a
// delivery week.
func (s *OrderStore) ListByWeek(ctx context.Context, weekStart time.Time, statuses []models.OrderStatus) ([]models.Order, error) {
	filter := bson.M{"deliveryWeekStart": weekStart}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "deliveryDate", Value: 1},
		{Key: "createdAt", Value: 1},
	}))
}

func (s *OrderStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}
