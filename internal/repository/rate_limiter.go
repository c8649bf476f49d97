package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lunchdesk/internal/database"
)

// RateLimiter counts order attempts per user in fixed one-minute buckets.
// Expired buckets are removed by the TTL index on expiresAt.
type RateLimiter struct {
	coll   *mongo.Collection
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit attempts per minute. A limit of zero disables
// limiting.
func NewRateLimiter(db *mongo.Database, limit int) *RateLimiter {
	return &RateLimiter{
		coll:   db.Collection(database.RateLimitsCollection),
		limit:  limit,
		window: time.Minute,
		now:    time.Now,
	}
}

type rateBucket struct {
	ID        string    `bson:"_id"`
	Count     int       `bson:"count"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

func (l *RateLimiter) CheckAndConsume(ctx context.Context, userID string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	start := l.now().UTC().Truncate(l.window)
	key := fmt.Sprintf("order:%s:%d", userID, start.Unix())

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var bucket rateBucket
	err := l.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{
			"$inc":         bson.M{"count": 1},
			"$setOnInsert": bson.M{"expiresAt": start.Add(2 * l.window)},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&bucket)
	if err != nil {
		return false, fmt.Errorf("rate limit bucket: %w", err)
	}
	return bucket.Count <= l.limit, nil
}
