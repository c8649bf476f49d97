package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"lunchdesk/internal/database"
)

// ProfileWriter stores the last used delivery contact on the user document.
type ProfileWriter struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewProfileWriter(db *mongo.Database) *ProfileWriter {
	return &ProfileWriter{coll: db.Collection(database.UsersCollection), now: time.Now}
}

// UpdateAddressPhone only touches the document when a provided value
// differs from what is stored.
func (w *ProfileWriter) UpdateAddressPhone(ctx context.Context, userID string, address, phone *string) error {
	set := bson.M{}
	changed := bson.A{}
	if address != nil {
		set["address"] = *address
		changed = append(changed, bson.M{"address": bson.M{"$ne": *address}})
	}
	if phone != nil {
		set["phone"] = *phone
		changed = append(changed, bson.M{"phone": bson.M{"$ne": *phone}})
	}
	if len(set) == 0 {
		return nil
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q", userID)
	}
	set["updatedAt"] = w.now()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err = w.coll.UpdateOne(ctx, bson.M{"_id": id, "$or": changed}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}
