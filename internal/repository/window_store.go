package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lunchdesk/internal/database"
	"lunchdesk/internal/models"
)

const windowDocumentID = "singleton"

type windowDocument struct {
	ID                 string `bson:"_id"`
	models.WindowState `bson:",inline"`
}

// WindowStore keeps the order window in a single document.
type WindowStore struct {
	coll *mongo.Collection
}

func NewWindowStore(db *mongo.Database) *WindowStore {
	return &WindowStore{coll: db.Collection(database.OrderWindowCollection)}
}

func (s *WindowStore) LoadWindow(ctx context.Context) (*models.WindowState, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc windowDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": windowDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order window: %w", err)
	}
	return &doc.WindowState, nil
}

func (s *WindowStore) SaveWindow(ctx context.Context, state models.WindowState) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": windowDocumentID},
		windowDocument{ID: windowDocumentID, WindowState: state},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save order window: %w", err)
	}
	return nil
}
