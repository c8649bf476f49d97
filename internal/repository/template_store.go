package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"lunchdesk/internal/database"
	"lunchdesk/internal/models"
)

// TemplateStore writes a checkout template and its week rows in one
// transaction, so a template never exists without all of its weeks.
type TemplateStore struct {
	db *mongo.Database
}

func NewTemplateStore(db *mongo.Database) *TemplateStore {
	return &TemplateStore{db: db}
}

func (s *TemplateStore) CreateTemplate(ctx context.Context, template models.CheckoutTemplate, weeks []models.CheckoutTemplateWeek) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := s.db.Collection(database.TemplatesCollection).InsertOne(sessCtx, template); err != nil {
			return nil, err
		}
		if len(weeks) == 0 {
			return nil, nil
		}
		docs := make([]interface{}, 0, len(weeks))
		for _, week := range weeks {
			docs = append(docs, week)
		}
		_, err := s.db.Collection(database.TemplateWeeksCollection).InsertMany(sessCtx, docs)
		return nil, err
	})
	return translateWriteError("create checkout template", err)
}
