// Package repository implements the services ports on MongoDB.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"lunchdesk/internal/services"
)

const queryTimeout = 5 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// translateWriteError maps duplicate key failures to services.ErrUniqueViolation.
func translateWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, services.ErrUniqueViolation)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var (
	_ services.WindowStore   = (*WindowStore)(nil)
	_ services.OrderStore    = (*OrderStore)(nil)
	_ services.CatalogReader = (*Catalog)(nil)
	_ services.TemplateStore = (*TemplateStore)(nil)
	_ services.ProfileWriter = (*ProfileWriter)(nil)
	_ services.RateLimiter   = (*RateLimiter)(nil)
)
