package cli

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"lunchdesk/internal/config"
	"lunchdesk/internal/database"
	"lunchdesk/internal/logging"
	"lunchdesk/internal/repository"
	"lunchdesk/internal/services"
)

// operatorActor is the identity CLI commands act as.
var operatorActor = services.Actor{UserID: "cli", IsAdmin: true}

// app holds the wired services shared by the commands.
type app struct {
	cfg    config.Config
	client *mongo.Client
	clock  services.Clock

	window   *services.WindowEvaluator
	orders   *services.OrderService
	planner  *services.Planner
	checkout *services.CheckoutService
}

// bootstrap loads configuration, connects to MongoDB and wires the
// services. serving additionally requires the settings only the HTTP API
// needs.
func bootstrap(ctx context.Context, serving bool) (*app, error) {
	config.Load()
	cfg := config.AppEnv

	if err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Path: cfg.LogPath}); err != nil {
		return nil, err
	}

	if serving {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	rules, err := config.LoadPricingRules(cfg.PricingRulesPath, cfg.Currency)
	if err != nil {
		return nil, err
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.DBName)
	log.WithField("db", db.Name()).Info("mongodb connected")

	if err := database.EnsureIndexes(db); err != nil {
		log.WithError(err).Warn("index bootstrap incomplete")
	}

	clock := services.SystemClock(loc)
	catalog := repository.NewCatalog(db)
	profiles := repository.NewProfileWriter(db)

	window := services.NewWindowEvaluator(repository.NewWindowStore(db), clock, loc, cfg.OrderCutoffHour)
	orders := services.NewOrderService(services.OrderDeps{
		Window:   window,
		Catalog:  catalog,
		Orders:   repository.NewOrderStore(db),
		Limiter:  repository.NewRateLimiter(db, cfg.OrderRateLimit),
		Profiles: profiles,
		Clock:    clock,
	}, services.OrderSettings{
		DailyLimit:       cfg.DailyOrderLimit,
		DefaultUnitPrice: cfg.DefaultUnitPrice,
		Currency:         cfg.Currency,
	})
	planner := services.NewPlanner(catalog, rules)

	return &app{
		cfg:      cfg,
		client:   client,
		clock:    clock,
		window:   window,
		orders:   orders,
		planner:  planner,
		checkout: services.NewCheckoutService(planner, repository.NewTemplateStore(db), profiles, clock),
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("mongodb disconnect failed")
	}
}

func (a *app) ping(ctx context.Context) error {
	return database.Ping(ctx, a.client)
}
