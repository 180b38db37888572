package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/config"
	"github.com/Skotchmaster/marketplace/internal/db"
	"github.com/Skotchmaster/marketplace/internal/es"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/shipper"
	"github.com/Skotchmaster/marketplace/internal/sms"
	"github.com/Skotchmaster/marketplace/internal/storage"
)

// app holds everything built from the config. The store is created once here and
// shared by every service.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   storage.Storage
	metrics *metrics.Metrics

	catalog   *service.CatalogService
	orders    *service.OrderService
	users     *service.UserService
	dashboard *service.DashboardService

	gdb      *gorm.DB
	rdb      *redis.Client
	producer *mykafka.Producer
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	switch cfg.StorageDriver {
	case config.StorageMemory:
		a.store = storage.NewMemStorage()
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		gdb, err := db.Open(ctx, cfg.StorageDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.gdb = gdb
		a.store = storage.NewGormStorage(gdb)
	}

	if cfg.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not reachable, cache reads will fall through", "addr", cfg.RedisAddr, "error", err)
		}
		a.store = storage.NewCachedStorage(a.store, a.rdb)
	}

	var events mykafka.Publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = mykafka.NewProducer(cfg.KafkaBrokers)
		events = a.producer
	}

	a.catalog = &service.CatalogService{
		Store:   a.store,
		Events:  events,
		Shipper: shipper.NewClient(cfg.ShipperURL, cfg.ShipperAPIKey),
		Metrics: a.metrics,
	}
	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Warn("elasticsearch not reachable, search falls back to catalog scan", "url", cfg.ESURL, "error", err)
		} else {
			a.catalog.Index = es.NewProductIndex(client, cfg.ESIndex)
		}
	}

	var notifier sms.Notifier = sms.Nop{}
	if cfg.SMSAPIKey != "" {
		notifier = sms.NewClient(cfg.SMSURL, cfg.SMSAPIKey)
	}

	a.orders = &service.OrderService{Store: a.store, Events: events, Notifier: notifier, Metrics: a.metrics}
	a.users = &service.UserService{Store: a.store, Events: events, JWTSecret: cfg.JWTSecret}
	a.dashboard = &service.DashboardService{Store: a.store}
	return a, nil
}

// ready reports whether the database answers. Redis, Kafka and Elasticsearch are
// optional and never make the service unready.
func (a *app) ready(ctx context.Context) error {
	if a.gdb == nil {
		return nil
	}
	sqlDB, err := a.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *app) Close() error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka close: %w", err))
		}
	}
	if a.gdb != nil {
		if err := db.Close(a.gdb); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
