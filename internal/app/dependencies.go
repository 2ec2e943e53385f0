package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
	"github.com/nattawatt/canteen-cancellation/internal/messaging/kafka"
	"github.com/nattawatt/canteen-cancellation/internal/metrics"
	"github.com/nattawatt/canteen-cancellation/internal/service/orders"
	"github.com/nattawatt/canteen-cancellation/internal/service/shops"
	"github.com/nattawatt/canteen-cancellation/internal/storage/memory"
	"github.com/nattawatt/canteen-cancellation/internal/storage/postgres"
	"github.com/nattawatt/canteen-cancellation/internal/workflow"
)

// Dependencies holds every wired collaborator of the application.
type Dependencies struct {
	Orders   *orders.Service
	Shops    *shops.Service
	Cache    domain.ScheduleCache
	Timeline domain.TimelineRepository
	Metrics  *metrics.WorkflowMetrics

	Publisher domain.SchedulePublisher
	Logger    *log.Entry

	store    *postgres.Store
	producer *kafka.Producer
}

// NewDependencies builds the dependency graph for the configured storage
// driver. Kafka is optional: when no brokers are configured the publisher
// stays nil and the workflow simply skips publishing.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Logger:  logger,
		Metrics: metrics.NewWorkflowMetrics(),
		Cache:   memory.NewScheduleCache(),
	}

	var (
		orderRepo    domain.OrderRepository
		shopRepo     domain.ShopRepository
		timelineRepo domain.TimelineRepository
	)

	switch cfg.StorageDriver {
	case "", "memory":
		orderRepo = memory.NewOrderRepository()
		shopRepo = memory.NewShopRepository()
		timelineRepo = memory.NewTimelineRepository()
		logger.Info("using in-memory storage")
	case "postgres":
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		deps.store = store
		orderRepo = postgres.NewOrderRepository(store)
		shopRepo = postgres.NewShopRepository(store)
		timelineRepo = postgres.NewTimelineRepository(store)
		logger.Info("using postgres storage")
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	deps.Orders = orders.NewService(orderRepo, logger.WithField("component", "orders"))
	deps.Shops = shops.NewService(shopRepo, logger.WithField("component", "shops"))
	deps.Timeline = timelineRepo

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.producer = producer
			deps.Publisher = kafka.NewSchedulePublisher(producer)
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	return deps, nil
}

// WorkflowDeps assembles the controller dependency set.
func (d *Dependencies) WorkflowDeps(cfg Config) workflow.Deps {
	return workflow.Deps{
		Orders:          d.Orders,
		Shops:           d.Shops,
		Cache:           d.Cache,
		Quota:           d.Orders,
		QuotaRecorder:   d.Orders,
		Publisher:       d.Publisher,
		Timeline:        d.Timeline,
		Metrics:         d.Metrics,
		Logger:          d.Logger.WithField("component", "cancelflow"),
		EffectorTimeout: cfg.EffectorTimeout,
	}
}

// PingStorage reports the backing store's health. Always nil for memory.
func (d *Dependencies) PingStorage(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	return d.store.Ping(ctx)
}

// Close releases external resources.
func (d *Dependencies) Close() {
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			d.Logger.Info("kafka producer closed")
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
