package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lwhx/OVH/internal/catalog"
	"github.com/lwhx/OVH/internal/constants"
	"github.com/lwhx/OVH/internal/inventory"
	"github.com/lwhx/OVH/internal/lock"
	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/message_broker"
	"github.com/lwhx/OVH/internal/metrics"
	"github.com/lwhx/OVH/internal/notify"
	"github.com/lwhx/OVH/internal/ovhapi"
	"github.com/lwhx/OVH/internal/purchase"
	"github.com/lwhx/OVH/internal/registry"
	"github.com/lwhx/OVH/internal/scheduler"
	"github.com/lwhx/OVH/internal/store"
	"github.com/lwhx/OVH/internal/store/file"
	"github.com/lwhx/OVH/internal/store/memory"
	"github.com/lwhx/OVH/internal/store/postgres"
	redisstore "github.com/lwhx/OVH/internal/store/redis"
	"github.com/lwhx/OVH/types"
	"github.com/lwhx/OVH/types/config"
	"github.com/lwhx/OVH/web"
	"golang.org/x/sync/errgroup"
)

// Container holds all application dependencies. It is the single source of truth
// for dependency injection and ensures connections and services are created once.
type Container struct {
	Config  *config.AppConfig
	Logger  *logging.Logger
	Journal *logging.Journal

	Documents store.DocumentStore
	Registry  *registry.Registry
	Metrics   *metrics.Collector

	Publisher message_broker.Publisher
	Notifier  notify.Notifier

	Checker      *inventory.Checker
	Executor     *purchase.Executor
	Catalog      *catalog.Service
	QueueManager *scheduler.QueueManager
	Refresher    *scheduler.AvailabilityRefresher
	RouteHandler *web.RouteHandler
}

// NewContainer creates and wires all dependencies. Call this once per
// application lifecycle.
func NewContainer(ctx context.Context, cfg *config.AppConfig, opts ...ContainerOption) (*Container, error) {
	opt := &containerConfig{}
	for _, o := range opts {
		o(opt)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	journal := logging.NewJournal(constants.MaxJournalEntries)
	logger.AddHook(journal)

	docs := opt.docs
	if docs == nil {
		docs, err = openDocumentStore(ctx, cfg, opt)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}

	reg := registry.New(store.NewRepository(docs, logger), logger)
	reg.Load(ctx)
	if err := seedSettings(ctx, reg, opt.seed); err != nil {
		docs.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}

	pool := opt.pool
	if pool == nil {
		pool = ovhapi.NewPool()
	}
	session := newProviderSession(pool, reg.Settings)
	collector := metrics.NewCollector()

	telegram := notify.NewTelegramSink(reg.Settings, cfg.NotifyTimeout, logger)
	if opt.notifier != "" {
		telegram = telegram.WithBaseURL(opt.notifier)
	}
	notifiers := notify.Multi{telegram}

	var publisher message_broker.Publisher
	if cfg.MQDriver == config.RabbitMQ {
		mq, err := message_broker.NewRabbitMQ(*cfg.RabbitMQConfig)
		if err != nil {
			docs.Close()
			return nil, fmt.Errorf("init rabbitmq: %w", err)
		}
		publisher = mq
		notifiers = append(notifiers, notify.NewBrokerSink(mq, logger))
	}

	checker := inventory.NewChecker(session)
	executor := purchase.NewExecutor(session, logger)
	catalogService := catalog.NewService(reg, session, checker, collector, logger)

	queueManager := scheduler.NewQueueManager(reg, executor, notifiers, collector, logger,
		scheduler.WithTickInterval(cfg.TickInterval),
		scheduler.WithWorkerCount(cfg.WorkerCount),
		scheduler.WithNotifyTimeout(cfg.NotifyTimeout),
	)

	var refresher *scheduler.AvailabilityRefresher
	if cfg.AvailabilityRefresh != "" {
		refresher = scheduler.NewAvailabilityRefresher(cfg.AvailabilityRefresh, catalogService, logger)
	}

	routeHandler := web.NewRouteHandler(web.Dependencies{
		Registry: reg,
		Catalog:  catalogService,
		Checker:  checker,
		Verifier: session,
		Notifier: telegram,
		Journal:  journal,
		Metrics:  collector,
		Logger:   logger,
	}, cfg)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Journal:      journal,
		Documents:    docs,
		Registry:     reg,
		Metrics:      collector,
		Publisher:    publisher,
		Notifier:     notifiers,
		Checker:      checker,
		Executor:     executor,
		Catalog:      catalogService,
		QueueManager: queueManager,
		Refresher:    refresher,
		RouteHandler: routeHandler,
	}, nil
}

// Run starts the queue processor, the availability refresher and the control
// API, and blocks until ctx is cancelled or one of them fails.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.QueueManager.Start(ctx) })
	if c.Refresher != nil {
		g.Go(func() error { return c.Refresher.Start(ctx) })
	}
	g.Go(func() error { return c.RouteHandler.Serve(ctx) })

	err := g.Wait()
	c.Logger.Source("system").Info("shutting down")
	return err
}

// Close releases the storage connection and the broker.
func (c *Container) Close() error {
	var firstErr error
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.Documents.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func openDocumentStore(ctx context.Context, cfg *config.AppConfig, opt *containerConfig) (store.DocumentStore, error) {
	switch cfg.StorageDriver {
	case config.File:
		return file.New(cfg.DataDir)
	case config.Memory:
		return memory.New(), nil
	case config.Postgres:
		if opt.db != nil {
			return initPostgres(ctx, opt.db)
		}
		return postgres.Open(ctx, cfg.PostgresConfig.ConnectionUrl)
	case config.Redis:
		if opt.redis != nil {
			return redisstore.NewRedisDocumentStore(opt.redis, cfg.RedisConfig.Prefix), nil
		}
		return redisstore.Open(ctx, cfg.RedisConfig)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %v", cfg.StorageDriver)
	}
}

func initPostgres(ctx context.Context, db *sql.DB) (store.DocumentStore, error) {
	s := postgres.NewPostgresDocumentStore(db)
	if err := s.Init(ctx, lock.NewPostgresAdvisoryLock(db)); err != nil {
		return nil, err
	}
	return s, nil
}

// seedSettings copies seed values into empty persisted fields. Values the
// operator already saved always win.
func seedSettings(ctx context.Context, reg *registry.Registry, seed types.Settings) error {
	if seed == (types.Settings{}) {
		return nil
	}
	current := reg.Settings()
	merged := current
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&merged.AppKey, seed.AppKey)
	fill(&merged.AppSecret, seed.AppSecret)
	fill(&merged.ConsumerKey, seed.ConsumerKey)
	fill(&merged.Endpoint, seed.Endpoint)
	fill(&merged.TgToken, seed.TgToken)
	fill(&merged.TgChatID, seed.TgChatID)
	fill(&merged.Zone, seed.Zone)
	if merged == current {
		return nil
	}
	_, err := reg.SaveSettings(ctx, merged)
	return err
}
