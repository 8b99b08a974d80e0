package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/adapter"
	"github.com/kapu/destiny-clan-bot-go/internal/bot"
	"github.com/kapu/destiny-clan-bot-go/internal/bungie"
	"github.com/kapu/destiny-clan-bot-go/internal/config"
	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/iris"
	"github.com/kapu/destiny-clan-bot-go/internal/service/cache"
	"github.com/kapu/destiny-clan-bot-go/internal/service/database"
	"github.com/kapu/destiny-clan-bot-go/internal/service/history"
	"github.com/kapu/destiny-clan-bot-go/internal/service/notification"
	"github.com/kapu/destiny-clan-bot-go/internal/service/reconcile"
	"github.com/kapu/destiny-clan-bot-go/internal/service/registry"
	"github.com/kapu/destiny-clan-bot-go/internal/service/report"
	"github.com/kapu/destiny-clan-bot-go/internal/service/roster"
)

// Persisted document names inside the data directory.
const (
	membersDocument = "members.json"
	alertsDocument  = "push_list.json"
	restDocument    = "rest_list.json"
	blockDocument   = "block_list.json"
)

// Container bundles assembled services for constructing runtime components like Bot.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Clan   *report.Service

	botDeps *bot.Dependencies
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.botDeps == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Build assembles the stores, the Bungie client and the optional Redis and
// PostgreSQL backends. Every persisted document is loaded here so a corrupt
// or unreadable data directory fails startup instead of the first command.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Messaging primitives
	irisClient := iris.NewClient(cfg.Iris.BaseURL, logger)
	irisWS := iris.NewWebSocket(cfg.Iris.WSURL,
		constants.WebSocketConfig.MaxReconnectAttempts,
		constants.WebSocketConfig.ReconnectDelay,
		logger,
	)
	messageAdapter := adapter.NewMessageAdapter(cfg.Bot.Prefix)
	formatter := adapter.NewResponseFormatter(cfg.Bot.Prefix, cfg.Bot.Name, cfg.Schedule.OfflineCutoffDays)

	bungieClient := bungie.NewClient(
		&http.Client{Timeout: constants.APIConfig.BungieTimeout},
		cfg.Bungie.BaseURL,
		cfg.Bungie.APIKey,
		logger,
	)

	// Persisted documents
	snapshot := roster.NewSnapshotStore(cfg.DocumentPath(membersDocument), logger)
	alerts := registry.NewAlertTargets(cfg.DocumentPath(alertsDocument), logger)
	rest := registry.NewRestRecords(cfg.DocumentPath(restDocument), logger)
	blocks := registry.NewBlockList(cfg.DocumentPath(blockDocument), bungieClient, logger)

	for name, load := range map[string]func() error{
		membersDocument: snapshot.Load,
		alertsDocument:  alerts.Load,
		restDocument:    rest.Load,
		blockDocument:   blocks.Load,
	} {
		if err := load(); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	logger.Info("Persisted state loaded",
		zap.Int("members", snapshot.Len()),
		zap.Int("alert_targets", len(alerts.List())),
		zap.Int("rest_records", len(rest.List())),
		zap.Int("block_records", blocks.Len()),
	)

	// Optional cache and database
	activityCache := cache.NewActivityCache(nil, 0, logger)
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		activityCache = cache.NewActivityCache(cacheSvc, constants.CacheTTL.ActivitySummary, logger)
	}

	var historyLog history.Log = history.NoopLog{}
	if cfg.Postgres.Enabled {
		postgresSvc, dbErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if dbErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", dbErr)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})

		repo, repoErr := history.NewRepository(ctx, postgresSvc, logger)
		if repoErr != nil {
			return nil, fmt.Errorf("failed to prepare history repository: %w", repoErr)
		}
		historyLog = repo
	}

	tracker := roster.NewTracker(bungieClient, snapshot, cfg.Bungie.GroupID, logger)
	scheduler := reconcile.NewScheduler(
		tracker, alerts, rest, blocks,
		notification.NewBuilder(),
		bot.NewNotifier(irisClient, formatter),
		historyLog,
		reconcile.Config{
			Interval:            cfg.Schedule.ReconcileInterval,
			DeliveryConcurrency: constants.ScheduleConfig.DeliveryConcurrency,
		},
		logger,
	)

	clan := report.NewService(report.Dependencies{
		Tracker:    tracker,
		Alerts:     alerts,
		Rest:       rest,
		Blocks:     blocks,
		Resolver:   bungieClient,
		Activities: bungieClient,
		Activity:   activityCache,
		Scheduler:  scheduler,
		History:    historyLog,
		Logger:     logger,
	}, report.Config{
		ActivityTimeout:     cfg.Schedule.ActivityTimeout,
		ActivityConcurrency: cfg.Schedule.ActivityConcurrency,
		OfflineCutoffDays:   cfg.Schedule.OfflineCutoffDays,
		RosterViewTTL:       cfg.Schedule.RosterViewTTL,
	})

	deps := &bot.Dependencies{
		Logger:         logger,
		Sender:         irisClient,
		Source:         irisWS,
		MessageAdapter: messageAdapter,
		Formatter:      formatter,
		Clan:           clan,
		Scheduler:      scheduler,
		StartedAt:      time.Now(),
		Closers:        closers,
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Clan:    clan,
		botDeps: deps,
	}, nil
}
