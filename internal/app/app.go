package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/auth"
	"github.com/MrSnakeDoc/doodl/internal/config"
	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/httpserver"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
	"github.com/MrSnakeDoc/doodl/internal/index"
	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/metadata"
	"github.com/MrSnakeDoc/doodl/internal/redis"
	"github.com/MrSnakeDoc/doodl/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/doodl/internal/store/redis"
	"github.com/MrSnakeDoc/doodl/internal/store/sqlite"
	"github.com/MrSnakeDoc/doodl/internal/utils"
	"github.com/MrSnakeDoc/doodl/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       *sqlite.Store
	redisCache  *redisstore.Store
	enricher    *scheduler.Enricher
	importer    *scheduler.BookmarkImporter
	gc          *scheduler.GarbageCollector
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	loc, err := domain.ParseTimezone(cfg.DefaultTimezone, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid default timezone: %w", err)
	}

	ctx := context.Background()

	loggerClient.Info("opening database", logger.String("path", cfg.DatabasePath))
	store, err := sqlite.Open(ctx, cfg.DatabasePath, cfg.DatabaseBusyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Redis is optional. Without it, fetched metadata is cached in memory.
	var (
		redisCache *redisstore.Store
		memCache   *index.MemoryCache
		cache      metadata.Cache
	)
	if cfg.Redis.Enabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.Redis.Addr)
		client, err := redis.New(ctx, redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			utils.CloseLogged(store, "sqlite", loggerClient)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisCache = redisstore.NewStore(client, cfg.MetadataCacheTTL)
		cache = redisCache
		loggerClient.Info("metadata cache backed by redis")
	} else {
		memCache = index.NewMemoryCache(cfg.MetadataCacheTTL)
		cache = memCache
		loggerClient.Info("redis not configured, metadata cache kept in memory")
	}

	source := metadata.NewCachedExtractor(
		metadata.NewExtractor(metadata.Options{
			Timeout:        cfg.FetchTimeout,
			MaxBytes:       cfg.FetchMaxBytes,
			UserAgent:      cfg.FetchUserAgent,
			FaviconService: cfg.FaviconService,
		}, loggerClient),
		cache,
		loggerClient,
	)

	enricher := scheduler.NewEnricher(source, store, loggerClient.With(logger.String("component", "enricher")),
		cfg.EnrichWorkers, cfg.EnrichQueueSize)

	var (
		importer      *scheduler.BookmarkImporter
		importTrigger chan struct{}
	)
	if cfg.ImportFile != "" {
		loggerClient.Info("import file configured, initializing bookmark importer",
			logger.String("file", cfg.ImportFile),
			logger.String("owner", cfg.ImportOwner))
		importTrigger = make(chan struct{}, 1)
		importer = scheduler.NewBookmarkImporter(
			cfg.ImportFile,
			cfg.ImportOwner,
			store,
			loggerClient.With(logger.String("component", "importer")),
			cfg.ImportInterval,
			importTrigger,
		)
	}

	var gc *scheduler.GarbageCollector
	if memCache != nil {
		gc = scheduler.NewGarbageCollector(memCache, loggerClient.With(logger.String("component", "gc")), cfg.GCInterval)
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		APIRateLimit: cfg.APIRateLimit,
		Store:        store,
		Identity: auth.HeaderProvider{
			SubjectHeader: cfg.AuthSubjectHeader,
			EmailHeader:   cfg.AuthEmailHeader,
			NameHeader:    cfg.AuthNameHeader,
			ImageHeader:   cfg.AuthImageHeader,
		},
		Enricher:        enricher,
		Metadata:        source,
		MetadataCache:   cache,
		RedisCache:      redisCache,
		MemoryCache:     memCache,
		DefaultTimezone: loc,
		TagSuggestLimit: cfg.TagSuggestLimit,
		ImportFile:      cfg.ImportFile,
		ImportTrigger:   importTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		store:       store,
		redisCache:  redisCache,
		enricher:    enricher,
		importer:    importer,
		gc:          gc,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting doodl v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.enricher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start enricher: %w", err)
	}

	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start bookmark importer: %w", err)
		}
		a.logger.Info("bookmark importer started",
			logger.Duration("interval", a.cfg.ImportInterval))
	}

	if a.gc != nil {
		if err := a.gc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start garbage collector: %w", err)
		}
		a.logger.Info("garbage collector started",
			logger.Duration("interval", a.cfg.GCInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if a.gc != nil {
		a.gc.Stop()
	}
	if a.importer != nil {
		a.importer.Stop()
	}
	// Queued jobs run before the database closes.
	a.enricher.Stop(shutdownCtx)

	if a.redisCache != nil {
		utils.CloseLogged(a.redisCache, "redis", a.logger)
	}
	utils.CloseLogged(a.store, "sqlite", a.logger)
	_ = a.logger.Sync()

	if runErr == nil {
		a.logger.Info("✅ doodl stopped cleanly")
	}
	return runErr
}
