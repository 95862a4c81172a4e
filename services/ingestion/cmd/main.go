package main

import (
	"context"
	stderrors "errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/cache"
	"github.com/fahadnasir13/actuaryhub-backend/common/cache/memory"
	"github.com/fahadnasir13/actuaryhub-backend/common/cache/redis"
	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/api"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/config"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/enrich"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/extract"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/fetch"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/messaging"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/scheduler"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "actuaryhub-ingestion"

func main() {
	if err := run(); err != nil {
		log.Printf("ingestion failed: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting ingestion service",
		zap.String("source_url", cfg.SourceURL),
		zap.String("jobs_api_url", cfg.JobsAPIURL),
		zap.String("fetch_driver", cfg.FetchDriver),
		zap.Duration("polling_interval", cfg.PollingInterval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, serviceName, cfg.Version, cfg.OTELCollectorURL)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Warn("failed to shut down tracer", zap.Error(err))
		}
	}()

	tables, err := enrich.LoadTables(cfg.ReferenceTablesPath)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		logger.Error("could not acquire page fetcher", zap.Error(err))
		return err
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("failed to release page fetcher", zap.Error(err))
		}
	}()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	selectors := extract.DefaultSelectors()
	extractor := extract.NewExtractor(selectors, tables, enrich.NewSynthetic(tables, time.Now), cfg.MaxCandidates, logger)
	client := api.NewJobsClient(cfg.JobsAPIURL, cfg.SubmitTimeout, logger)
	ingestor := scheduler.NewIngestor(fetcher, extractor, client, publisher, cfg.SourceURL, selectors.Candidates, logger)

	jobScheduler := scheduler.NewJobScheduler(ingestor, cfg.PollingInterval, logger)
	err = jobScheduler.Start(ctx)
	if stderrors.Is(err, context.Canceled) {
		logger.Info("ingestion interrupted, shutting down")
		return nil
	}
	return err
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func newFetcher(cfg *config.Config, logger *zap.Logger) (fetch.Fetcher, error) {
	var fetcher fetch.Fetcher
	switch cfg.FetchDriver {
	case config.FetchDriverHTTP:
		fetcher = fetch.NewHTTP(cfg.UserAgent, cfg.FetchTimeout, logger)
	default:
		pw, err := fetch.NewPlaywright(fetch.PlaywrightOptions{
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.FetchTimeout,
			SettleDelay: cfg.PageSettleDelay,
		}, logger)
		if err != nil {
			return nil, err
		}
		fetcher = pw
	}

	if cfg.CacheTTL <= 0 {
		return fetcher, nil
	}

	pageCache, err := newPageCache(cfg)
	if err != nil {
		logger.Warn("page cache unavailable, fetching uncached", zap.Error(err))
		return fetcher, nil
	}
	return fetch.NewCached(fetcher, pageCache, cfg.CacheTTL, logger), nil
}

func newPageCache(cfg *config.Config) (cache.Cache, error) {
	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.CacheTTL
	if cfg.RedisAddr != "" {
		opts.RedisURL = cfg.RedisAddr
		opts.RedisPassword = cfg.RedisPassword
		opts.RedisDB = cfg.RedisDB
		return redis.New(opts), nil
	}
	return memory.New(opts)
}

func newPublisher(cfg *config.Config, logger *zap.Logger) (messaging.Publisher, error) {
	if cfg.NATSURL == "" {
		return messaging.NewNoopPublisher(), nil
	}
	conn, err := events.Connect(cfg.NATSURL, serviceName, cfg.NATSConnTimeout)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to NATS", zap.String("url", cfg.NATSURL))
	return messaging.NewPublisher(conn, logger), nil
}
