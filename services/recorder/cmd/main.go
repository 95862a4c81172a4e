package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/recorder/internal/config"
	recorderevents "github.com/fahadnasir13/actuaryhub-backend/services/recorder/internal/events"
	"github.com/fahadnasir13/actuaryhub-backend/services/recorder/internal/processor"
	"github.com/fahadnasir13/actuaryhub-backend/services/recorder/internal/store"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "actuaryhub-recorder"

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

func newNATSConnection(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	nc, err := events.Connect(cfg.NATSURL, serviceName, cfg.NATSConnTimeout)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return nc.Drain()
		},
	})
	return nc, nil
}

func newClickHouse(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*store.ClickHouse, error) {
	conn, err := store.Open(context.Background(), store.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	})
	if err != nil {
		return nil, err
	}

	ch := store.NewClickHouse(conn, logger)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ch.CreateTables(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return ch.Close()
		},
	})
	return ch, nil
}

func newRecorder(cfg *config.Config, ch *store.ClickHouse, logger *zap.Logger) *processor.Recorder {
	return processor.NewRecorder(ch, cfg.InsertTimeout, logger)
}

func newHandler(cfg *config.Config, logger *zap.Logger, nc *nats.Conn, recorder *processor.Recorder) *recorderevents.Handler {
	return recorderevents.NewHandler(logger, nc, recorder, cfg.QueueGroup)
}

func registerTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	shutdown, err := telemetry.InitTracer(context.Background(), serviceName, cfg.Version, cfg.OTELCollectorURL)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := shutdown(ctx); err != nil {
				logger.Warn("failed to shut down tracer", zap.Error(err))
			}
			return nil
		},
	})
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newNATSConnection,
			newClickHouse,
			newRecorder,
			newHandler,
		),
		fx.Invoke(
			registerTracing,
			func(handler *recorderevents.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
		),
		fx.StopTimeout(cfg.ShutdownTimeout),
		fx.NopLogger,
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
