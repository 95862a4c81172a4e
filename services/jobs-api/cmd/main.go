package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/database"
	"github.com/fahadnasir13/actuaryhub-backend/common/database/schema"
	"github.com/fahadnasir13/actuaryhub-backend/common/database/schema/migrations"
	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/api"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/config"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/messaging"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/service"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/store"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "actuaryhub-jobs-api"

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

func newStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.StoreDriver == store.DriverMemory {
		logger.Warn("using in-memory store, postings are lost on restart")
		return store.NewMemory(), nil
	}

	db, err := database.New(context.Background(), database.Options{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLife,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := schema.NewMigrator(db.DB(), logger).Up(ctx, migrations.All()); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := store.NewPostgres(db.DB(), logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})
	return s, nil
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (messaging.Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("NATS_URL not set, job events disabled")
		return messaging.NewNoopPublisher(), nil
	}

	conn, err := events.Connect(cfg.NATSURL, serviceName, cfg.NATSConnTimeout)
	if err != nil {
		return nil, err
	}

	publisher := messaging.NewPublisher(conn, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher, nil
}

func newJobService(s store.Store, publisher messaging.Publisher, logger *zap.Logger) api.JobService {
	return service.NewJobs(s, publisher, logger)
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

func registerHTTPServer(lc fx.Lifecycle, cfg *config.Config, server *api.Server, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("jobs api listening",
				zap.String("addr", srv.Addr),
				zap.String("env", cfg.Env),
				zap.String("store", cfg.StoreDriver))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
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
			newStore,
			newPublisher,
			newJobService,
			api.NewServer,
		),
		fx.Invoke(
			registerTracing,
			registerHTTPServer,
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
