package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/database"
	"github.com/fahadnasir13/actuaryhub-backend/common/database/schema"
	"github.com/fahadnasir13/actuaryhub-backend/common/database/schema/migrations"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back the latest applied migration")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.Options{
		URL:             os.Getenv("DATABASE_URL"),
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.DB(), logger)

	if !*down {
		if err := migrator.Up(ctx, migrations.All()); err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}
		logger.Info("all migrations completed successfully")
		return
	}

	if err := migrator.CreateMigrationsTable(ctx); err != nil {
		logger.Fatal("failed to create migrations table", zap.Error(err))
	}
	applied, err := migrator.GetAppliedMigrations(ctx)
	if err != nil {
		logger.Fatal("failed to get applied migrations", zap.Error(err))
	}

	all := migrations.All()
	for i := len(all) - 1; i >= 0; i-- {
		migration := all[i]
		if _, ok := applied[migration.Version]; !ok {
			continue
		}
		if err := migrator.RollbackMigration(ctx, migration); err != nil {
			logger.Fatal("failed to roll back migration",
				zap.Int("version", migration.Version),
				zap.Error(err),
			)
		}
		logger.Info("rolled back migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description),
		)
		return
	}

	logger.Info("no applied migrations to roll back")
}
