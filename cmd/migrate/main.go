package main

import (
	"context"
	"os"
	"time"

	mongoMigration "lockrent/internal/migrations/mongo"
	"lockrent/internal/rentals/repository/sqlstore"
	"lockrent/pkg/config"
)

const JobName = "migrate"

func main() {
	cfg := config.Load(JobName)
	cfg.SetStore()

	err := migrate(cfg)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrate(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg.Log.Info("Starting migration job", "store", cfg.StoreBackend)
	if cfg.IsMongo() {
		return mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
	}
	return sqlstore.AutoMigrate(ctx, cfg.Client.SQL)
}
