package main

import (
	"context"
	"os"
	"time"

	mongomigration "parkspot/internal/migrations/mongo"
	"parkspot/pkg/config"
)

const (
	JobName          = "mongo-migration"
	migrationTimeout = 2 * time.Minute
)

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName, "collections", len(mongomigration.Collections()))
	err := mongomigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
	cancel()
	cfg.GracefulShutdown()

	if err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	cfg.Log.Info("Migration completed successfully")
}
