package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/database"
	"github.com/wardenbot/warden/warden/logger"
	"github.com/wardenbot/warden/warden/migration"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	configPath := flag.String("config", "config.toml", "path to config")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "legacy MongoDB URI")
	mongoDB := flag.String("mongo-db", "bot", "legacy MongoDB database name")
	collection := flag.String("collection", "infractions", "legacy collection name")
	batchSize := flag.Int("batch-size", 0, "override insert batch size")
	flag.Parse()

	ctx := context.Background()

	cfg, err := warden.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(1)
	}

	legacy, err := migration.Connect(ctx, *mongoURI, *mongoDB)
	if err != nil {
		slog.Error("Failed to connect to legacy MongoDB", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := migration.NewMigrator(db.BunDB(), legacy)
	migrator.SetCollection(*collection)
	migrator.SetBatchSize(*batchSize)

	if err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Migration completed successfully")
}
