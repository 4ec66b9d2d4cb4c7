package main

import (
	"context"
	"flag"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/logger"
	"restaurant_pos/internal/migrations"
)

func main() {
	reset := flag.Bool("reset", false, "drop all tables before migrating")
	seed := flag.Bool("seed", true, "create the demo branch, tables, menu and staff")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	log.Info("Initializing database...")
	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	err = migrations.RunMigrations(context.Background(), db, log, migrations.Options{Reset: *reset, SeedDemo: *seed})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	log.Info("Database initialization completed successfully!")
}
