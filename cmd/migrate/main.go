package main

import (
	"context"
	"log"
	"time"

	"gradtrack-backend/internal/shared/config"
	"gradtrack-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	conn, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	log.Print("migrations applied")
}
