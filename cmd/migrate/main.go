// migrate applies the embedded schema migrations to DATABASE_URL and exits.
//
// Usage: go run ./cmd/migrate
package main

import (
	"inventory-orders/internal/config"
	"inventory-orders/internal/db"
	"inventory-orders/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	applied, err := db.Migrate(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if applied {
		log.Info("migrations applied")
		return
	}
	log.Info("schema already up to date")
}
