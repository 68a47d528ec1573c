// seed provisions the bootstrap admin user and a small sample catalog.
// Every statement is an upsert, so it is safe to run more than once.
//
// Usage: SEED_ADMIN_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"os"

	"inventory-orders/internal/config"
	"inventory-orders/internal/db"
	"inventory-orders/internal/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		if !cfg.IsDevelopment() {
			log.Fatal("SEED_ADMIN_PASSWORD must be set outside development")
		}
		password = "admin12345"
		log.Warn("using development admin password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash admin password", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal("failed to begin transaction", zap.Error(err))
	}
	defer tx.Rollback(ctx)

	log.Info("seeding admin user")
	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES ($1, 'admin', 'admin@localhost', $2, 'admin')
		ON CONFLICT (username) DO UPDATE
		  SET password_hash = EXCLUDED.password_hash,
		      role = 'admin',
		      is_active = true`,
		uuid.NewString(), string(hash))
	if err != nil {
		log.Fatal("failed to seed admin user", zap.Error(err))
	}

	log.Info("seeding stones")
	_, err = tx.Exec(ctx, `
		INSERT INTO stones (id, name, number, color, size, weight_per_piece, quantity)
		VALUES
		  ('seed-stone-crystal', 'Crystal', 'ST-001', 'clear', 'ss10', 0.05, 10000),
		  ('seed-stone-ruby',    'Ruby',    'ST-002', 'red',   'ss16', 0.08, 5000)
		ON CONFLICT (id) DO UPDATE
		  SET name = EXCLUDED.name,
		      weight_per_piece = EXCLUDED.weight_per_piece`)
	if err != nil {
		log.Fatal("failed to seed stones", zap.Error(err))
	}

	log.Info("seeding papers")
	_, err = tx.Exec(ctx, `
		INSERT INTO papers (id, width, inventory_type, weight_per_piece, quantity)
		VALUES
		  ('seed-paper-9',   9,  'paper',   12.5, 2000),
		  ('seed-paper-12',  12, 'paper',   16,   2000),
		  ('seed-plastic-9', 9,  'plastic', 8,    1000),
		  ('seed-tape-9',    9,  'tape',    3,    1000)
		ON CONFLICT (width, inventory_type) DO UPDATE
		  SET weight_per_piece = EXCLUDED.weight_per_piece`)
	if err != nil {
		log.Fatal("failed to seed papers", zap.Error(err))
	}

	log.Info("seeding designs")
	_, err = tx.Exec(ctx, `
		INSERT INTO designs (id, number, name, prices, default_stones)
		VALUES
		  ('seed-design-1', 'D-001', 'Floral border',
		   '[{"currency":"INR","price":120},{"currency":"USD","price":1.5}]',
		   '[{"stoneId":"seed-stone-crystal","quantity":40},{"stoneId":"seed-stone-ruby","quantity":8}]'),
		  ('seed-design-2', 'D-002', 'Plain motif',
		   '[{"currency":"INR","price":60}]',
		   '[{"stoneId":"seed-stone-crystal","quantity":12}]')
		ON CONFLICT (number) DO UPDATE
		  SET name = EXCLUDED.name,
		      prices = EXCLUDED.prices,
		      default_stones = EXCLUDED.default_stones,
		      updated_at = now()`)
	if err != nil {
		log.Fatal("failed to seed designs", zap.Error(err))
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal("failed to commit seed", zap.Error(err))
	}
	log.Info("seed data applied")
}
