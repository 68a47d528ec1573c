package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "inventory-orders/internal/adapters/web"
	"inventory-orders/internal/app"
	"inventory-orders/internal/config"
	"inventory-orders/internal/core"
	"inventory-orders/internal/db"
	"inventory-orders/internal/events"
	"inventory-orders/internal/lock"
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

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.AutoMigrate {
		applied, err := db.Migrate(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations checked", zap.Bool("applied", applied))
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	opts := core.OrderServiceOptions{ClampNegativeFinalAmount: cfg.ClampNegativeFinalAmount}

	if cfg.RabbitMQURL != "" {
		pub, err := events.New(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			if !cfg.IsDevelopment() {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without order events", zap.Error(err))
		} else {
			defer pub.Close()
			opts.Publisher = pub
			log.Info("order events enabled", zap.String("exchange", cfg.EventsExchange))
		}
	} else {
		log.Info("order events disabled (RABBITMQ_URL is empty)")
	}

	if cfg.RedisURL != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				log.Fatal("redis connection failed", zap.Error(err))
			}
			log.Warn("redis connection failed; order updates are last-write-wins", zap.Error(err))
		} else {
			defer rdb.Close()
			opts.Locker = lock.NewOrderLocker(rdb, cfg.OrderLockTTL)
			log.Info("order locking enabled", zap.Duration("ttl", cfg.OrderLockTTL))
		}
	} else {
		log.Info("order locking disabled (REDIS_URL is empty)")
	}

	catalog := core.NewCatalogService(pool)
	customers := core.NewCustomerService(pool)
	orders := core.NewOrderService(core.NewOrderStore(pool), catalog, catalog, customers, log.Named("orders"), opts)

	svc := app.NewAppService(pool, app.Services{
		Users:     core.NewUserService(pool),
		Catalog:   catalog,
		Customers: customers,
		Suppliers: core.NewSupplierService(pool),
		Inventory: core.NewInventoryService(pool),
		Orders:    orders,
	}, log)

	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		JWTSecret:      cfg.JWTSecret,
		JWTExpiry:      cfg.JWTExpiry(),
		AllowedOrigins: cfg.CorsAllowedOrigins,
		BodyLimit:      cfg.RequestBodyLimit,
		Development:    cfg.IsDevelopment(),
	}, log.Named("http"))

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
