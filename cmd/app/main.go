// app is the operator CLI for orders, stock levels and user provisioning.
//
// Usage: go run ./cmd/app <command> [args]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"inventory-orders/internal/adapters/cli"
	"inventory-orders/internal/app"
	"inventory-orders/internal/config"
	"inventory-orders/internal/core"
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

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	customers := core.NewCustomerService(pool)
	svc := app.NewAppService(pool, app.Services{
		Users:     core.NewUserService(pool),
		Catalog:   catalog,
		Customers: customers,
		Suppliers: core.NewSupplierService(pool),
		Inventory: core.NewInventoryService(pool),
		Orders: core.NewOrderService(core.NewOrderStore(pool), catalog, catalog, customers, log,
			core.OrderServiceOptions{ClampNegativeFinalAmount: cfg.ClampNegativeFinalAmount}),
	}, log)

	if err := cli.Run(ctx, svc, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatal("command failed", zap.Error(err))
	}
}
