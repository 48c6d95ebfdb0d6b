// Command seed prepares a fresh installation: backing-store tables, products and
// counters, and the processor product catalog.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ecofloss-backend/config"
	"ecofloss-backend/database"
	"ecofloss-backend/processor"
	"ecofloss-backend/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type catalogCreator interface {
	CreateCatalogProduct(ctx context.Context, cp processor.CatalogProduct) (*processor.Product, *processor.Price, error)
}

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "env files to load (default .env.local, .env)")
	skipDB := pflag.Bool("skip-db", false, "do not seed the backing store")
	skipCatalog := pflag.Bool("skip-catalog", false, "do not create processor catalog products")
	pflag.Parse()

	if err := config.LoadEnv(*envFiles...); err != nil {
		log.Fatal("Error loading env file: ", err)
	}
	cfg := config.Load()

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := false
	if !*skipDB {
		if err := seedDatabase(cfg.DatabaseServiceURL, logger); err != nil {
			logger.Error("database setup failed", zap.Error(err))
			failed = true
		}
	}

	if !*skipCatalog {
		if cfg.StripeSecretKey == "" {
			logger.Error("STRIPE_SECRET_KEY is required to seed the catalog")
			failed = true
		} else {
			created := seedCatalog(ctx, processor.NewStripe(cfg.StripeSecretKey), storeCatalog, logger)
			logger.Info("processor catalog setup complete", zap.Int("created", created), zap.Int("total", len(storeCatalog)))
			if created < len(storeCatalog) {
				failed = true
			}
		}
	}

	if failed {
		logger.Sync()
		os.Exit(1)
	}
}

func seedDatabase(dsn string, logger *zap.Logger) error {
	if dsn == "" {
		logger.Warn("DATABASE_SERVICE_URL not set - using local default")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := database.Migrate(db); err != nil {
		return err
	}

	n, err := database.SeedProducts(db, database.DefaultProducts(), logger)
	if err != nil {
		return err
	}
	logger.Info("products seeded", zap.Int("inserted", n))

	counters := database.DefaultCounters()
	if err := database.SeedCounters(db, counters); err != nil {
		return err
	}
	logger.Info("global counters initialized", zap.Int("counters", len(counters)))
	return nil
}

// seedCatalog creates each product with its price. A failed product is logged and
// skipped; the number created is returned.
func seedCatalog(ctx context.Context, creator catalogCreator, products []processor.CatalogProduct, logger *zap.Logger) int {
	created := 0
	for _, cp := range products {
		if ctx.Err() != nil {
			break
		}

		prod, price, err := creator.CreateCatalogProduct(ctx, cp)
		if err != nil {
			logger.Error("failed to create catalog product", zap.String("name", cp.Name), zap.Error(err))
			continue
		}
		created++
		logger.Info("catalog product created",
			zap.String("name", cp.Name),
			zap.String("product_id", prod.ID),
			zap.String("price_id", price.ID),
			zap.String("price", utils.FormatUSD(float64(cp.PriceMinor)/100)),
		)
	}
	return created
}
