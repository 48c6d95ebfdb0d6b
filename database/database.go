package database

import (
	"fmt"

	"ecofloss-backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// CountersChannel is the NOTIFY channel raised on every global_counters change.
const CountersChannel = "global_counters"

const defaultDSN = "host=localhost user=postgres password=postgres dbname=ecofloss port=5432 sslmode=disable"

func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.GlobalCounter{},
	); err != nil {
		return err
	}

	return installCountersTrigger(db)
}

// installCountersTrigger makes every write to global_counters raise a NOTIFY on
// CountersChannel. Safe to run repeatedly.
func installCountersTrigger(db *gorm.DB) error {
	if err := db.Exec(`
CREATE OR REPLACE FUNCTION notify_global_counters() RETURNS trigger AS $$
BEGIN
  PERFORM pg_notify('` + CountersChannel + `', TG_OP);
  RETURN NULL;
END;
$$ LANGUAGE plpgsql;
	`).Error; err != nil {
		return fmt.Errorf("failed to create counters notify function: %w", err)
	}

	if err := db.Exec(`DROP TRIGGER IF EXISTS global_counters_notify ON global_counters;`).Error; err != nil {
		return fmt.Errorf("failed to drop counters trigger: %w", err)
	}

	if err := db.Exec(`
CREATE TRIGGER global_counters_notify
AFTER INSERT OR UPDATE OR DELETE ON global_counters
FOR EACH STATEMENT EXECUTE FUNCTION notify_global_counters();
	`).Error; err != nil {
		return fmt.Errorf("failed to create counters trigger: %w", err)
	}

	return nil
}

// DefaultProducts are the backing-store products of a fresh installation.
func DefaultProducts() []models.Product {
	return []models.Product{
		{
			Name:        "100% Bamboo Dental Floss",
			Description: "Eliminate your #1 source of daily microplastic intake with our 100% organic bamboo dental floss. Stronger than plastic, naturally antibacterial, and completely biodegradable within 60-90 days. Each purchase plants 3 bamboo trees and supports panda habitat conservation.",
			Price:       899,
			ImageURLs: []string{
				"https://images.unsplash.com/photo-1606107557195-0e29a4b5b4aa?w=800&q=80",
				"https://images.unsplash.com/photo-1584464491033-06628f3a6b7b?w=800&q=80",
			},
			Category:                   models.CategoryFloss,
			TreesPlantedPerPurchase:    3,
			PandasSupportedPerPurchase: 1.0,
			InventoryCount:             500,
			IsActive:                   true,
		},
		{
			Name:        "Biodegradable Bamboo Toothbrush",
			Description: "Complete your plastic-free oral care routine with our ergonomic bamboo toothbrush. Natural antimicrobial handle with soft natural bristles for effective, gentle cleaning. Supports panda habitat preservation with every purchase.",
			Price:       699,
			ImageURLs: []string{
				"https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800&q=80",
				"https://images.unsplash.com/photo-1607613009820-a29f7bb81c04?w=800&q=80",
			},
			Category:                   models.CategoryToothbrush,
			TreesPlantedPerPurchase:    1,
			PandasSupportedPerPurchase: 0.5,
			InventoryCount:             300,
			IsActive:                   true,
		},
	}
}

// DefaultCounters are the initial impact metrics.
func DefaultCounters() []models.GlobalCounter {
	return []models.GlobalCounter{
		{MetricName: models.MetricTotalTrees, MetricValue: 2847},
		{MetricName: models.MetricTotalPandasSupported, MetricValue: 142},
		{MetricName: models.MetricTotalOrders, MetricValue: 95},
		{MetricName: models.MetricTotalRevenue, MetricValue: 1247.83},
	}
}

// SeedProducts inserts the given products, skipping any whose name already exists.
// It returns the number of rows inserted.
func SeedProducts(db *gorm.DB, products []models.Product, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}

	inserted := 0
	for i := range products {
		p := products[i]

		var count int64
		if err := db.Model(&models.Product{}).Where("name = ?", p.Name).Count(&count).Error; err != nil {
			return inserted, fmt.Errorf("check product %q: %w", p.Name, err)
		}
		if count > 0 {
			log.Info("product already seeded", zap.String("name", p.Name))
			continue
		}

		if err := db.Create(&p).Error; err != nil {
			return inserted, fmt.Errorf("insert product %q: %w", p.Name, err)
		}
		inserted++
		log.Info("product seeded", zap.String("name", p.Name), zap.Int64("price", p.Price))
	}

	return inserted, nil
}

// SeedCounters upserts counters on metric_name.
func SeedCounters(db *gorm.DB, counters []models.GlobalCounter) error {
	if len(counters) == 0 {
		return nil
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "metric_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"metric_value", "last_updated"}),
	}).Create(&counters).Error
}
