package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryFloss      Category = "floss"
	CategoryToothbrush Category = "toothbrush"
	CategoryToothpaste Category = "toothpaste"
)

// Product is the storefront's view of a catalog entry. Price is in minor currency units.
// The same shape is returned by the relay's product listing and stored in the backing
// store's products table.
type Product struct {
	ID                         string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name                       string    `gorm:"not null" json:"name"`
	Description                string    `json:"description"`
	Price                      int64     `gorm:"not null" json:"price"`
	PriceID                    string    `gorm:"-" json:"price_id"`
	Images                     []string  `gorm:"-" json:"images"`
	ImageURLs                  []string  `gorm:"type:jsonb;serializer:json" json:"image_urls"`
	Category                   Category  `gorm:"not null" json:"category"`
	TreesPlantedPerPurchase    int       `gorm:"default:1" json:"trees_planted_per_purchase"`
	PandasSupportedPerPurchase float64   `gorm:"default:0.5" json:"pandas_supported_per_purchase"`
	InventoryCount             int       `gorm:"default:0" json:"inventory_count"`
	IsActive                   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt                  time.Time `json:"created_at,omitzero"`
	UpdatedAt                  time.Time `json:"updated_at,omitzero"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Defaults applied when the processor carries no (or unparseable) product metadata.
const DefaultCategory Category = "oral-care"

const (
	DefaultTreesPerUnit   = 1
	DefaultPandasPerUnit  = 0.5
	DefaultInventoryCount = 100
)

// ProductMetadata is the typed form of the processor's string-keyed product metadata.
type ProductMetadata struct {
	Category       Category
	TreesPerUnit   int
	PandasPerUnit  float64
	InventoryCount int
}

// ParseProductMetadata reads category, trees_planted, pandas_supported and
// inventory_count, falling back to the defaults for absent or malformed values.
func ParseProductMetadata(meta map[string]string) ProductMetadata {
	md := ProductMetadata{
		Category:       DefaultCategory,
		TreesPerUnit:   DefaultTreesPerUnit,
		PandasPerUnit:  DefaultPandasPerUnit,
		InventoryCount: DefaultInventoryCount,
	}
	if v := meta["category"]; v != "" {
		md.Category = Category(v)
	}
	if n, err := strconv.Atoi(meta["trees_planted"]); err == nil {
		md.TreesPerUnit = n
	}
	if f, err := strconv.ParseFloat(meta["pandas_supported"], 64); err == nil {
		md.PandasPerUnit = f
	}
	if n, err := strconv.Atoi(meta["inventory_count"]); err == nil {
		md.InventoryCount = n
	}
	return md
}
