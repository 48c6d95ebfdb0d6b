package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MetricTotalTrees           = "total_trees"
	MetricTotalPandasSupported = "total_pandas_supported"
	MetricTotalOrders          = "total_orders"
	MetricTotalRevenue         = "total_revenue"
)

// GlobalCounter is one aggregate impact metric row in the backing store.
type GlobalCounter struct {
	ID          string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MetricName  string    `gorm:"uniqueIndex;not null" json:"metric_name"`
	MetricValue float64   `gorm:"not null;default:0" json:"metric_value"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

func (g *GlobalCounter) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
