// Package gateway holds the storefront's read paths: the backing store (products and
// live impact counters) and the relay's processor catalog.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ecofloss-backend/database"
	"ecofloss-backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoChangeFeed = errors.New("no change feed configured")

// Counters maps metric_name to metric_value.
type Counters map[string]float64

func (c Counters) TotalTrees() float64           { return c[models.MetricTotalTrees] }
func (c Counters) TotalPandasSupported() float64 { return c[models.MetricTotalPandasSupported] }
func (c Counters) TotalOrders() float64          { return c[models.MetricTotalOrders] }
func (c Counters) TotalRevenue() float64         { return c[models.MetricTotalRevenue] }

// Store reads products and counters from the backing store.
type Store struct {
	db     *gorm.DB
	feed   ChangeFeed
	logger *zap.Logger
}

// NewStore returns a Store. feed may be nil, in which case WatchCounters fails.
func NewStore(db *gorm.DB, feed ChangeFeed, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, feed: feed, logger: logger}
}

// FetchActiveProducts returns active products, oldest first.
func (s *Store) FetchActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return products, nil
}

func (s *Store) FetchCounters(ctx context.Context) (Counters, error) {
	var rows []models.GlobalCounter
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch counters: %w", err)
	}

	counters := make(Counters, len(rows))
	for _, r := range rows {
		counters[r.MetricName] = r.MetricValue
	}
	return counters, nil
}

// Subscription is a live counters watch. Close stops it and waits for the
// watcher to exit; it is safe to call more than once.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (sub *Subscription) Close() {
	sub.once.Do(sub.cancel)
	<-sub.done
}

// Done is closed once the watcher has exited.
func (sub *Subscription) Done() <-chan struct{} {
	return sub.done
}

// WatchCounters fetches the counters immediately and again after every change
// notification, passing each result to onUpdate. onUpdate runs on the watcher
// goroutine and is never called after Close returns. A broken feed is reported
// once through onUpdate and ends the watch; no reconnection is attempted.
func (s *Store) WatchCounters(ctx context.Context, onUpdate func(Counters, error)) (*Subscription, error) {
	if s.feed == nil {
		return nil, ErrNoChangeFeed
	}

	ctx, cancel := context.WithCancel(ctx)
	listener, err := s.feed.Listen(ctx, database.CountersChannel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to counters: %w", err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer func() {
			if err := listener.Close(context.Background()); err != nil {
				s.logger.Warn("closing counters listener", zap.Error(err))
			}
		}()

		refetch := func() {
			counters, err := s.FetchCounters(ctx)
			if ctx.Err() != nil {
				return
			}
			onUpdate(counters, err)
		}

		refetch()
		for {
			if err := listener.Wait(ctx); err != nil {
				if ctx.Err() == nil {
					onUpdate(nil, fmt.Errorf("counters change feed: %w", err))
				}
				return
			}
			s.logger.Debug("counters changed, refetching")
			refetch()
		}
	}()

	return sub, nil
}
