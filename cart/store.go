package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecofloss-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns the cart state for one session. Every mutation after Load has completed
// writes the whole state to the slot; mutations before that are kept in memory only so
// the empty initial state never overwrites a persisted cart.
type Store struct {
	mu     sync.Mutex
	state  models.CartState
	loaded bool

	slot   Slot
	logger *zap.Logger
	now    func() time.Time
}

// NewStore returns an empty, closed cart. slot may be nil for an in-memory cart.
func NewStore(slot Slot, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:  models.CartState{Items: []models.CartItem{}},
		slot:   slot,
		logger: logger,
		now:    time.Now,
	}
}

// Load rehydrates the cart from the slot. Only the first call reads; missing or
// malformed data leaves the current state in place.
func (s *Store) Load(ctx context.Context) models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.state.Clone()
	}
	s.loaded = true

	if s.slot == nil {
		return s.state.Clone()
	}

	data, err := s.slot.Load(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return s.state.Clone()
	}
	if err != nil {
		s.logger.Error("failed to read persisted cart", zap.Error(err))
		return s.state.Clone()
	}

	var persisted models.CartState
	if err := json.Unmarshal(data, &persisted); err != nil {
		s.logger.Error("failed to load cart from storage", zap.Error(err))
		return s.state.Clone()
	}

	s.state = Reduce(s.state, LoadCart{State: persisted})
	s.logger.Debug("cart rehydrated", zap.Int("lines", len(s.state.Items)))
	return s.state.Clone()
}

// Dispatch applies action and persists the result.
func (s *Store) Dispatch(ctx context.Context, action Action) models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, action)
	if s.loaded {
		s.persist(ctx)
	}
	return s.state.Clone()
}

func (s *Store) persist(ctx context.Context) {
	if s.slot == nil {
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Error("failed to encode cart", zap.Error(err))
		return
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.logger.Warn("failed to persist cart", zap.Error(err))
	}
}

// AddItem adds quantity units of product with the given options. A fresh line id is
// derived from the product id, the current time and a random suffix.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity int, opts *models.SelectedOptions) models.CartState {
	return s.Dispatch(ctx, AddItem{
		ItemID:   s.newItemID(product.ID),
		Product:  product,
		Quantity: quantity,
		Options:  opts,
	})
}

func (s *Store) RemoveItem(ctx context.Context, itemID string) models.CartState {
	return s.Dispatch(ctx, RemoveItem{ItemID: itemID})
}

func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) models.CartState {
	return s.Dispatch(ctx, UpdateQuantity{ItemID: itemID, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) models.CartState {
	return s.Dispatch(ctx, ClearCart{})
}

func (s *Store) Toggle(ctx context.Context) models.CartState {
	return s.Dispatch(ctx, ToggleCart{})
}

func (s *Store) State() models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) TotalItems() int {
	return TotalItems(s.State().Items)
}

func (s *Store) Subtotal() float64 {
	return Subtotal(s.State().Items)
}

func (s *Store) TotalTrees() int {
	return TotalTrees(s.State().Items)
}

func (s *Store) TotalMicroplastics() float64 {
	return TotalMicroplastics(s.State().Items)
}

func (s *Store) ConservationImpact() models.Donation {
	return ConservationImpact(s.State().Items)
}

func (s *Store) newItemID(productID string) string {
	return fmt.Sprintf("%s-%d-%s", productID, s.now().UnixMilli(), uuid.NewString()[:8])
}
