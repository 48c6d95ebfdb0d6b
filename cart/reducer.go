// Package cart holds the shopping cart state: a pure reducer over a closed set of
// actions, and a Store that owns the current state and persists it to a Slot.
package cart

import "ecofloss-backend/models"

// Action is a cart state transition. The set is closed: only the types in this file
// implement it.
type Action interface {
	apply(state models.CartState) models.CartState
}

// AddItem merges Quantity into the line matching Product.ID and Options, or appends a
// new line with ItemID. Quantities below 1 leave the state unchanged.
type AddItem struct {
	ItemID   string
	Product  models.Product
	Quantity int
	Options  *models.SelectedOptions
}

type RemoveItem struct {
	ItemID string
}

// UpdateQuantity sets a line's quantity; anything at or below zero drops the line.
type UpdateQuantity struct {
	ItemID   string
	Quantity int
}

type ClearCart struct{}

type ToggleCart struct{}

// LoadCart replaces the whole state, used once when rehydrating from a Slot.
type LoadCart struct {
	State models.CartState
}

// Reduce applies action to state and returns the new state. state is never modified.
func Reduce(state models.CartState, action Action) models.CartState {
	return action.apply(state.Clone())
}

func (a AddItem) apply(s models.CartState) models.CartState {
	if a.Quantity < 1 {
		return s
	}
	for i, item := range s.Items {
		if item.SameLine(a.Product.ID, a.Options) {
			s.Items[i].Quantity += a.Quantity
			return s
		}
	}
	s.Items = append(s.Items, models.CartItem{
		ID:              a.ItemID,
		Product:         a.Product,
		Quantity:        a.Quantity,
		SelectedOptions: a.Options,
	})
	return s
}

func (a RemoveItem) apply(s models.CartState) models.CartState {
	items := s.Items[:0]
	for _, item := range s.Items {
		if item.ID != a.ItemID {
			items = append(items, item)
		}
	}
	s.Items = items
	return s
}

func (a UpdateQuantity) apply(s models.CartState) models.CartState {
	items := s.Items[:0]
	for _, item := range s.Items {
		if item.ID == a.ItemID {
			item.Quantity = max(0, a.Quantity)
		}
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	s.Items = items
	return s
}

func (ClearCart) apply(s models.CartState) models.CartState {
	s.Items = []models.CartItem{}
	return s
}

func (ToggleCart) apply(s models.CartState) models.CartState {
	s.IsOpen = !s.IsOpen
	return s
}

func (a LoadCart) apply(models.CartState) models.CartState {
	loaded := a.State.Clone()
	items := loaded.Items[:0]
	for _, item := range loaded.Items {
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	loaded.Items = items
	return loaded
}
