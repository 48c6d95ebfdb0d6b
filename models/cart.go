package models

import "encoding/json"

type BristleType string

const (
	BristleSoft   BristleType = "soft"
	BristleMedium BristleType = "medium"
)

type SelectedOptions struct {
	BristleType BristleType `json:"bristleType,omitempty"`
	PackSize    string      `json:"packSize,omitempty"`
}

// CartItem is one cart line. Product is a snapshot taken when the line was created.
type CartItem struct {
	ID              string           `json:"id"`
	Product         Product          `json:"product"`
	Quantity        int              `json:"quantity"`
	SelectedOptions *SelectedOptions `json:"selectedOptions,omitempty"`
}

// SameLine reports whether the item represents the given product/options pair.
// Options are compared by their serialized form, so nil and empty options differ.
func (c CartItem) SameLine(productID string, opts *SelectedOptions) bool {
	return c.Product.ID == productID && optionsKey(c.SelectedOptions) == optionsKey(opts)
}

func optionsKey(opts *SelectedOptions) string {
	b, _ := json.Marshal(opts)
	return string(b)
}

// CartState is the persisted cart layout: {"items": [...], "isOpen": bool}.
type CartState struct {
	Items  []CartItem `json:"items"`
	IsOpen bool       `json:"isOpen"`
}

// Clone returns a copy whose item slice can be modified independently.
func (s CartState) Clone() CartState {
	items := make([]CartItem, len(s.Items))
	copy(items, s.Items)
	return CartState{Items: items, IsOpen: s.IsOpen}
}
