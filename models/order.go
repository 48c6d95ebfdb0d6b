package models

import (
	"fmt"
	"time"
)

// CustomerInfo is the checkout form. Country defaults to "US" when empty.
type CustomerInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`
	Country   string `json:"country,omitempty"`
}

func (c CustomerInfo) FullName() string {
	return fmt.Sprintf("%s %s", c.FirstName, c.LastName)
}

// Donation is the conservation split of an order total.
type Donation struct {
	TotalDonation       float64 `json:"totalDonation"`
	BambooReforestation float64 `json:"bambooReforestation"`
	PandaConservation   float64 `json:"pandaConservation"`
}

// Order is assembled after a successful payment. It is never persisted by this service;
// it only feeds the confirmation email and the caller's success view.
type Order struct {
	ID              string       `json:"id"`
	PaymentIntentID string       `json:"payment_intent_id"`
	Customer        CustomerInfo `json:"customer"`
	Items           []CartItem   `json:"items"`
	Subtotal        float64      `json:"subtotal"`
	TreesPlanted    int          `json:"trees_planted"`
	PandasSupported float64      `json:"pandas_supported"`
	Donation        Donation     `json:"donation"`
	CreatedAt       time.Time    `json:"created_at"`
}

// NewOrderID builds the client-side order identifier "ECO-<epoch millis>".
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ECO-%d", now.UnixMilli())
}
