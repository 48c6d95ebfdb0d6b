// Package processor is the boundary to the external payment processor: payment
// intents, the product/price catalog, and payment confirmation.
package processor

import (
	"context"
	"errors"
	"fmt"
)

const (
	StatusSucceeded      = "succeeded"
	StatusRequiresAction = "requires_action"
)

var ErrMissingClientSecret = errors.New("payment intent client secret is empty")

// Error is a failure reported by the processor itself (declined card, invalid
// request). Message is safe to show to the customer.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("processor error: %s", e.Message)
	}
	return fmt.Sprintf("processor error (%s): %s", e.Code, e.Message)
}

type PaymentIntentParams struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

type Product struct {
	ID          string
	Name        string
	Description string
	Images      []string
	Active      bool
	Metadata    map[string]string
}

type Price struct {
	ID         string
	ProductID  string
	UnitAmount int64
}

// Page is one listing page. HasMore reports that the processor holds further entries
// that were not fetched.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

type BillingDetails struct {
	Name       string
	Email      string
	Line1      string
	City       string
	PostalCode string
	Country    string
}

type ConfirmParams struct {
	ClientSecret    string
	PaymentMethodID string
	// Billing reaches the processor as the intent's receipt email and shipping
	// details. The payment method is already tokenized and cannot be edited here.
	Billing BillingDetails
}

// Intents creates payment intents; it needs the secret credential.
type Intents interface {
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error)
}

// Catalog reads active products and prices, one page each.
type Catalog interface {
	ListActiveProducts(ctx context.Context, limit int64) (Page[Product], error)
	ListActivePrices(ctx context.Context, limit int64) (Page[Price], error)
}

// Relay is everything the relay endpoint needs from the processor.
type Relay interface {
	Intents
	Catalog
}

// Confirmer confirms a payment intent identified by its client secret. It only needs
// the publishable key.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, params ConfirmParams) (*PaymentIntent, error)
}
