package dtos

import (
	"encoding/json"

	"ecofloss-backend/models"
)

// CreatePaymentIntentRequest is the body of POST /create-payment-intent.
// Amount is in major currency units; Items is passed through uninspected.
type CreatePaymentIntentRequest struct {
	Amount       float64              `json:"amount" binding:"required,gt=0"`
	Currency     string               `json:"currency"`
	Items        []json.RawMessage    `json:"items" binding:"required"`
	CustomerInfo *models.CustomerInfo `json:"customerInfo" binding:"required"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewCreatePaymentIntentRequest encodes cart lines into a request body.
func NewCreatePaymentIntentRequest(amount float64, items []models.CartItem, customer models.CustomerInfo) (CreatePaymentIntentRequest, error) {
	raw := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return CreatePaymentIntentRequest{}, err
		}
		raw = append(raw, b)
	}
	return CreatePaymentIntentRequest{
		Amount:       amount,
		Items:        raw,
		CustomerInfo: &customer,
	}, nil
}
