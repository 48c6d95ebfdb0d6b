package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecofloss-backend/dtos"
	"ecofloss-backend/models"
)

var ErrUnexpectedStatus = errors.New("unexpected relay response status")

// RelayClient talks to the relay endpoint over HTTP.
type RelayClient struct {
	baseURL string
	client  *http.Client
}

func NewRelayClient(baseURL string, client *http.Client) *RelayClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RelayClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// FetchProducts lists the processor catalog through the relay.
func (c *RelayClient) FetchProducts(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("build products request: %w", err)
	}

	var out dtos.ProductListResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return out.Products, nil
}

// CreatePaymentIntent asks the relay for a payment intent. Any non-2xx status is
// ErrUnexpectedStatus; the body of a failed response is not inspected.
func (c *RelayClient) CreatePaymentIntent(ctx context.Context, body dtos.CreatePaymentIntentRequest) (*dtos.CreatePaymentIntentResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode payment intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-payment-intent", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build payment intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out dtos.CreatePaymentIntentResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &out, nil
}

func (c *RelayClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
