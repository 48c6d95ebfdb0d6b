package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe implements Relay and Confirmer on the stripe-go client. Build it with the
// secret key on the relay and with the publishable key in the storefront.
type Stripe struct {
	api *client.API
}

func NewStripe(key string) *Stripe {
	return &Stripe{api: client.New(key, nil)}
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountMinor),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, toError(err)
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (s *Stripe) ListActiveProducts(ctx context.Context, limit int64) (Page[Product], error) {
	params := &stripe.ProductListParams{Active: stripe.Bool(true)}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.Single = true

	var page Page[Product]
	it := s.api.Products.List(params)
	for it.Next() {
		p := it.Product()
		page.Items = append(page.Items, Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Images:      p.Images,
			Active:      p.Active,
			Metadata:    p.Metadata,
		})
	}
	if err := it.Err(); err != nil {
		return Page[Product]{}, toError(err)
	}
	if meta := it.Meta(); meta != nil {
		page.HasMore = meta.HasMore
	}
	return page, nil
}

func (s *Stripe) ListActivePrices(ctx context.Context, limit int64) (Page[Price], error) {
	params := &stripe.PriceListParams{Active: stripe.Bool(true)}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.Single = true

	var page Page[Price]
	it := s.api.Prices.List(params)
	for it.Next() {
		p := it.Price()
		if p.Product == nil || p.Product.ID == "" {
			continue
		}
		page.Items = append(page.Items, Price{ID: p.ID, ProductID: p.Product.ID, UnitAmount: p.UnitAmount})
	}
	if err := it.Err(); err != nil {
		return Page[Price]{}, toError(err)
	}
	if meta := it.Meta(); meta != nil {
		page.HasMore = meta.HasMore
	}
	return page, nil
}

// ConfirmPayment confirms with the client secret the same way the browser SDK does,
// so the publishable key is sufficient.
func (s *Stripe) ConfirmPayment(ctx context.Context, p ConfirmParams) (*PaymentIntent, error) {
	if p.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(p.PaymentMethodID),
		ReceiptEmail:  stripe.String(p.Billing.Email),
		Shipping: &stripe.ShippingDetailsParams{
			Name: stripe.String(p.Billing.Name),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(p.Billing.Line1),
				City:       stripe.String(p.Billing.City),
				PostalCode: stripe.String(p.Billing.PostalCode),
				Country:    stripe.String(p.Billing.Country),
			},
		},
	}
	params.Context = ctx
	params.AddExtra("client_secret", p.ClientSecret)

	pi, err := s.api.PaymentIntents.Confirm(IntentIDFromSecret(p.ClientSecret), params)
	if err != nil {
		return nil, toError(err)
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// CatalogProduct is a product plus its single USD price, used when seeding the catalog.
type CatalogProduct struct {
	Name        string
	Description string
	Images      []string
	PriceMinor  int64
	Metadata    map[string]string
}

func (s *Stripe) CreateCatalogProduct(ctx context.Context, cp CatalogProduct) (*Product, *Price, error) {
	pp := &stripe.ProductParams{
		Name:        stripe.String(cp.Name),
		Description: stripe.String(cp.Description),
		Images:      stripe.StringSlice(cp.Images),
	}
	pp.Context = ctx
	for k, v := range cp.Metadata {
		pp.AddMetadata(k, v)
	}
	prod, err := s.api.Products.New(pp)
	if err != nil {
		return nil, nil, fmt.Errorf("create product %q: %w", cp.Name, toError(err))
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(cp.PriceMinor),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
	}
	priceParams.Context = ctx
	price, err := s.api.Prices.New(priceParams)
	if err != nil {
		return nil, nil, fmt.Errorf("create price for %q: %w", cp.Name, toError(err))
	}

	return &Product{ID: prod.ID, Name: prod.Name, Description: prod.Description, Images: prod.Images, Active: prod.Active, Metadata: prod.Metadata},
		&Price{ID: price.ID, ProductID: prod.ID, UnitAmount: price.UnitAmount},
		nil
}

// IntentIDFromSecret extracts "pi_123" from a client secret of the form
// "pi_123_secret_abc".
func IntentIDFromSecret(secret string) string {
	id, _, _ := strings.Cut(secret, "_secret_")
	return id
}

func toError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &Error{Code: string(se.Code), Message: se.Msg}
	}
	return err
}
