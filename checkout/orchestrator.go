// Package checkout runs the purchase pipeline: payment intent through the relay,
// confirmation with the processor, then order id, confirmation email and cart clear.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ecofloss-backend/cart"
	"ecofloss-backend/dtos"
	"ecofloss-backend/models"
	"ecofloss-backend/processor"
	"ecofloss-backend/utils"

	"go.uber.org/zap"
)

type State string

const (
	StateCheckout State = "checkout"
	StateSuccess  State = "success"
	StateError    State = "error"
)

const (
	MessageUnexpected    = "An unexpected error occurred"
	MessagePaymentFailed = "Payment failed"
)

const emailTimeout = 30 * time.Second

var (
	ErrSubmitInFlight = errors.New("checkout already in progress")
	ErrOrderComplete  = errors.New("order already completed")
)

// IntentCreator is the relay's create-payment-intent operation.
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, body dtos.CreatePaymentIntentRequest) (*dtos.CreatePaymentIntentResponse, error)
}

// Card stands in for the processor's card widget: a payment method the processor
// already tokenized.
type Card struct {
	PaymentMethodID string
}

// Outcome is the result of one submission. Message is set for StateError and for a
// confirmation that did not reach a terminal status.
type Outcome struct {
	State   State
	OrderID string
	Message string
	Order   *models.Order
}

type Orchestrator struct {
	cart      *cart.Store
	relay     IntentCreator
	confirmer processor.Confirmer
	mailer    utils.Mailer
	logger    *zap.Logger
	now       func() time.Time

	submitting atomic.Bool
	mu         sync.Mutex
	state      State
	emails     sync.WaitGroup
}

// New returns an orchestrator in StateCheckout. mailer may be nil to skip
// confirmation emails.
func New(cartStore *cart.Store, relay IntentCreator, confirmer processor.Confirmer, mailer utils.Mailer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cart:      cartStore,
		relay:     relay,
		confirmer: confirmer,
		mailer:    mailer,
		logger:    logger,
		now:       time.Now,
		state:     StateCheckout,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Reset returns to StateCheckout, e.g. to start a new order after a success.
func (o *Orchestrator) Reset() {
	o.setState(StateCheckout)
}

// Wait blocks until all pending confirmation emails have been attempted.
func (o *Orchestrator) Wait() {
	o.emails.Wait()
}

// Submit runs the pipeline once. A nil card aborts without doing anything. The
// only errors returned are ErrSubmitInFlight and ErrOrderComplete; every pipeline
// failure is reported through the Outcome.
func (o *Orchestrator) Submit(ctx context.Context, card *Card, customer models.CustomerInfo) (Outcome, error) {
	if card == nil || card.PaymentMethodID == "" {
		return Outcome{State: o.State()}, nil
	}
	if o.State() == StateSuccess {
		return Outcome{State: StateSuccess}, ErrOrderComplete
	}
	if !o.submitting.CompareAndSwap(false, true) {
		return Outcome{State: StateCheckout}, ErrSubmitInFlight
	}
	defer o.submitting.Store(false)

	o.setState(StateCheckout)
	out := o.run(ctx, card, customer)
	o.setState(out.State)
	return out, nil
}

func (o *Orchestrator) run(ctx context.Context, card *Card, customer models.CustomerInfo) Outcome {
	items := o.cart.State().Items
	subtotal := cart.Subtotal(items)

	body, err := dtos.NewCreatePaymentIntentRequest(subtotal, items, customer)
	if err != nil {
		return o.unexpected("encode cart", err)
	}

	intent, err := o.relay.CreatePaymentIntent(ctx, body)
	if err != nil {
		return o.unexpected("create payment intent", err)
	}

	pi, err := o.confirmer.ConfirmPayment(ctx, processor.ConfirmParams{
		ClientSecret:    intent.ClientSecret,
		PaymentMethodID: card.PaymentMethodID,
		Billing:         billingDetails(customer),
	})
	if err != nil {
		var perr *processor.Error
		if errors.As(err, &perr) {
			msg := perr.Message
			if msg == "" {
				msg = MessagePaymentFailed
			}
			o.logger.Info("payment declined", zap.String("code", perr.Code), zap.String("message", perr.Message))
			return Outcome{State: StateError, Message: msg}
		}
		return o.unexpected("confirm payment", err)
	}

	if pi.Status != processor.StatusSucceeded {
		o.logger.Warn("payment not completed", zap.String("payment_intent", pi.ID), zap.String("status", pi.Status))
		return Outcome{State: StateCheckout, Message: fmt.Sprintf("Payment not completed (status: %s)", pi.Status)}
	}

	order := o.buildOrder(pi.ID, customer, items, subtotal)
	o.sendConfirmation(ctx, order)
	o.cart.Clear(ctx)

	o.logger.Info("order completed",
		zap.String("order_id", order.ID),
		zap.String("payment_intent", pi.ID),
		zap.Float64("subtotal", subtotal),
	)
	return Outcome{State: StateSuccess, OrderID: order.ID, Order: order}
}

func (o *Orchestrator) unexpected(step string, err error) Outcome {
	o.logger.Error("checkout failed", zap.String("step", step), zap.Error(err))
	return Outcome{State: StateError, Message: MessageUnexpected}
}

func (o *Orchestrator) buildOrder(paymentIntentID string, customer models.CustomerInfo, items []models.CartItem, subtotal float64) *models.Order {
	trees, pandas := cart.ProductImpact(items)
	now := o.now()
	return &models.Order{
		ID:              models.NewOrderID(now),
		PaymentIntentID: paymentIntentID,
		Customer:        customer,
		Items:           items,
		Subtotal:        subtotal,
		TreesPlanted:    trees,
		PandasSupported: pandas,
		Donation:        cart.ConservationImpact(items),
		CreatedAt:       now,
	}
}

// sendConfirmation mails the order in the background. Failures are logged only.
func (o *Orchestrator) sendConfirmation(ctx context.Context, order *models.Order) {
	if o.mailer == nil {
		return
	}

	msg := ConfirmationEmail(order)
	o.emails.Add(1)
	go func() {
		defer o.emails.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailTimeout)
		defer cancel()

		if err := o.mailer.SendOrderConfirmation(ctx, msg); err != nil {
			o.logger.Warn("failed to send confirmation email", zap.String("order_id", order.ID), zap.Error(err))
		}
	}()
}

// ConfirmationEmail builds the order confirmation template parameters.
func ConfirmationEmail(order *models.Order) utils.OrderConfirmation {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("%s x%d", item.Product.Name, item.Quantity))
	}
	return utils.OrderConfirmation{
		ToEmail:         order.Customer.Email,
		CustomerName:    order.Customer.FullName(),
		OrderID:         order.ID,
		OrderTotal:      utils.FormatUSD(order.Subtotal),
		TreesPlanted:    order.TreesPlanted,
		PandasSupported: fmt.Sprintf("%.1f", order.PandasSupported),
		Items:           strings.Join(lines, ", "),
	}
}

func billingDetails(c models.CustomerInfo) processor.BillingDetails {
	country := c.Country
	if country == "" {
		country = "US"
	}
	return processor.BillingDetails{
		Name:       c.FullName(),
		Email:      c.Email,
		Line1:      c.Address,
		City:       c.City,
		PostalCode: c.ZipCode,
		Country:    country,
	}
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}
