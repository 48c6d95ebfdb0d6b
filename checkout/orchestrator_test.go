package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ecofloss-backend/cart"
	"ecofloss-backend/dtos"
	"ecofloss-backend/models"
	"ecofloss-backend/processor"
	"ecofloss-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	mu    sync.Mutex
	err   error
	calls int
	got   dtos.CreatePaymentIntentRequest
}

func (f *fakeRelay) CreatePaymentIntent(_ context.Context, body dtos.CreatePaymentIntentRequest) (*dtos.CreatePaymentIntentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = body
	if f.err != nil {
		return nil, f.err
	}
	return &dtos.CreatePaymentIntentResponse{ClientSecret: "pi_123_secret_abc", PaymentIntentID: "pi_123"}, nil
}

type fakeConfirmer struct {
	status  string
	err     error
	entered chan struct{}
	release chan struct{}
	calls   int
	got     processor.ConfirmParams
}

func (f *fakeConfirmer) ConfirmPayment(_ context.Context, p processor.ConfirmParams) (*processor.PaymentIntent, error) {
	f.calls++
	f.got = p
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == "" {
		status = processor.StatusSucceeded
	}
	return &processor.PaymentIntent{ID: "pi_123", Status: status}, nil
}

type fakeMailer struct {
	err  error
	sent chan utils.OrderConfirmation
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan utils.OrderConfirmation, 1)}
}

func (f *fakeMailer) SendOrderConfirmation(_ context.Context, msg utils.OrderConfirmation) error {
	f.sent <- msg
	return f.err
}

func flossProduct() models.Product {
	return models.Product{
		ID:                         "prod-floss",
		Name:                       "Premium Bamboo Dental Floss",
		Price:                      1299,
		Category:                   models.CategoryFloss,
		TreesPlantedPerPurchase:    3,
		PandasSupportedPerPurchase: 1.0,
	}
}

func toothbrushProduct() models.Product {
	return models.Product{
		ID:                         "prod-brush",
		Name:                       "Bamboo Toothbrush - Individual",
		Price:                      899,
		Category:                   models.CategoryToothbrush,
		TreesPlantedPerPurchase:    1,
		PandasSupportedPerPurchase: 0.5,
	}
}

func customer() models.CustomerInfo {
	return models.CustomerInfo{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Address:   "1 Bamboo Way",
		City:      "Portland",
		ZipCode:   "97201",
	}
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	ctx := context.Background()
	store := cart.NewStore(nil, nil)
	store.Load(ctx)
	store.AddItem(ctx, flossProduct(), 2, nil)
	store.AddItem(ctx, toothbrushProduct(), 1, nil)
	require.Equal(t, 3, store.TotalItems())
	return store
}

var card = &Card{PaymentMethodID: "pm_card_visa"}

func TestSubmitSuccess(t *testing.T) {
	store := filledCart(t)
	relay := &fakeRelay{}
	confirmer := &fakeConfirmer{}
	mailer := newFakeMailer()
	o := New(store, relay, confirmer, mailer, nil)
	o.now = func() time.Time { return time.UnixMilli(1700000000000) }

	out, err := o.Submit(context.Background(), card, customer())
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, out.State)
	assert.Regexp(t, `^ECO-\d+$`, out.OrderID)
	assert.Equal(t, "ECO-1700000000000", out.OrderID)
	assert.Equal(t, 0, store.TotalItems())
	assert.Equal(t, StateSuccess, o.State())

	assert.Equal(t, 34.97, relay.got.Amount)
	assert.Len(t, relay.got.Items, 2)
	assert.Equal(t, "pi_123_secret_abc", confirmer.got.ClientSecret)
	assert.Equal(t, "pm_card_visa", confirmer.got.PaymentMethodID)
	assert.Equal(t, processor.BillingDetails{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Line1:      "1 Bamboo Way",
		City:       "Portland",
		PostalCode: "97201",
		Country:    "US",
	}, confirmer.got.Billing)

	require.NotNil(t, out.Order)
	assert.Equal(t, 7, out.Order.TreesPlanted)
	assert.InDelta(t, 3.497, out.Order.Donation.TotalDonation, 1e-9)

	o.Wait()
	msg := <-mailer.sent
	assert.Equal(t, utils.OrderConfirmation{
		ToEmail:         "jane@example.com",
		CustomerName:    "Jane Doe",
		OrderID:         "ECO-1700000000000",
		OrderTotal:      "$34.97",
		TreesPlanted:    7,
		PandasSupported: "2.5",
		Items:           "Premium Bamboo Dental Floss x2, Bamboo Toothbrush - Individual x1",
	}, msg)
}

func TestSubmitProcessorErrorKeepsCart(t *testing.T) {
	store := filledCart(t)
	confirmer := &fakeConfirmer{err: &processor.Error{Code: "card_declined", Message: "Your card was declined."}}
	mailer := newFakeMailer()
	o := New(store, &fakeRelay{}, confirmer, mailer, nil)

	out, err := o.Submit(context.Background(), card, customer())
	require.NoError(t, err)

	assert.Equal(t, StateError, out.State)
	assert.Equal(t, "Your card was declined.", out.Message)
	assert.Empty(t, out.OrderID)
	assert.Equal(t, 3, store.TotalItems())
	assert.Empty(t, mailer.sent)
}

func TestSubmitProcessorErrorWithoutMessage(t *testing.T) {
	store := filledCart(t)
	confirmer := &fakeConfirmer{err: &processor.Error{Code: "processing_error"}}
	o := New(store, &fakeRelay{}, confirmer, nil, nil)

	out, err := o.Submit(context.Background(), card, customer())
	require.NoError(t, err)
	assert.Equal(t, MessagePaymentFailed, out.Message)
}

func TestSubmitRelayFailureIsUnexpected(t *testing.T) {
	store := filledCart(t)
	confirmer := &fakeConfirmer{}
	relay := &fakeRelay{err: errors.New("create payment intent: unexpected relay response status: 500")}
	o := New(store, relay, confirmer, nil, nil)

	out, err := o.Submit(context.Background(), card, customer())
	require.NoError(t, err)

	assert.Equal(t, StateError, out.State)
	assert.Equal(t, MessageUnexpected, out.Message)
	assert.Equal(t, 0, confirmer.calls)
	assert.Equal(t, 3, store.TotalItems())
}

func TestSubmitConfirmTransportFailureIsUnexpected(t *testing.T) {
	store := filledCart(t)
	confirmer := &fakeConfirmer{err: errors.New("dial tcp: i/o timeout")}
	o := New(store, &fakeRelay{}, confirmer, nil, nil)

	out, _ := o.Submit(context.Background(), card, customer())
	assert.Equal(t, MessageUnexpected, out.Message)
	assert.Equal(t, 3, store.TotalItems())
}

func TestSubmitWithoutCardAbortsSilently(t *testing.T) {
	store := filledCart(t)
	relay := &fakeRelay{}
	o := New(store, relay, &fakeConfirmer{}, nil, nil)

	out, err := o.Submit(context.Background(), nil, customer())
	require.NoError(t, err)
	assert.Equal(t, Outcome{State: StateCheckout}, out)
	assert.Equal(t, 0, relay.calls)
}

func TestSubmitRejectsDoubleSubmission(t *testing.T) {
	store := filledCart(t)
	confirmer := &fakeConfirmer{entered: make(chan struct{}), release: make(chan struct{})}
	relay := &fakeRelay{}
	o := New(store, relay, confirmer, nil, nil)

	done := make(chan Outcome)
	go func() {
		out, _ := o.Submit(context.Background(), card, customer())
		done <- out
	}()
	<-confirmer.entered

	_, err := o.Submit(context.Background(), card, customer())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(confirmer.release)
	first := <-done
	assert.Equal(t, StateSuccess, first.State)

	relay.mu.Lock()
	defer relay.mu.Unlock()
	assert.Equal(t, 1, relay.calls)
}

func TestSubmitIncompletePaymentStaysInCheckout(t *testing.T) {
	store := filledCart(t)
	o := New(store, &fakeRelay{}, &fakeConfirmer{status: processor.StatusRequiresAction}, nil, nil)

	out, err := o.Submit(context.Background(), card, customer())
	require.NoError(t, err)
	assert.Equal(t, StateCheckout, out.State)
	assert.Contains(t, out.Message, processor.StatusRequiresAction)
	assert.Equal(t, 3, store.TotalItems())
}

func TestSubmitEmailFailureDoesNotFailOrder(t *testing.T) {
	store := filledCart(t)
	mailer := newFakeMailer()
	mailer.err = errors.New("EmailJS not configured")
	o := New(store, &fakeRelay{}, &fakeConfirmer{}, mailer, nil)

	out, err := o.Submit(context.Background(), card, customer())
	require.NoError(t, err)
	o.Wait()

	assert.Equal(t, StateSuccess, out.State)
	assert.Equal(t, 0, store.TotalItems())
}

func TestSubmitAfterSuccessNeedsReset(t *testing.T) {
	store := filledCart(t)
	o := New(store, &fakeRelay{}, &fakeConfirmer{}, nil, nil)

	_, err := o.Submit(context.Background(), card, customer())
	require.NoError(t, err)

	_, err = o.Submit(context.Background(), card, customer())
	assert.ErrorIs(t, err, ErrOrderComplete)

	o.Reset()
	assert.Equal(t, StateCheckout, o.State())
}

func TestSubmitRetryAfterError(t *testing.T) {
	store := filledCart(t)
	confirmer := &fakeConfirmer{err: &processor.Error{Message: "Your card has insufficient funds."}}
	o := New(store, &fakeRelay{}, confirmer, nil, nil)

	out, _ := o.Submit(context.Background(), card, customer())
	require.Equal(t, StateError, out.State)

	confirmer.err = nil
	out, err := o.Submit(context.Background(), card, customer())
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, out.State)
	assert.Equal(t, 0, store.TotalItems())
}
