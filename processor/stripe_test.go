package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestIntentIDFromSecret(t *testing.T) {
	assert.Equal(t, "pi_3abc", IntentIDFromSecret("pi_3abc_secret_xyz"))
	assert.Equal(t, "pi_plain", IntentIDFromSecret("pi_plain"))
	assert.Equal(t, "", IntentIDFromSecret(""))
}

func TestToErrorMapsStripeErrors(t *testing.T) {
	err := toError(&stripe.Error{Code: stripe.ErrorCode("card_declined"), Msg: "Your card was declined."})

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "card_declined", pe.Code)
	assert.Equal(t, "Your card was declined.", pe.Message)
}

func TestToErrorPassesThroughOtherErrors(t *testing.T) {
	base := errors.New("dial tcp: timeout")
	assert.Same(t, base, toError(base))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "processor error: boom", (&Error{Message: "boom"}).Error())
	assert.Equal(t, "processor error (card_declined): no", (&Error{Code: "card_declined", Message: "no"}).Error())
}

func TestConfirmPaymentRequiresClientSecret(t *testing.T) {
	s := NewStripe("pk_test_placeholder")
	_, err := s.ConfirmPayment(context.Background(), ConfirmParams{PaymentMethodID: "pm_card_visa"})
	assert.ErrorIs(t, err, ErrMissingClientSecret)
}

func TestConfirmParamsCarryBillingAsReceiptAndShipping(t *testing.T) {
	params := confirmParams(ConfirmParams{
		ClientSecret:    "pi_1_secret_x",
		PaymentMethodID: "pm_card_visa",
		Billing: BillingDetails{
			Name:       "Jane Doe",
			Email:      "jane@example.com",
			Line1:      "1 Bamboo Way",
			City:       "Portland",
			PostalCode: "97201",
			Country:    "US",
		},
	})

	assert.Equal(t, "pm_card_visa", *params.PaymentMethod)
	assert.Equal(t, "jane@example.com", *params.ReceiptEmail)
	require.NotNil(t, params.Shipping)
	assert.Equal(t, "Jane Doe", *params.Shipping.Name)
	assert.Equal(t, "1 Bamboo Way", *params.Shipping.Address.Line1)
	assert.Equal(t, "97201", *params.Shipping.Address.PostalCode)
	assert.Equal(t, "US", *params.Shipping.Address.Country)
}
