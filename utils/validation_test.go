package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestSanitizeValidationErrorRequired(t *testing.T) {
	validate := validator.New()

	type customer struct{ Email string }
	type TestReq struct {
		Amount       float64   `validate:"required"`
		Items        []string  `validate:"required"`
		CustomerInfo *customer `validate:"required"`
	}

	err := validate.Struct(TestReq{Amount: 10})
	if err == nil {
		t.Fatal("expected validation error for missing required fields")
	}

	if msg := SanitizeValidationError(err); msg != MissingFieldsMessage {
		t.Errorf("expected %q, got: %s", MissingFieldsMessage, msg)
	}
}

func TestSanitizeValidationErrorNilReturnsEmpty(t *testing.T) {
	msg := SanitizeValidationError(nil)
	if msg != "" {
		t.Errorf("expected empty string for nil error, got: %s", msg)
	}
}

func TestSanitizeValidationErrorGreaterThan(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Amount float64 `validate:"required,gt=0"`
	}

	err := validate.Struct(TestReq{Amount: -5})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "greater than 0") {
		t.Errorf("expected gt message, got: %s", msg)
	}
	if msg == MissingFieldsMessage {
		t.Error("gt failure should not be reported as missing fields")
	}
}

func TestSanitizeValidationErrorNonValidation(t *testing.T) {
	msg := SanitizeValidationError(errors.New("invalid character '}' looking for beginning of value"))
	if msg != "Invalid request body" {
		t.Errorf("expected generic message, got: %s", msg)
	}
}
