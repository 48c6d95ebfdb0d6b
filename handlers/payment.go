package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"ecofloss-backend/dtos"
	"ecofloss-backend/processor"
	"ecofloss-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultCurrency = "usd"
	orderTypeTag    = "ecofloss_order"
)

type PaymentHandler struct {
	Intents processor.Intents
	Logger  *zap.Logger
}

func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req dtos.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: utils.SanitizeValidationError(err)})
		return
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	intent, err := h.Intents.CreatePaymentIntent(c.Request.Context(), processor.PaymentIntentParams{
		AmountMinor: utils.ToMinorUnits(req.Amount),
		Currency:    currency,
		Metadata: map[string]string{
			"customer_email": req.CustomerInfo.Email,
			"customer_name":  req.CustomerInfo.FullName(),
			"items_count":    strconv.Itoa(len(req.Items)),
			"order_type":     orderTypeTag,
		},
	})
	if err != nil {
		h.Logger.Error("Error creating payment intent", zap.Float64("amount", req.Amount), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to create payment intent"})
		return
	}

	c.JSON(http.StatusOK, dtos.CreatePaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}
