package routes

import (
	"ecofloss-backend/handlers"
	"ecofloss-backend/middleware"
	"ecofloss-backend/processor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Processor   processor.Relay
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Initialize handlers
	paymentHandler := &handlers.PaymentHandler{Intents: deps.Processor, Logger: logger}
	productHandler := &handlers.ProductHandler{Catalog: deps.Processor, Logger: logger}

	r.GET("/health", handlers.Health)
	r.GET("/products", productHandler.GetProducts)

	// Payment intents are rate limited per client IP
	payments := r.Group("")
	if deps.RateLimiter != nil {
		payments.Use(deps.RateLimiter.Middleware())
	}
	payments.POST("/create-payment-intent", paymentHandler.CreatePaymentIntent)
}
