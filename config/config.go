package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DefaultPort               = "3001"
	DefaultRelayURL           = "http://localhost:3001"
	DefaultCartFile           = "ecofloss-cart.json"
	DefaultLogLevel           = "info"
	DefaultRateLimitPerMinute = 20
)

// LoadEnv loads .env.local and .env (or the given files) into the process
// environment. Variables already set are never overridden and missing files are
// skipped; on production the environment is set directly.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ValidateRelayEnv checks the variables the relay cannot start without.
// Optional variables only produce warnings.
func ValidateRelayEnv(logger *zap.Logger) error {
	var missing []string

	if os.Getenv("STRIPE_SECRET_KEY") == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	if os.Getenv("FRONTEND_URL") == "" {
		logger.Warn("FRONTEND_URL not set - CORS allows all origins")
	}
	if os.Getenv("PORT") == "" {
		logger.Warn("PORT not set - using default", zap.String("port", DefaultPort))
	}

	return nil
}

// ValidateStorefrontEnv warns about the variables a storefront session needs
// for checkout and the backing-store views.
func ValidateStorefrontEnv(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if os.Getenv("STRIPE_PUBLISHABLE_KEY") == "" {
		logger.Warn("STRIPE_PUBLISHABLE_KEY not set - checkout will fail")
	}
	if os.Getenv("DATABASE_URL") == "" {
		logger.Warn("DATABASE_URL not set - backing-store products and counters are unavailable")
	}
	if os.Getenv("EMAILJS_SERVICE_ID") == "" && os.Getenv("SMTP_HOST") == "" {
		logger.Warn("no email service configured - order confirmations will not be sent")
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns the integer value of key, or defaultValue when it is unset or malformed.
func GetEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

type Config struct {
	StripeSecretKey      string
	StripePublishableKey string
	DatabaseURL          string
	DatabaseServiceURL   string
	EmailJSServiceID     string
	EmailJSTemplateID    string
	EmailJSPublicKey     string
	Port                 string
	RelayURL             string
	FrontendOrigins      []string
	CartFile             string
	RedisURL             string
	LogLevel             string
	RateLimitPerMinute   int
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DatabaseServiceURL:   os.Getenv("DATABASE_SERVICE_URL"),
		EmailJSServiceID:     os.Getenv("EMAILJS_SERVICE_ID"),
		EmailJSTemplateID:    os.Getenv("EMAILJS_TEMPLATE_ID"),
		EmailJSPublicKey:     os.Getenv("EMAILJS_PUBLIC_KEY"),
		Port:                 GetEnv("PORT", DefaultPort),
		RelayURL:             strings.TrimRight(GetEnv("RELAY_URL", DefaultRelayURL), "/"),
		FrontendOrigins:      splitOrigins(os.Getenv("FRONTEND_URL")),
		CartFile:             GetEnv("CART_FILE", DefaultCartFile),
		RedisURL:             os.Getenv("REDIS_URL"),
		LogLevel:             GetEnv("LOG_LEVEL", DefaultLogLevel),
		RateLimitPerMinute:   GetEnvInt("RATE_LIMIT_PER_MINUTE", DefaultRateLimitPerMinute),
	}
}

func splitOrigins(v string) []string {
	var origins []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
