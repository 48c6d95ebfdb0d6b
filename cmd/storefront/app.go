package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"ecofloss-backend/cart"
	"ecofloss-backend/config"
	"ecofloss-backend/database"
	"ecofloss-backend/gateway"
	"ecofloss-backend/processor"
	"ecofloss-backend/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is one storefront session: the persisted cart plus handles on the relay,
// the backing store and the processor.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer

	cart      *cart.Store
	relay     *gateway.RelayClient
	confirmer processor.Confirmer
	mailer    utils.Mailer

	storeOnce sync.Once
	store     *gateway.Store
	db        *gorm.DB
	storeErr  error

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, out io.Writer) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    out,
		relay:  gateway.NewRelayClient(cfg.RelayURL, nil),
		mailer: newMailer(cfg, logger),
	}
	if cfg.StripePublishableKey != "" {
		a.confirmer = processor.NewStripe(cfg.StripePublishableKey)
	}

	slot, err := a.cartSlot(ctx)
	if err != nil {
		return nil, err
	}
	a.cart = cart.NewStore(slot, logger)
	a.cart.Load(ctx)
	return a, nil
}

func (a *app) cartSlot(ctx context.Context) (cart.Slot, error) {
	if a.cfg.RedisURL == "" {
		return cart.NewFileSlot(a.cfg.CartFile), nil
	}

	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	return cart.NewRedisSlot(client, cart.DefaultSlotKey), nil
}

// backingStore connects to the backing store on first use.
func (a *app) backingStore() (*gateway.Store, error) {
	a.storeOnce.Do(func() {
		if a.store != nil {
			return
		}
		if a.cfg.DatabaseURL == "" {
			a.storeErr = fmt.Errorf("DATABASE_URL is not set")
			return
		}
		db, err := database.Connect(a.cfg.DatabaseURL)
		if err != nil {
			a.storeErr = fmt.Errorf("connect to backing store: %w", err)
			return
		}
		a.db = db
		a.store = gateway.NewStore(db, gateway.NewPgFeed(a.cfg.DatabaseURL), a.logger)
	})
	return a.store, a.storeErr
}

func (a *app) Close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
}

// newMailer prefers EmailJS and falls back to SMTP. It returns nil when neither
// is configured.
func newMailer(cfg config.Config, logger *zap.Logger) utils.Mailer {
	if cfg.EmailJSServiceID != "" && cfg.EmailJSPublicKey != "" {
		return utils.NewEmailJSMailer(cfg.EmailJSServiceID, cfg.EmailJSTemplateID, cfg.EmailJSPublicKey)
	}
	if smtp := utils.GetEmailConfig(); smtp.Configured() {
		return &utils.SMTPMailer{Config: smtp}
	}
	logger.Warn("no email service configured - order confirmations will not be sent")
	return nil
}
