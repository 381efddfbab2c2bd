// Package app assembles the preference store, the ledger and their shared
// persistence into one application-state object.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/cache"
	"budget/internal/config"
	"budget/internal/kv"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/persist"
	"budget/internal/prefs"
)

// ErrOnboardingRequired is returned by operations gated on onboarding.
var ErrOnboardingRequired = errors.New("onboarding required")

const intentCapacity = 128

// Deps overrides what Open would otherwise build from config.
type Deps struct {
	Logger *log.Logger
	// Store replaces the configured backend.
	Store   kv.Store
	Factory backend.Factory
	// OnWritten replaces AMQP notifications.
	OnWritten func(ctx context.Context, key string, value []byte)
}

type App struct {
	Config  *config.Config
	Prefs   *prefs.Store
	Ledger  *ledger.Ledger
	Writer  *persist.Writer
	Intents *ledger.Intents

	store    kv.Store
	cleanup  backend.CleanupFunc
	notifier *amqp.Client
	caches   *cache.Manager
	logger   *log.Logger
}

// Open builds the application state and loads preferences and transactions
// concurrently.
func Open(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	a := &App{
		Config: cfg,
		store:  deps.Store,
		logger: logger.WithComponent(log.ComponentApp),
	}

	if a.store == nil {
		factory := deps.Factory
		if factory == nil {
			factory = backend.NewFactory(logger)
		}
		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return nil, err
		}
		res, err := factory.CreateBackend(ctx, bcfg)
		if err != nil {
			return nil, fmt.Errorf("create backend: %w", err)
		}
		a.store, a.cleanup = res.Store, res.Cleanup
	}

	onWritten := deps.OnWritten
	if onWritten == nil && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			a.logger.Warn("Failed to initialize AMQP client, continuing without notifications", log.FieldError, err)
		} else {
			a.notifier = client
			onWritten = client.OnWritten
			a.logger.Info("Change notifications enabled", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
		}
	}

	a.Writer = persist.New(a.store, persist.Config{
		MaxAttempts: cfg.WriteMaxAttempts,
		RetryDelay:  cfg.WriteRetryDelay,
		OnWritten:   onWritten,
	}, logger)

	totals := cache.NewLRUCache[decimal.Decimal](cfg.CacheSize, cfg.CacheTTL)
	a.Prefs = prefs.New(a.Writer, logger)
	a.Ledger = ledger.New(a.Writer, a.Prefs,
		ledger.WithLogger(logger),
		ledger.WithTotalsCache(totals),
	)
	a.Intents = ledger.NewIntents(intentCapacity, cfg.DeleteIntentTTL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Prefs.Load(gctx, a.store) })
	g.Go(func() error { return a.Ledger.Load(gctx, a.store) })
	if err := g.Wait(); err != nil {
		// Keep whatever is on disk untouched.
		a.Close(context.Background())
		return nil, fmt.Errorf("load state: %w", err)
	}

	a.caches = cache.NewManager(logger)
	a.caches.Register(totals)
	a.caches.Register(a.Intents)
	a.caches.StartCleanup(cleanupInterval(cfg))

	a.logger.Info("Application state loaded",
		log.FieldBackend, cfg.DataBackend,
		log.FieldCount, a.Ledger.Len(),
		"onboarding", a.Prefs.State().String())
	return a, nil
}

func cleanupInterval(cfg *config.Config) time.Duration {
	interval := cfg.DeleteIntentTTL
	if cfg.CacheTTL > 0 && cfg.CacheTTL < interval {
		interval = cfg.CacheTTL
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// RequireOnboarded returns ErrOnboardingRequired until the gate is open.
func (a *App) RequireOnboarded() error {
	if a.Prefs.State() != prefs.Onboarded {
		return ErrOnboardingRequired
	}
	return nil
}

// Ready reports whether state is loaded and the store reachable.
func (a *App) Ready(ctx context.Context) error {
	if a.Prefs.Loading() || a.Ledger.Loading() {
		return errors.New("state still loading")
	}
	if p, ok := a.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("store unreachable: %w", err)
		}
	}
	return nil
}

// Close flushes pending writes and releases the backend.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Writer != nil {
		if err := a.Writer.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush writes: %w", err))
		}
		if st := a.Writer.Stats(); st.Failed > 0 {
			a.logger.Warn("Some writes were not persisted", "failed", st.Failed)
		}
	}
	if a.caches != nil {
		a.caches.Stop()
	}
	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp: %w", err))
		}
	}
	if a.cleanup != nil {
		if err := a.cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("close backend: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Logger returns the logger the App was opened with.
func (a *App) Logger() *log.Logger {
	return a.logger
}
