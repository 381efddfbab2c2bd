// Package cli holds the budget subcommands and the process setup shared by
// the command-line and server entry points.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"budget/internal/app"
	"budget/internal/config"
	"budget/internal/log"
)

// closeTimeout bounds the final flush of pending writes.
const closeTimeout = 10 * time.Second

// Opener builds the App for a command that needs it.
type Opener func(ctx context.Context) (*app.App, error)

// SetupLogger builds the process logger from a LOG_LEVEL value and makes
// it the slog default. Unknown levels fall back to info.
func SetupLogger(level string, out *os.File) *log.Logger {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{Level: lvl, Output: out})
	if err != nil {
		logger.Warn("Falling back to info level", log.FieldError, err)
	}
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned channel closes once cleanup finished or timeout elapsed.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

// Execute runs the command selected by args on cdr. The App is opened only
// for budget commands, so help and usage work even when the data is
// unreadable. args are the top-level arguments left after flag parsing.
func Execute(ctx context.Context, cdr *subcommands.Commander, args []string, open Opener, logger *log.Logger) subcommands.ExitStatus {
	if len(args) == 0 || !NeedsApp(args[0]) {
		return cdr.Execute(ctx)
	}

	a, err := open(ctx)
	if err != nil {
		logger.Error("Failed to open budget data", log.FieldError, err)
		return subcommands.ExitFailure
	}
	status := cdr.Execute(app.WithApp(ctx, a))

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	return closeApp(closeCtx, a, status, logger)
}

// closeApp flushes the App. A command runs once, so a write dropped after
// its retries is lost for good and the run fails.
func closeApp(ctx context.Context, a *app.App, status subcommands.ExitStatus, logger *log.Logger) subcommands.ExitStatus {
	err := a.Close(ctx)
	if n := a.Writer.Stats().Failed; n > 0 {
		err = errors.Join(err, fmt.Errorf("%d change(s) could not be saved", n))
	}
	if err == nil {
		return status
	}
	logger.Error("Failed to save changes", log.FieldError, err)
	if status == subcommands.ExitSuccess {
		return subcommands.ExitFailure
	}
	return status
}
