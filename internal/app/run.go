package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

type Runner func(ctx context.Context, logger zerolog.Logger) error

// Run wraps a service entrypoint with signal handling and a process exit
// code. The runner owns its own graceful shutdown; Run only cancels the
// context and leaves a short grace period.
func Run(serviceName string, run Runner) int {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	logger.Info().Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, logger) }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		time.Sleep(200 * time.Millisecond)
		return 0
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("failed")
			return 1
		}
		logger.Info().Msg("stopped")
		return 0
	}
}
