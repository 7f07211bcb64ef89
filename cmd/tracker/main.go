package main

import (
	"context"
	"database/sql"

	"tally-tracker/internal/config"
	"tally-tracker/internal/constants"
	fxmodules "tally-tracker/internal/fx"
	"tally-tracker/internal/logger"
	"tally-tracker/internal/tracker"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runTracker),
	).Run()
}

// runTracker hosts the scoring engine for the lifetime of the process. The
// presentation layer binds to the Tracker surface; there is no network
// listener, no CLI surface, no ports.
func runTracker(
	lc fx.Lifecycle,
	app *tracker.Tracker,
	cfg *config.Config,
	db *sql.DB,
	log zerolog.Logger,
) {
	log = logger.WithLevel(log, cfg.LogLevel)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := app.Load(ctx); err != nil {
				return err
			}
			log.Info().Msg("tracker ready")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down tracker")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- app.Close()
			}()
			select {
			case err := <-done:
				if err != nil {
					log.Error().Err(err).Msg("failed to flush persistence queue")
				}
			case <-shutdownCtx.Done():
				log.Warn().Msg("persistence flush timed out")
			}

			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database")
				return err
			}

			log.Info().Msg("tracker stopped gracefully")
			return nil
		},
	})
}
