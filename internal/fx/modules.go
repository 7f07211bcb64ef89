package fx

import (
	"tally-tracker/internal/config"
	"tally-tracker/internal/database"
	"tally-tracker/internal/logger"
	"tally-tracker/internal/repository"
	"tally-tracker/internal/service"
	"tally-tracker/internal/tracker"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// storage capability
	fx.Provide(repository.NewSQLiteKV),
	fx.Provide(repository.NewKV),
	// repos
	fx.Provide(repository.NewGameRepository),
	fx.Provide(repository.NewScoreRepository),
	// svc
	fx.Provide(service.NewGameStore),
	fx.Provide(service.NewScoreCache),
	// presentation-facing surface
	fx.Provide(tracker.New),
)
