package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tally-tracker/internal/constants"
	"tally-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// GameRepository persists the full game history as a single JSON array under
// one storage key. The collection is always written and restored as a unit.
type GameRepository struct {
	kv     KV
	logger zerolog.Logger
}

func NewGameRepository(kv KV, logger zerolog.Logger) *GameRepository {
	return &GameRepository{kv: kv, logger: logger}
}

func (r *GameRepository) Load(ctx context.Context) ([]domain.Game, error) {
	raw, ok, err := r.kv.Get(ctx, constants.GamesStorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	if !ok {
		r.logger.Debug().Msg("no persisted games found")
		return nil, nil
	}

	var games []domain.Game
	if err := json.Unmarshal([]byte(raw), &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}

	r.logger.Debug().Int("count", len(games)).Msg("games loaded")
	return games, nil
}

func (r *GameRepository) Save(ctx context.Context, games []domain.Game) error {
	raw, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("failed to encode games: %w", err)
	}
	if err := r.kv.Set(ctx, constants.GamesStorageKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save games: %w", err)
	}
	return nil
}

func (r *GameRepository) Clear(ctx context.Context) error {
	if err := r.kv.Remove(ctx, constants.GamesStorageKey); err != nil {
		return fmt.Errorf("failed to clear games: %w", err)
	}
	return nil
}
