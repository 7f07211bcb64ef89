package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tally-tracker/internal/constants"
	"tally-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// ScoreRepository persists the score cache payload as one JSON object.
type ScoreRepository struct {
	kv     KV
	logger zerolog.Logger
}

func NewScoreRepository(kv KV, logger zerolog.Logger) *ScoreRepository {
	return &ScoreRepository{kv: kv, logger: logger}
}

// Load returns the persisted score data, or nil when nothing is stored.
func (r *ScoreRepository) Load(ctx context.Context) (*domain.ScoreData, error) {
	raw, ok, err := r.kv.Get(ctx, constants.ScoresStorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	if !ok {
		r.logger.Debug().Msg("no persisted scores found")
		return nil, nil
	}

	var data domain.ScoreData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to decode scores: %w", err)
	}
	return &data, nil
}

func (r *ScoreRepository) Save(ctx context.Context, data *domain.ScoreData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	if err := r.kv.Set(ctx, constants.ScoresStorageKey, string(raw)); err != nil {
		// Keep ErrStoreFull visible so the cache can clear and retry.
		return err
	}
	return nil
}

func (r *ScoreRepository) Remove(ctx context.Context) error {
	if err := r.kv.Remove(ctx, constants.ScoresStorageKey); err != nil {
		return fmt.Errorf("failed to remove scores: %w", err)
	}
	return nil
}

// ClearStore wipes the entire key-value store. Used by the storage-full
// recovery path.
func (r *ScoreRepository) ClearStore(ctx context.Context) error {
	return r.kv.Clear(ctx)
}
