package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"tally-tracker/internal/constants"
	"tally-tracker/internal/domain"
	"tally-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// ScoreCache tracks the latest and best-ever score per player across games,
// independent of the game history. The whole payload expires five days
// after the last reset; expiration is only observed at load time.
type ScoreCache struct {
	repo   *repository.ScoreRepository
	logger zerolog.Logger
	now    func() time.Time

	mu   sync.Mutex
	data domain.ScoreData
}

func NewScoreCache(repo *repository.ScoreRepository, logger zerolog.Logger) *ScoreCache {
	c := &ScoreCache{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	c.data = c.freshData()
	return c
}

// Load adopts the persisted score data unless it is missing, expired, or
// unreadable; those cases all reinitialize and persist a fresh payload.
func (c *ScoreCache) Load(ctx context.Context) {
	data, err := c.repo.Load(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load scores, resetting")
		c.ResetScores(ctx)
		return
	}
	if data == nil {
		return
	}
	if c.now().After(data.ExpirationDate) {
		c.logger.Info().
			Time("expired_at", data.ExpirationDate).
			Msg("cached scores expired")
		c.ResetScores(ctx)
		return
	}

	c.mu.Lock()
	c.data = *data
	if c.data.CurrentScores == nil {
		c.data.CurrentScores = map[string]int{}
	}
	if c.data.HighScores == nil {
		c.data.HighScores = map[string]int{}
	}
	c.mu.Unlock()

	c.logger.Debug().
		Int("players", len(data.CurrentScores)).
		Msg("cached scores loaded")
}

// UpdateScore records a player's latest score and raises their high-water
// mark when beaten, then persists synchronously. A full store is cleared
// and the write retried once; any other persistence failure is logged and
// the in-memory update stands.
func (c *ScoreCache) UpdateScore(ctx context.Context, playerID string, score int) {
	c.mu.Lock()
	c.data.CurrentScores[playerID] = score
	if high, ok := c.data.HighScores[playerID]; !ok || score > high {
		c.data.HighScores[playerID] = score
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.save(ctx, &snapshot)
}

// ResetScores reinitializes the cache with a fresh five-day expiration
// window, dropping the previously persisted entry first.
func (c *ScoreCache) ResetScores(ctx context.Context) {
	c.mu.Lock()
	c.data = c.freshData()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if err := c.repo.Remove(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to remove old scores")
	}
	c.save(ctx, &snapshot)
	c.logger.Info().Time("expires_at", snapshot.ExpirationDate).Msg("scores reset")
}

// CurrentScores returns a copy of the latest score per player.
func (c *ScoreCache) CurrentScores() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyScores(c.data.CurrentScores)
}

// HighScores returns a copy of the historical best score per player.
func (c *ScoreCache) HighScores() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyScores(c.data.HighScores)
}

func (c *ScoreCache) save(ctx context.Context, data *domain.ScoreData) {
	err := c.repo.Save(ctx, data)
	if err == nil {
		return
	}
	if errors.Is(err, repository.ErrStoreFull) {
		c.logger.Warn().Msg("store full, clearing and retrying score write")
		if err := c.repo.ClearStore(ctx); err != nil {
			c.logger.Error().Err(err).Msg("failed to clear full store")
			return
		}
		if err := c.repo.Save(ctx, data); err != nil {
			c.logger.Error().Err(err).Msg("failed to save scores after clearing store")
		}
		return
	}
	c.logger.Error().Err(err).Msg("failed to save scores")
}

func (c *ScoreCache) freshData() domain.ScoreData {
	now := c.now()
	return domain.ScoreData{
		CurrentScores:      map[string]int{},
		HighScores:         map[string]int{},
		LastResetTimestamp: now,
		ExpirationDate:     now.Add(constants.ScoreExpiration),
	}
}

func (c *ScoreCache) snapshotLocked() domain.ScoreData {
	out := c.data
	out.CurrentScores = copyScores(c.data.CurrentScores)
	out.HighScores = copyScores(c.data.HighScores)
	return out
}
