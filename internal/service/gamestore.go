package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tally-tracker/internal/constants"
	"tally-tracker/internal/domain"
	"tally-tracker/internal/repository"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// GameStore owns the game history and the single active game. All mutations
// run synchronously against the in-memory model, which is authoritative for
// the session; persistence happens on a background writer that applies
// snapshots in mutation order. Invalid operation contexts (no active game,
// nothing to undo) are silent no-ops, matching the per-operation contracts.
type GameStore struct {
	repo   *repository.GameRepository
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	games    []domain.Game // newest first
	activeID string        // empty when no game is accepting rounds

	persistCh chan []domain.Game
	writers   errgroup.Group
	closeOnce sync.Once
}

func NewGameStore(repo *repository.GameRepository, logger zerolog.Logger) *GameStore {
	s := &GameStore{
		repo:      repo,
		logger:    logger,
		now:       time.Now,
		persistCh: make(chan []domain.Game, constants.PersistQueueSize),
	}
	s.writers.Go(s.persistLoop)
	return s
}

// Load restores the persisted game history. Unreadable or corrupt data is
// logged and replaced with an empty history; the session keeps working. The
// active game is re-derived as the first persisted game still flagged
// active.
func (s *GameStore) Load(ctx context.Context) error {
	games, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load games, starting empty")
		games = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = games
	s.activeID = ""
	for _, g := range games {
		if !g.IsActive {
			continue
		}
		if s.activeID == "" {
			s.activeID = g.ID
		} else {
			s.logger.Warn().
				Str("game_id", g.ID).
				Str("active_id", s.activeID).
				Msg("multiple active games in persisted data, keeping the first")
		}
	}

	s.logger.Info().
		Int("games", len(s.games)).
		Bool("has_active", s.activeID != "").
		Msg("game history loaded")
	return nil
}

// CreateGame starts a new game and installs it as active. A game already in
// progress is ended first so at most one game is ever active. Player colors
// are reassigned from the seat palette; players without an id get one.
func (s *GameStore) CreateGame(targetScore int, players []domain.Player) (*domain.Game, error) {
	if targetScore < 1 {
		return nil, fmt.Errorf("target score must be positive, got %d", targetScore)
	}
	if len(players) < 2 {
		return nil, fmt.Errorf("a game needs at least 2 players, got %d", len(players))
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if p.ID == "" {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != "" {
		s.endActiveLocked()
	}

	seats := make([]domain.Player, len(players))
	for i, p := range players {
		if p.ID == "" {
			p.ID = gonanoid.Must()
		}
		p.Color = constants.PlayerPalette[i%len(constants.PlayerPalette)]
		seats[i] = p
	}

	game := domain.Game{
		ID:          uuid.New().String(),
		DateStarted: s.now(),
		TargetScore: targetScore,
		Players:     seats,
		Rounds:      []domain.Round{},
		IsActive:    true,
	}

	s.games = append([]domain.Game{game}, s.games...)
	s.activeID = game.ID

	s.logger.Info().
		Str("game_id", game.ID).
		Int("target_score", targetScore).
		Int("players", len(seats)).
		Msg("game created")

	s.queuePersistLocked()
	out := game.Clone()
	return &out, nil
}

// AddRound appends one batch of per-player points to the active game and
// runs win detection. The winner is the first seat in player order at or
// above the target, regardless of score magnitude. No-op when no game is
// accepting rounds.
func (s *GameStore) AddRound(scores map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := s.activeLocked()
	if game == nil {
		s.logger.Debug().Msg("add round ignored, no active game")
		return
	}
	if game.Winner != nil {
		s.logger.Debug().Str("game_id", game.ID).Msg("add round ignored, game already won")
		return
	}

	round := domain.Round{
		ID:        gonanoid.Must(),
		Timestamp: s.now(),
		Scores:    copyScores(scores),
	}
	game.Rounds = append(game.Rounds, round)

	if winnerID, won := game.LeadingWinner(); won {
		ended := s.now()
		game.Winner = &winnerID
		game.IsActive = false
		game.DateEnded = &ended
		s.logger.Info().
			Str("game_id", game.ID).
			Str("winner", winnerID).
			Int("rounds", len(game.Rounds)).
			Msg("target score reached")
	}

	s.queuePersistLocked()
}

// UndoLastRound removes the most recent round. Undoing out of a just-won
// state clears the winner and reopens the game. No-op without a game or
// rounds.
func (s *GameStore) UndoLastRound() {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := s.activeLocked()
	if game == nil || len(game.Rounds) == 0 {
		s.logger.Debug().Msg("undo ignored, nothing to undo")
		return
	}

	game.Rounds = game.Rounds[:len(game.Rounds)-1]
	game.Winner = nil
	game.IsActive = true
	game.DateEnded = nil

	s.logger.Info().
		Str("game_id", game.ID).
		Int("rounds", len(game.Rounds)).
		Msg("last round undone")

	s.queuePersistLocked()
}

// EndGame finalizes the active game without a winner and clears the active
// reference. There is no way back; abandoned games stay in history.
func (s *GameStore) EndGame() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		return
	}
	s.endActiveLocked()
	s.queuePersistLocked()
}

// ResetGame forgets the active game reference. The underlying record is
// deactivated as well so the history never holds a game stuck in the active
// state, but no end date or winner is assigned.
func (s *GameStore) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := s.activeLocked()
	if game == nil {
		s.activeID = ""
		return
	}

	game.IsActive = false
	s.activeID = ""
	s.logger.Info().Str("game_id", game.ID).Msg("active game reset")
	s.queuePersistLocked()
}

// ResetAllGames wipes the history and the persisted copy. This is the one
// mutation whose persistence failure surfaces to the caller.
func (s *GameStore) ResetAllGames(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to reset games")
		return fmt.Errorf("failed to reset games: %w", err)
	}

	s.games = nil
	s.activeID = ""
	s.logger.Info().Msg("all games reset")
	return nil
}

// CurrentScores returns cumulative per-player scores for the active game,
// derived from the round history. Empty when no game is active.
func (s *GameStore) CurrentScores() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := s.activeLocked()
	if game == nil {
		return map[string]int{}
	}
	return game.CurrentScores()
}

// Winner returns the active game's winner id, or nil while undecided.
func (s *GameStore) Winner() *string {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := s.activeLocked()
	if game == nil || game.Winner == nil {
		return nil
	}
	winner := *game.Winner
	return &winner
}

// HasReachedTargetScore reports whether any player in the active game is at
// or above the target.
func (s *GameStore) HasReachedTargetScore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := s.activeLocked()
	if game == nil {
		return false
	}
	return game.HasReachedTarget()
}

// ActiveGame returns a copy of the game currently accepting rounds (or just
// won, until a new one starts), or nil.
func (s *GameStore) ActiveGame() *domain.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := s.activeLocked()
	if game == nil {
		return nil
	}
	out := game.Clone()
	return &out
}

// Games returns a copy of the full history, newest first.
func (s *GameStore) Games() []domain.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Game, len(s.games))
	for i := range s.games {
		out[i] = s.games[i].Clone()
	}
	return out
}

// Close drains pending persistence writes and stops the writer.
func (s *GameStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.persistCh)
	})
	return s.writers.Wait()
}

// activeLocked resolves the active reference to its history entry. Callers
// hold s.mu and mutate the returned game in place.
func (s *GameStore) activeLocked() *domain.Game {
	if s.activeID == "" {
		return nil
	}
	for i := range s.games {
		if s.games[i].ID == s.activeID {
			return &s.games[i]
		}
	}
	// Reference points at nothing; drop it rather than carry a lie.
	s.logger.Warn().Str("game_id", s.activeID).Msg("active game missing from history")
	s.activeID = ""
	return nil
}

func (s *GameStore) endActiveLocked() {
	game := s.activeLocked()
	if game == nil {
		return
	}
	ended := s.now()
	game.IsActive = false
	game.DateEnded = &ended
	s.activeID = ""
	s.logger.Info().Str("game_id", game.ID).Msg("game ended")
}

// queuePersistLocked snapshots the history for the background writer. When
// the queue is full the oldest pending snapshot is discarded; only the
// newest state matters since the collection is written as a unit.
func (s *GameStore) queuePersistLocked() {
	snapshot := make([]domain.Game, len(s.games))
	for i := range s.games {
		snapshot[i] = s.games[i].Clone()
	}

	for {
		select {
		case s.persistCh <- snapshot:
			return
		default:
		}
		select {
		case stale := <-s.persistCh:
			s.logger.Debug().Int("games", len(stale)).Msg("superseding queued persist")
		default:
		}
	}
}

// persistLoop applies snapshots in the order mutations produced them.
// Failures are logged and never rolled back; the in-memory model stays
// authoritative for the session.
func (s *GameStore) persistLoop() error {
	for snapshot := range s.persistCh {
		if err := s.repo.Save(context.Background(), snapshot); err != nil {
			s.logger.Error().Err(err).Int("games", len(snapshot)).Msg("failed to persist games")
		}
	}
	return nil
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for id, pts := range scores {
		out[id] = pts
	}
	return out
}
