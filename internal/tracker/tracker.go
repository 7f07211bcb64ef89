package tracker

import (
	"context"
	"sort"
	"time"

	"tally-tracker/internal/domain"
	"tally-tracker/internal/service"
)

// Tracker is the surface the presentation layer binds to: plain method
// calls into the game store and the score cache, plus the read models the
// screens render.
type Tracker struct {
	gameStore  *service.GameStore
	scoreCache *service.ScoreCache
}

// GameSummary is one history entry, ready for rendering.
type GameSummary struct {
	GameID      string          `json:"gameId"`
	DateStarted time.Time       `json:"dateStarted"`
	DateEnded   *time.Time      `json:"dateEnded,omitempty"`
	TargetScore int             `json:"targetScore"`
	Players     []domain.Player `json:"players"`
	WinnerName  string          `json:"winnerName,omitempty"`
	FinalScores map[string]int  `json:"finalScores"`
	Rounds      int             `json:"rounds"`
}

func New(gameStore *service.GameStore, scoreCache *service.ScoreCache) *Tracker {
	return &Tracker{gameStore: gameStore, scoreCache: scoreCache}
}

// Load restores both services from persisted state.
func (t *Tracker) Load(ctx context.Context) error {
	if err := t.gameStore.Load(ctx); err != nil {
		return err
	}
	t.scoreCache.Load(ctx)
	return nil
}

// Close flushes pending persistence work.
func (t *Tracker) Close() error {
	return t.gameStore.Close()
}

func (t *Tracker) CreateGame(targetScore int, players []domain.Player) (*domain.Game, error) {
	return t.gameStore.CreateGame(targetScore, players)
}

// AddRoundEntries coerces user-entered score strings and records a round.
// Non-numeric and non-positive entries count as zero; a round with no
// positive entry at all is rejected so an empty submit cannot pad history.
func (t *Tracker) AddRoundEntries(entries map[string]string) bool {
	scores, hasScores := domain.CoerceScores(entries)
	if !hasScores {
		return false
	}
	t.gameStore.AddRound(scores)
	return true
}

func (t *Tracker) AddRound(scores map[string]int) {
	t.gameStore.AddRound(scores)
}

func (t *Tracker) UndoLastRound() {
	t.gameStore.UndoLastRound()
}

func (t *Tracker) EndGame() {
	t.gameStore.EndGame()
}

func (t *Tracker) ResetGame() {
	t.gameStore.ResetGame()
}

func (t *Tracker) ResetAllGames(ctx context.Context) error {
	return t.gameStore.ResetAllGames(ctx)
}

func (t *Tracker) ActiveGame() *domain.Game {
	return t.gameStore.ActiveGame()
}

func (t *Tracker) CurrentScores() map[string]int {
	return t.gameStore.CurrentScores()
}

func (t *Tracker) Winner() *string {
	return t.gameStore.Winner()
}

func (t *Tracker) HasReachedTargetScore() bool {
	return t.gameStore.HasReachedTargetScore()
}

// GameSummaries returns the game history newest first, with the winner name
// and final scores resolved for rendering.
func (t *Tracker) GameSummaries() []GameSummary {
	games := t.gameStore.Games()
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].DateStarted.After(games[j].DateStarted)
	})

	summaries := make([]GameSummary, len(games))
	for i, g := range games {
		summary := GameSummary{
			GameID:      g.ID,
			DateStarted: g.DateStarted,
			DateEnded:   g.DateEnded,
			TargetScore: g.TargetScore,
			Players:     g.Players,
			FinalScores: g.CurrentScores(),
			Rounds:      len(g.Rounds),
		}
		if winner, ok := g.WinnerPlayer(); ok {
			summary.WinnerName = winner.Name
		}
		summaries[i] = summary
	}
	return summaries
}

func (t *Tracker) UpdateScore(ctx context.Context, playerID string, score int) {
	t.scoreCache.UpdateScore(ctx, playerID, score)
}

func (t *Tracker) ResetScores(ctx context.Context) {
	t.scoreCache.ResetScores(ctx)
}

func (t *Tracker) CachedScores() map[string]int {
	return t.scoreCache.CurrentScores()
}

func (t *Tracker) HighScores() map[string]int {
	return t.scoreCache.HighScores()
}
