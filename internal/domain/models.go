package domain

import (
	"time"
)

// Player is one seat in a game. Membership is fixed at game creation; the
// color is reassigned from the seat palette and not caller-controlled.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Round is one batch of per-player point additions. Rounds are immutable
// once recorded; a player missing from Scores contributed zero points.
type Round struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Scores    map[string]int `json:"scores"`
}

// Game is a single tally game. Cumulative scores and the winner are always
// derived from Rounds, never stored alongside them.
type Game struct {
	ID          string     `json:"id"`
	DateStarted time.Time  `json:"dateStarted"`
	DateEnded   *time.Time `json:"dateEnded,omitempty"`
	TargetScore int        `json:"targetScore"`
	Players     []Player   `json:"players"`
	Rounds      []Round    `json:"rounds"`
	Winner      *string    `json:"winner,omitempty"`
	IsActive    bool       `json:"isActive"`
}

// ScoreData is the expiring score cache payload: the latest score seen per
// player plus the historical high-water mark, valid until ExpirationDate.
type ScoreData struct {
	CurrentScores      map[string]int `json:"currentScores"`
	HighScores         map[string]int `json:"highScores"`
	LastResetTimestamp time.Time      `json:"lastResetTimestamp"`
	ExpirationDate     time.Time      `json:"expirationDate"`
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() Game {
	out := *g
	out.Players = make([]Player, len(g.Players))
	copy(out.Players, g.Players)
	out.Rounds = make([]Round, len(g.Rounds))
	for i, r := range g.Rounds {
		cr := r
		cr.Scores = make(map[string]int, len(r.Scores))
		for id, pts := range r.Scores {
			cr.Scores[id] = pts
		}
		out.Rounds[i] = cr
	}
	if g.DateEnded != nil {
		ended := *g.DateEnded
		out.DateEnded = &ended
	}
	if g.Winner != nil {
		winner := *g.Winner
		out.Winner = &winner
	}
	return out
}
