package domain

import "strconv"

// CurrentScores sums each player's points across all rounds. Every player
// appears in the result, with 0 when they never scored. Round entries for
// unknown player ids still accumulate so persisted data is never dropped.
func (g *Game) CurrentScores() map[string]int {
	scores := make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		scores[p.ID] = 0
	}
	for _, round := range g.Rounds {
		for playerID, points := range round.Scores {
			scores[playerID] += points
		}
	}
	return scores
}

// HasReachedTarget reports whether any player's cumulative score meets or
// exceeds the target.
func (g *Game) HasReachedTarget() bool {
	for _, score := range g.CurrentScores() {
		if score >= g.TargetScore {
			return true
		}
	}
	return false
}

// LeadingWinner returns the id of the first player in seat order whose
// cumulative score meets or exceeds the target. Ties between players who
// cross the target in the same round go to the earlier seat, never to the
// higher score.
func (g *Game) LeadingWinner() (string, bool) {
	scores := g.CurrentScores()
	for _, p := range g.Players {
		if scores[p.ID] >= g.TargetScore {
			return p.ID, true
		}
	}
	return "", false
}

// WinnerPlayer resolves the recorded winner id to its player record.
func (g *Game) WinnerPlayer() (Player, bool) {
	if g.Winner == nil {
		return Player{}, false
	}
	for _, p := range g.Players {
		if p.ID == *g.Winner {
			return p, true
		}
	}
	return Player{}, false
}

// CoerceScores converts user-entered score strings to round points.
// Non-numeric and non-positive entries become 0 rather than errors. The
// second return reports whether at least one entry is positive, which the
// caller uses to reject empty rounds.
func CoerceScores(entries map[string]string) (map[string]int, bool) {
	scores := make(map[string]int, len(entries))
	hasScores := false
	for playerID, raw := range entries {
		points, err := strconv.Atoi(raw)
		if err != nil || points <= 0 {
			scores[playerID] = 0
			continue
		}
		scores[playerID] = points
		hasScores = true
	}
	return scores, hasScores
}
