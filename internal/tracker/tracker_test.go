package tracker

import (
	"context"
	"path/filepath"
	"testing"

	"tally-tracker/internal/config"
	"tally-tracker/internal/database"
	"tally-tracker/internal/domain"
	"tally-tracker/internal/repository"
	"tally-tracker/internal/service"

	"github.com/rs/zerolog"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}

	kv := repository.NewSQLiteKV(db, zerolog.Nop())
	gameStore := service.NewGameStore(repository.NewGameRepository(kv, zerolog.Nop()), zerolog.Nop())
	scoreCache := service.NewScoreCache(repository.NewScoreRepository(kv, zerolog.Nop()), zerolog.Nop())

	app := New(gameStore, scoreCache)
	t.Cleanup(func() {
		app.Close()
		db.Close()
	})
	return app
}

func seatAnaBo(t *testing.T, app *Tracker, target int) *domain.Game {
	t.Helper()
	game, err := app.CreateGame(target, []domain.Player{
		{ID: "a", Name: "Ana"},
		{ID: "b", Name: "Bo"},
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return game
}

func TestAddRoundEntriesCoercesInput(t *testing.T) {
	app := newTestTracker(t)
	seatAnaBo(t, app, 100)

	if ok := app.AddRoundEntries(map[string]string{"a": "25", "b": "junk"}); !ok {
		t.Fatal("round with one valid entry was rejected")
	}

	scores := app.CurrentScores()
	if scores["a"] != 25 || scores["b"] != 0 {
		t.Errorf("scores = %v, want a:25 b:0", scores)
	}
}

func TestAddRoundEntriesRejectsEmptyRound(t *testing.T) {
	app := newTestTracker(t)
	seatAnaBo(t, app, 100)

	if ok := app.AddRoundEntries(map[string]string{"a": "0", "b": "-5"}); ok {
		t.Fatal("all-zero round was accepted")
	}
	if game := app.ActiveGame(); len(game.Rounds) != 0 {
		t.Errorf("rounds = %d, want 0", len(game.Rounds))
	}
}

func TestGameSummariesNewestFirst(t *testing.T) {
	app := newTestTracker(t)

	seatAnaBo(t, app, 50)
	app.AddRound(map[string]int{"a": 50})

	second, err := app.CreateGame(100, []domain.Player{
		{ID: "c", Name: "Cy"},
		{ID: "d", Name: "Di"},
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	app.AddRound(map[string]int{"c": 10})

	summaries := app.GameSummaries()
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	if summaries[0].GameID != second.ID {
		t.Error("newest game not first")
	}
	if summaries[1].WinnerName != "Ana" {
		t.Errorf("winner name = %q, want Ana", summaries[1].WinnerName)
	}
	if summaries[1].FinalScores["a"] != 50 {
		t.Errorf("final scores = %v, want a:50", summaries[1].FinalScores)
	}
	if summaries[0].Rounds != 1 {
		t.Errorf("rounds = %d, want 1", summaries[0].Rounds)
	}
}

func TestTrackerScoreCachePassThrough(t *testing.T) {
	app := newTestTracker(t)
	ctx := context.Background()

	app.UpdateScore(ctx, "p", 10)
	app.UpdateScore(ctx, "p", 5)

	if got := app.CachedScores()["p"]; got != 5 {
		t.Errorf("cached = %d, want 5", got)
	}
	if got := app.HighScores()["p"]; got != 10 {
		t.Errorf("high = %d, want 10", got)
	}

	app.ResetScores(ctx)
	if scores := app.CachedScores(); len(scores) != 0 {
		t.Errorf("cached = %v, want empty after reset", scores)
	}
}

func TestTrackerLoadRestoresBothServices(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	defer db.Close()

	kv := repository.NewSQLiteKV(db, zerolog.Nop())
	gameRepo := repository.NewGameRepository(kv, zerolog.Nop())
	scoreRepo := repository.NewScoreRepository(kv, zerolog.Nop())

	first := New(
		service.NewGameStore(gameRepo, zerolog.Nop()),
		service.NewScoreCache(scoreRepo, zerolog.Nop()),
	)
	seatAnaBo(t, first, 100)
	first.AddRound(map[string]int{"a": 30})
	first.UpdateScore(context.Background(), "a", 30)
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := New(
		service.NewGameStore(gameRepo, zerolog.Nop()),
		service.NewScoreCache(scoreRepo, zerolog.Nop()),
	)
	defer second.Close()
	if err := second.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if scores := second.CurrentScores(); scores["a"] != 30 {
		t.Errorf("restored game scores = %v, want a:30", scores)
	}
	if scores := second.CachedScores(); scores["a"] != 30 {
		t.Errorf("restored cached scores = %v, want a:30", scores)
	}
}
