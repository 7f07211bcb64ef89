package repository

import (
	"context"
	"path/filepath"
	"testing"

	"tally-tracker/internal/config"
	"tally-tracker/internal/database"

	"github.com/rs/zerolog"
)

func testKV(t *testing.T) *SQLiteKV {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return NewSQLiteKV(db, zerolog.Nop())
}

func TestKVSetGet(t *testing.T) {
	kv := testKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "k", `{"v":1}`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, ok, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if value != `{"v":1}` {
		t.Errorf("value = %q, want {\"v\":1}", value)
	}
}

func TestKVGetAbsent(t *testing.T) {
	kv := testKV(t)

	_, ok, err := kv.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected absent key")
	}
}

func TestKVOverwrite(t *testing.T) {
	kv := testKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	value, _, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "two" {
		t.Errorf("value = %q, want two", value)
	}
}

func TestKVRemove(t *testing.T) {
	kv := testKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Error("expected key removed")
	}

	// Removing an absent key is not an error.
	if err := kv.Remove(ctx, "k"); err != nil {
		t.Errorf("Remove absent: %v", err)
	}
}

func TestKVClear(t *testing.T) {
	kv := testKV(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := kv.Set(ctx, key, "v"); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}
	if err := kv.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	for _, key := range []string{"a", "b", "c"} {
		if _, ok, _ := kv.Get(ctx, key); ok {
			t.Errorf("key %s survived Clear", key)
		}
	}
}
