package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/punchlab/punchd/internal/domain/model"
	"github.com/punchlab/punchd/internal/domain/tier"
)

func newMemStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestFileStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	// Empty store
	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	entry, err := store.Append(ctx, model.Draft{Name: "Tester", Score: 5000, Rank: tier.B})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected assigned id")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected assigned creation time")
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != entry.ID {
		t.Errorf("expected appended entry in list, got %+v", entries[0])
	}
}

func TestFileStore_AssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		entry, err := store.Append(ctx, model.Draft{Name: "P", Score: i, Rank: tier.C})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[entry.ID] {
			t.Fatalf("duplicate id %s", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestFileStore_CanonicalOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	for _, score := range []int{100, 9000, 5000, 7500} {
		if _, err := store.Append(ctx, model.Draft{Name: "P", Score: score, Rank: tier.FromScore(score)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{9000, 7500, 5000, 100}
	for i, score := range want {
		if entries[i].Score != score {
			t.Errorf("position %d: expected score %d, got %d", i, score, entries[i].Score)
		}
	}
}

func TestFileStore_TieBreakInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	a, err := store.Append(ctx, model.Draft{Name: "A", Score: 5000, Rank: tier.B})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := store.Append(ctx, model.Draft{Name: "B", Score: 5000, Rank: tier.B})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != a.ID || entries[1].ID != b.ID {
		t.Errorf("expected insertion-order tie-break A before B, got %s then %s",
			entries[0].Name, entries[1].Name)
	}
}

func TestFileStore_RetentionTrim(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	// 101 sequential appends with distinct scores; the lowest must go.
	for i := 0; i <= DefaultCapacity; i++ {
		if _, err := store.Append(ctx, model.Draft{Name: "P", Score: i, Rank: tier.C}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := store.List(ctx, DefaultCapacity+1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != DefaultCapacity {
		t.Fatalf("expected %d entries after trim, got %d", DefaultCapacity, len(entries))
	}
	// The surviving set is the top 100 scores: 1..100.
	if entries[0].Score != DefaultCapacity {
		t.Errorf("expected top score %d, got %d", DefaultCapacity, entries[0].Score)
	}
	if entries[len(entries)-1].Score != 1 {
		t.Errorf("expected lowest surviving score 1, got %d", entries[len(entries)-1].Score)
	}
}

func TestFileStore_CountAbove(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	for _, score := range []int{1000, 5000, 5000, 9000} {
		if _, err := store.Append(ctx, model.Draft{Name: "P", Score: score, Rank: tier.FromScore(score)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		score int
		want  int
	}{
		{9999, 0},
		{9000, 0},
		{5000, 1},
		{4999, 3},
		{0, 4},
	}
	for _, tt := range tests {
		got, err := store.CountAbove(ctx, tt.score)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("CountAbove(%d): expected %d, got %d", tt.score, tt.want, got)
		}
	}
}

func TestFileStore_ListLimit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	for i := 0; i < 10; i++ {
		if _, err := store.Append(ctx, model.Draft{Name: "P", Score: i, Rank: tier.C}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}

	entries, err = store.List(ctx, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("expected all 10 entries, got %d", len(entries))
	}
}

func TestFileStore_PersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leaderboard.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Append(ctx, model.Draft{Name: "Tester", Score: 9999, Rank: tier.SSS}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, err := reloaded.List(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Tester" || entries[0].Score != 9999 {
		t.Errorf("expected reloaded entry, got %+v", entries)
	}
}

func TestFileStore_CorruptBlobIsEmptyBoard(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("corrupt blob must not be fatal: %v", err)
	}
	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected empty board from corrupt blob, got %d entries", count)
	}
}

func TestFileStore_MediumUnavailable(t *testing.T) {
	ctx := context.Background()
	// A directory path cannot be written as a file.
	dir := t.TempDir()

	store, err := NewFileStore(filepath.Join(dir, "missing", "leaderboard.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := store.Append(ctx, model.Draft{Name: "P", Score: 100, Rank: tier.C})
	if err == nil {
		t.Fatal("expected ErrStorageUnavailable")
	}
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if !store.Degraded() {
		t.Error("expected store to degrade to memory-only")
	}

	// The session continues in memory: the entry stays visible.
	entries, listErr := store.List(ctx, 0)
	if listErr != nil {
		t.Fatalf("unexpected error: %v", listErr)
	}
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Errorf("expected in-memory entry after medium failure, got %+v", entries)
	}
}

func TestFileStore_MonotonicCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	var prev model.Entry
	for i := 0; i < 20; i++ {
		entry, err := store.Append(ctx, model.Draft{Name: fmt.Sprintf("P%d", i), Score: i, Rank: tier.C})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i > 0 && entry.CreatedAt.Before(prev.CreatedAt) {
			t.Fatalf("creation time went backwards: %v then %v", prev.CreatedAt, entry.CreatedAt)
		}
		prev = entry
	}
}
