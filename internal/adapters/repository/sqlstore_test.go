package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchlab/punchd/internal/domain/model"
	"github.com/punchlab/punchd/internal/domain/tier"
)

func newSQLStore(t *testing.T, opts ...SQLOption) *SQLStore {
	t.Helper()
	store, err := NewSQLStore(filepath.Join(t.TempDir(), "leaderboard.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	entry, err := store.Append(ctx, model.Draft{Name: "Tester", Score: 9999, Rank: tier.SSS})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	entries, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, "Tester", entries[0].Name)
	assert.Equal(t, 9999, entries[0].Score)
	assert.Equal(t, tier.SSS, entries[0].Rank)
}

func TestSQLStore_ServerSideOrder(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	for _, score := range []int{100, 9000, 5000} {
		_, err := store.Append(ctx, model.Draft{Name: "P", Score: score, Rank: tier.FromScore(score)})
		require.NoError(t, err)
	}
	// Tie at 5000: insertion order decides.
	second, err := store.Append(ctx, model.Draft{Name: "Later", Score: 5000, Rank: tier.B})
	require.NoError(t, err)

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, []int{9000, 5000, 5000, 100}, []int{
		entries[0].Score, entries[1].Score, entries[2].Score, entries[3].Score,
	})
	assert.Equal(t, second.ID, entries[2].ID, "later tie entry must sort after earlier one")
}

func TestSQLStore_RetentionTrim(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t, WithSQLCapacity(10))

	for i := 0; i <= 10; i++ {
		_, err := store.Append(ctx, model.Draft{Name: "P", Score: i, Rank: tier.C})
		require.NoError(t, err)
	}

	assert.Equal(t, 10, store.Count(ctx))

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, 10, entries[0].Score)
	assert.Equal(t, 1, entries[len(entries)-1].Score, "lowest score must be trimmed")
}

func TestSQLStore_CountAbove(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	for _, score := range []int{1000, 5000, 5000, 9000} {
		_, err := store.Append(ctx, model.Draft{Name: "P", Score: score, Rank: tier.FromScore(score)})
		require.NoError(t, err)
	}

	count, err := store.CountAbove(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.CountAbove(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSQLStore_ListCap(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.Append(ctx, model.Draft{Name: "P", Score: i, Rank: tier.C})
		require.NoError(t, err)
	}

	// An unbounded request is still capped server side.
	entries, err := store.List(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	entries, err = store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSQLStore_RejectedWrite(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	// Violates the score CHECK constraint.
	_, err := store.Append(ctx, model.Draft{Name: "P", Score: 10_000, Rank: tier.SSS})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejectedWrite)

	// Violates the name length CHECK constraint.
	_, err = store.Append(ctx, model.Draft{Name: "", Score: 100, Rank: tier.C})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejectedWrite)

	// A failed append leaves nothing behind for readers.
	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
