// Package repository defines the leaderboard store interface and its two
// interchangeable implementations.
package repository

import (
	"context"

	"github.com/punchlab/punchd/internal/domain/model"
)

// DefaultCapacity is the retention bound: after every successful append a
// store discards the lowest-ranked surplus entries beyond this many.
const DefaultCapacity = 100

// Store provides append/read access to persisted leaderboard entries.
// Implementations assign ID and CreatedAt on append and keep entries in the
// canonical order: score descending, earlier insertion first on ties.
type Store interface {
	// Append persists one draft and returns the materialized entry.
	// Retention trim runs after a successful append.
	Append(ctx context.Context, draft model.Draft) (model.Entry, error)

	// List returns entries in canonical order. A limit <= 0 means no
	// caller-imposed bound; implementations may still cap the result.
	List(ctx context.Context, limit int) ([]model.Entry, error)

	// CountAbove returns the number of entries with a strictly greater score.
	CountAbove(ctx context.Context, score int) (int, error)

	// Count returns the number of entries currently stored.
	Count(ctx context.Context) int
}
