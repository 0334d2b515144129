// Package ranking computes ordered views and positional ranks over a
// leaderboard store.
package ranking

import (
	"context"

	"github.com/punchlab/punchd/internal/domain/model"
	"github.com/punchlab/punchd/pkg/logger"
)

// UnknownPosition is returned when the store cannot answer a rank query.
// Display is best-effort; an unreachable backend must not block gameplay.
const UnknownPosition = -1

// Reader is the slice of the store capability the engine needs.
type Reader interface {
	List(ctx context.Context, limit int) ([]model.Entry, error)
	CountAbove(ctx context.Context, score int) (int, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a logger for degraded-read reporting.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine answers ranking queries against an injected store. The same engine
// works over both store implementations; it never re-sorts what a store
// returns, since the store's order is authoritative.
type Engine struct {
	store Reader
	log   logger.Logger
}

// New creates a ranking engine over store.
func New(store Reader, opts ...Option) *Engine {
	e := &Engine{store: store}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// PositionOf returns the 1-based positional rank for a score: one more than
// the number of strictly greater persisted scores. Equal scores share a
// position. Returns UnknownPosition when the store cannot be read.
func (e *Engine) PositionOf(ctx context.Context, score int) int {
	above, err := e.store.CountAbove(ctx, score)
	if err != nil {
		if e.log != nil {
			e.log.Warn(ctx, "position query degraded", logger.Error(err))
		}
		return UnknownPosition
	}
	return above + 1
}

// TopN returns up to n entries in canonical order, best effort: an
// unreadable store yields an empty view rather than an error. Appends are
// the only place failures must stay visible; reads degrade.
func (e *Engine) TopN(ctx context.Context, n int) []model.Entry {
	if n <= 0 {
		return nil
	}
	entries, err := e.store.List(ctx, n)
	if err != nil {
		if e.log != nil {
			e.log.Warn(ctx, "leaderboard query degraded", logger.Error(err))
		}
		return nil
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
