package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/punchlab/punchd/internal/domain/model"
	"github.com/punchlab/punchd/internal/domain/tier"
	"github.com/punchlab/punchd/pkg/metrics"
)

// Default shared store configuration constants.
const (
	// defaultOpTimeout converts a hanging remote call into ErrNetwork.
	defaultOpTimeout = 5 * time.Second

	// serverListCap bounds List I/O regardless of the caller's limit.
	serverListCap = 100
)

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithSQLCapacity overrides the retention bound.
func WithSQLCapacity(capacity int) SQLOption {
	return func(s *SQLStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithOpTimeout bounds each remote operation.
func WithOpTimeout(timeout time.Duration) SQLOption {
	return func(s *SQLStore) {
		if timeout > 0 {
			s.opTimeout = timeout
		}
	}
}

// SQLStore is the shared durable store: one row per entry in a relational
// table reached over the network. Ordering and trim are delegated to SQL so
// the response order is authoritative and never re-sorted client side.
type SQLStore struct {
	db        *sql.DB
	capacity  int
	opTimeout time.Duration
}

// NewSQLStore opens the shared leaderboard database and runs migrations.
func NewSQLStore(dsn string, opts ...SQLOption) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open leaderboard database: %w", err)
	}

	// WAL mode for concurrent readers alongside appends.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLStore{
		db:        db,
		capacity:  DefaultCapacity,
		opTimeout: defaultOpTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS leaderboard (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL CHECK (length(name) BETWEEN 1 AND 20),
			score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 9999),
			rank TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(score DESC, seq ASC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Append inserts one row, trims the surplus beyond capacity, and returns the
// materialized entry.
func (s *SQLStore) Append(ctx context.Context, draft model.Draft) (model.Entry, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	entry := model.Entry{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Score:     draft.Score,
		Rank:      draft.Rank,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError("append", "network")
		return model.Entry{}, wrapRemoteErr("begin append", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO leaderboard (id, name, score, rank, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.Score, string(entry.Rank), entry.CreatedAt,
	)
	if err != nil {
		metrics.RecordStoreError("append", errKind(err))
		return model.Entry{}, wrapRemoteErr("append entry", err)
	}

	// Retention trim: keep the ordered top capacity rows.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM leaderboard WHERE seq NOT IN (
			SELECT seq FROM leaderboard ORDER BY score DESC, seq ASC LIMIT ?
		)`,
		s.capacity,
	)
	if err != nil {
		metrics.RecordStoreError("append", errKind(err))
		return model.Entry{}, wrapRemoteErr("trim leaderboard", err)
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordStoreError("append", errKind(err))
		return model.Entry{}, wrapRemoteErr("commit append", err)
	}

	metrics.RecordStoreAppendLatency(float64(time.Since(start).Milliseconds()))
	return entry, nil
}

// List returns entries in the server's authoritative order. The caller's
// limit is capped server side to bound I/O cost.
func (s *SQLStore) List(ctx context.Context, limit int) ([]model.Entry, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if limit <= 0 || limit > serverListCap {
		limit = serverListCap
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, score, rank, created_at FROM leaderboard
		 ORDER BY score DESC, seq ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		metrics.RecordStoreError("list", errKind(err))
		return nil, wrapRemoteErr("list leaderboard", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		var rank string
		if err := rows.Scan(&e.ID, &e.Name, &e.Score, &rank, &e.CreatedAt); err != nil {
			metrics.RecordStoreError("list", errKind(err))
			return nil, wrapRemoteErr("scan entry", err)
		}
		e.Rank = tier.Label(rank)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError("list", errKind(err))
		return nil, wrapRemoteErr("iterate entries", err)
	}

	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return entries, nil
}

// CountAbove returns the number of rows scoring strictly above score.
func (s *SQLStore) CountAbove(ctx context.Context, score int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leaderboard WHERE score > ?`, score,
	).Scan(&count)
	if err != nil {
		metrics.RecordStoreError("count_above", errKind(err))
		return 0, wrapRemoteErr("count above", err)
	}
	return count, nil
}

// Count returns the number of stored entries, zero when unreachable.
func (s *SQLStore) Count(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leaderboard`).Scan(&count); err != nil {
		return 0
	}
	return count
}

// wrapRemoteErr maps driver failures onto the store error taxonomy:
// constraint violations are rejected writes, everything else (including
// timeouts) is a transient network failure.
func wrapRemoteErr(op string, err error) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrRejectedWrite, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}

func errKind(err error) string {
	if isConstraintViolation(err) {
		return "rejected_write"
	}
	return "network"
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint")
}
