package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/punchlab/punchd/internal/domain/model"
	"github.com/punchlab/punchd/pkg/metrics"
)

// DefaultFilePath is the well-known key of the local leaderboard blob.
const DefaultFilePath = "punchd_leaderboard.json"

// FileOption applies a configuration option to the FileStore.
type FileOption func(*FileStore)

// WithFileCapacity overrides the retention bound.
func WithFileCapacity(capacity int) FileOption {
	return func(s *FileStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// FileStore is the local ephemeral store: a single JSON blob private to one
// device, synchronous, with the full entry set decoded in process on every
// call. An empty path keeps the store memory-only, which also serves as the
// degraded mode after the medium fails.
type FileStore struct {
	mu       sync.Mutex
	path     string
	capacity int
	entries  []model.Entry
	degraded bool
	lastTS   time.Time
}

// NewFileStore creates a file store backed by the blob at path. A corrupt or
// missing blob yields an empty leaderboard. The returned error is non-fatal:
// it reports an unreadable medium while the store continues memory-only.
func NewFileStore(path string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		capacity: DefaultCapacity,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		s.degraded = true
		return s, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	// Corrupt blob is treated as an empty leaderboard, not a fatal error.
	var entries []model.Entry
	if err := json.Unmarshal(raw, &entries); err == nil {
		s.entries = entries
		s.sortLocked()
		if n := len(s.entries); n > 0 {
			s.lastTS = s.entries[0].CreatedAt
			for _, e := range s.entries[1:] {
				if e.CreatedAt.After(s.lastTS) {
					s.lastTS = e.CreatedAt
				}
			}
		}
	}
	return s, nil
}

// Append persists one entry and trims the surplus beyond capacity.
// When the medium cannot be written the entry stays visible in memory and
// ErrStorageUnavailable is returned so the caller can tell the save failed.
func (s *FileStore) Append(ctx context.Context, draft model.Draft) (model.Entry, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := model.Entry{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Score:     draft.Score,
		Rank:      draft.Rank,
		CreatedAt: s.nextTimestampLocked(),
	}

	s.entries = append(s.entries, entry)
	s.sortLocked()
	if len(s.entries) > s.capacity {
		s.entries = s.entries[:s.capacity]
		metrics.RecordTrim()
	}
	metrics.UpdateLeaderboardSize(len(s.entries))

	if err := s.persistLocked(); err != nil {
		metrics.RecordStoreError("append", "storage_unavailable")
		return entry, err
	}

	metrics.RecordStoreAppendLatency(float64(time.Since(start).Milliseconds()))
	return entry, nil
}

// List returns entries in canonical order, bounded by limit when positive.
func (s *FileStore) List(_ context.Context, limit int) ([]model.Entry, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Entry, n)
	copy(out, s.entries[:n])

	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

// CountAbove returns the number of entries scoring strictly above score.
func (s *FileStore) CountAbove(_ context.Context, score int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Entries are sorted by score descending; the first index at or below
	// the probe score is the count above it.
	return sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Score <= score
	}), nil
}

// Count returns the number of stored entries.
func (s *FileStore) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Degraded reports whether the store has fallen back to memory-only mode.
func (s *FileStore) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// sortLocked restores canonical order. The sort is stable so equal scores
// keep their insertion order.
func (s *FileStore) sortLocked() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Score > s.entries[j].Score
	})
}

// nextTimestampLocked returns a creation time that never decreases within
// this store instance, even if the wall clock steps backwards.
func (s *FileStore) nextTimestampLocked() time.Time {
	now := time.Now().UTC()
	if now.Before(s.lastTS) {
		now = s.lastTS
	}
	s.lastTS = now
	return now
}

// persistLocked writes the blob back to the medium. After the first failure
// the store stays memory-only for the rest of the session.
func (s *FileStore) persistLocked() error {
	if s.path == "" || s.degraded {
		if s.degraded {
			return fmt.Errorf("%w: medium disabled for this session", ErrStorageUnavailable)
		}
		return nil
	}

	raw, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode leaderboard blob: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		s.degraded = true
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
