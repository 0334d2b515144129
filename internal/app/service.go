// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/punchlab/punchd/internal/adapters/repository"
	"github.com/punchlab/punchd/internal/domain/judge"
	"github.com/punchlab/punchd/internal/domain/model"
	"github.com/punchlab/punchd/internal/domain/ranking"
	"github.com/punchlab/punchd/internal/domain/tier"
	"github.com/punchlab/punchd/pkg/logger"
	"github.com/punchlab/punchd/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultTopN      = 10
	defaultNameLimit = 20
)

// fallbackComment accompanies the zero-score verdict returned when the
// judge cannot be reached. The player still gets a result screen.
const fallbackComment = "The judge blacked out. That punch never happened."

// Service wires the submission pipeline: classify, append, rank.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	rank      *ranking.Engine
	judge     judge.Judge
	topN      int
	nameLimit int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore selects the leaderboard store. The store is chosen once at
// composition time; the pipeline never switches backends at runtime.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithJudge sets the scoring collaborator.
func WithJudge(j judge.Judge) Option {
	return func(s *Service) {
		if j != nil {
			s.judge = j
		}
	}
}

// WithTopN sets how many entries a submission response carries.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithNameLimit sets the display-name length bound in runes.
func WithNameLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.nameLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		topN:      defaultTopN,
		nameLimit: defaultNameLimit,
		logger:    nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components that were not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting punch leaderboard service...")

	if s.store == nil {
		store, err := repository.NewFileStore("")
		if err != nil {
			return err
		}
		s.store = store
		s.logger.Info(ctx, "using in-memory file store")
	}
	if s.judge == nil {
		s.judge = judge.NewStaticJudge()
		s.logger.Info(ctx, "using static judge")
	}
	s.rank = ranking.New(s.store, ranking.WithLogger(s.logger))

	s.started = true
	s.logger.Info(ctx, "punch leaderboard service started",
		logger.Int("topN", s.topN),
		logger.Int("nameLimit", s.nameLimit),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping punch leaderboard service...")

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "punch leaderboard service stopped")
}

// SubmitResult is the updated view returned after a successful submission.
type SubmitResult struct {
	Entry    model.Entry   `json:"entry"`
	Position int           `json:"position"`
	Top      []model.Entry `json:"top"`
}

// PunchResult pairs a submission with the judge's reaction.
type PunchResult struct {
	SubmitResult
	Comment string `json:"comment"`
	Effect  string `json:"effect"`
}

// Submit is the only write path into the leaderboard: validate the name,
// normalize the raw score/rank pair, append, and return the updated view.
// Append failures propagate unchanged; a failed save must stay visibly
// distinguishable from a successful one.
func (s *Service) Submit(ctx context.Context, name string, rawScore float64, rawRank string) (SubmitResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SubmitResult{}, ErrInvalidName
	}
	if runes := []rune(name); len(runes) > s.nameLimit {
		name = string(runes[:s.nameLimit])
	}

	classified, err := tier.Classify(rawScore, rawRank)
	if err != nil {
		return SubmitResult{}, err
	}

	entry, err := s.store.Append(ctx, model.Draft{
		Name:  name,
		Score: classified.Score,
		Rank:  classified.Rank,
	})
	if err != nil {
		s.logger.Error(ctx, "leaderboard append failed",
			logger.String("name", name),
			logger.Int("score", classified.Score),
			logger.Error(err),
		)
		return SubmitResult{}, err
	}

	metrics.RecordSubmission()
	metrics.RecordTier(string(entry.Rank))
	s.logger.Debug(ctx, "entry appended",
		logger.String("id", entry.ID),
		logger.String("name", entry.Name),
		logger.Int("score", entry.Score),
		logger.String("rank", string(entry.Rank)),
	)

	return SubmitResult{
		Entry:    entry,
		Position: s.rank.PositionOf(ctx, entry.Score),
		Top:      s.rank.TopN(ctx, s.topN),
	}, nil
}

// Punch scores a free-text description with the judge and submits the
// verdict. A judge failure degrades to a zero-score verdict instead of
// blocking the player; only the append can fail the call.
func (s *Service) Punch(ctx context.Context, name, description string) (PunchResult, error) {
	metrics.RecordPunch()

	start := time.Now()
	verdict, err := s.judge.Judge(ctx, description)
	metrics.RecordJudgeLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordJudgeError()
		metrics.RecordJudgeFallback()
		s.logger.Warn(ctx, "judge unavailable, falling back to zero verdict", logger.Error(err))
		verdict = judge.Verdict{
			Score:   0,
			Rank:    string(tier.C),
			Comment: fallbackComment,
			Effect:  "none",
		}
	}

	result, err := s.Submit(ctx, name, verdict.Score, verdict.Rank)
	if err != nil {
		return PunchResult{}, err
	}

	return PunchResult{
		SubmitResult: result,
		Comment:      verdict.Comment,
		Effect:       verdict.Effect,
	}, nil
}

// Leaderboard returns up to n entries in canonical order, best effort.
func (s *Service) Leaderboard(ctx context.Context, n int) []model.Entry {
	return s.rank.TopN(ctx, n)
}

// Position returns the positional rank a score would hold, best effort.
func (s *Service) Position(ctx context.Context, score int) int {
	return s.rank.PositionOf(ctx, score)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":   s.started,
		"topN":      s.topN,
		"nameLimit": s.nameLimit,
	}

	if s.started {
		total := s.store.Count(ctx)
		stats["totalEntries"] = total
		metrics.UpdateLeaderboardSize(total)
	}

	return stats
}
