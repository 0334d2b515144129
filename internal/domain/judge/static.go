package judge

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Default static judge configuration constants.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultRandomSeed = 42
	lengthScoreWeight = 35
	lengthScoreCap    = 2800
)

// keywordScores rewards scale words the way the remote model's instruction
// set does, so local development roughly matches production scoring.
var keywordScores = map[string]int{
	"rock":      900,
	"bone":      1100,
	"building":  3200,
	"mountain":  3800,
	"sonic":     3500,
	"missile":   4200,
	"continent": 5600,
	"planet":    6200,
	"core":      6000,
	"sun":       6800,
	"galaxy":    7400,
	"time":      8000,
	"causality": 8600,
	"universe":  8200,
	"big bang":  9000,
}

// StaticOption applies a configuration option to the StaticJudge.
type StaticOption func(*StaticJudge)

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) StaticOption {
	return func(j *StaticJudge) {
		if minLatency > 0 && maxLatency > minLatency {
			j.minLatency = minLatency
			j.maxLatency = maxLatency
		}
	}
}

// StaticJudge implements Judge with a deterministic local heuristic. It
// stands in for the remote model during development and tests, simulating
// the collaborator's latency.
type StaticJudge struct {
	minLatency time.Duration
	maxLatency time.Duration
	rng        *rand.Rand
}

// NewStaticJudge creates a new static judge with configuration options.
func NewStaticJudge(opts ...StaticOption) *StaticJudge {
	j := &StaticJudge{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible testing
	}

	// Apply all options
	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Judge scores the description from its length and scale keywords.
func (j *StaticJudge) Judge(ctx context.Context, description string) (Verdict, error) {
	// Simulate remote model latency
	latency := j.minLatency + time.Duration(j.rng.Int63n(int64(j.maxLatency-j.minLatency)))
	select {
	case <-ctx.Done():
		return Verdict{}, fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
	}

	lower := strings.ToLower(description)

	score := len([]rune(strings.TrimSpace(description))) * lengthScoreWeight
	if score > lengthScoreCap {
		score = lengthScoreCap
	}
	for keyword, bonus := range keywordScores {
		if strings.Contains(lower, keyword) {
			score += bonus
		}
	}
	if score > 9999 {
		score = 9999
	}

	return Verdict{
		Score:   float64(score),
		Rank:    "", // derived downstream from the score bands
		Comment: commentFor(score),
		Effect:  effectFor(score),
	}, nil
}

func commentFor(score int) string {
	switch {
	case score <= 3000:
		return "Is that all? My grandmother hits harder."
	case score <= 6000:
		return "Not bad. Something actually broke this time."
	case score <= 8500:
		return "Warning: structural damage detected."
	case score <= 9500:
		return "...what are you?"
	default:
		return "SYSTEM ERROR. PHYSICS VIOLATION RECORDED."
	}
}

func effectFor(score int) string {
	switch {
	case score <= 3000:
		return "wind"
	case score <= 6000:
		return "impact"
	case score <= 9500:
		return "explosion"
	default:
		return "cosmic_horror"
	}
}
