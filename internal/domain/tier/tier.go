// Package tier normalizes raw judge output into a canonical score and tier label.
package tier

import (
	"math"
	"strings"
)

// Score bounds for the destructive-power scale.
const (
	MinScore = 0
	MaxScore = 9999
)

// Label is a canonical tier label.
type Label string

// Canonical tier labels. KO is reserved for the perfect/override case
// surfaced by presentation layers; classification never derives it.
const (
	C   Label = "C"
	B   Label = "B"
	A   Label = "A"
	S   Label = "S"
	SSS Label = "SSS"
	KO  Label = "KO"
)

// Fixed score bands used when the upstream rank label is untrustworthy.
// Upper bounds are inclusive.
const (
	bandCMax = 3000
	bandBMax = 6000
	bandAMax = 8500
	bandSMax = 9500
)

// Result is a validated score/rank pair safe to persist.
type Result struct {
	Score int
	Rank  Label
}

// IsCanonical reports whether s is one of the canonical tier labels.
func IsCanonical(s string) bool {
	switch Label(s) {
	case C, B, A, S, SSS, KO:
		return true
	default:
		return false
	}
}

// FromScore derives the tier label for a score within [MinScore, MaxScore].
func FromScore(score int) Label {
	switch {
	case score <= bandCMax:
		return C
	case score <= bandBMax:
		return B
	case score <= bandAMax:
		return A
	case score <= bandSMax:
		return S
	default:
		return SSS
	}
}

// Classify validates and normalizes a raw score/rank pair produced by the
// judge. Out-of-range scores are clamped rather than rejected; a rank label
// that is not canonical is derived from the clamped score so that rank and
// score can never contradict each other. Fails only when rawScore is not a
// representable number.
func Classify(rawScore float64, rawRank string) (Result, error) {
	if math.IsNaN(rawScore) || math.IsInf(rawScore, 0) {
		return Result{}, ErrInvalidScore
	}

	score := int(math.Round(rawScore))
	if score < MinScore {
		score = MinScore
	}
	if score > MaxScore {
		score = MaxScore
	}

	rank := Label(strings.ToUpper(strings.TrimSpace(rawRank)))
	if !IsCanonical(string(rank)) {
		rank = FromScore(score)
	}

	return Result{Score: score, Rank: rank}, nil
}
