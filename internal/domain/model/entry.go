// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/punchlab/punchd/internal/domain/tier"
)

// Entry is one persisted leaderboard record. Entries are immutable once a
// store has materialized them; there is no update path, only append and read.
type Entry struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Score     int        `json:"score"`
	Rank      tier.Label `json:"rank"`
	CreatedAt time.Time  `json:"created_at"`
}

// Draft is the pre-insert shape of an entry. The store assigns ID and
// CreatedAt when the draft is appended.
type Draft struct {
	Name  string
	Score int
	Rank  tier.Label
}

// Submission is a gameplay action before the gateway has classified it.
// A non-empty Description means the punch still needs judging; otherwise
// Score and Rank go straight to classification.
type Submission struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score,omitempty"`
	Rank        string  `json:"rank,omitempty"`
	Description string  `json:"description,omitempty"`
}
