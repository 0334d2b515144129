// Package judge defines the contract for scoring punch descriptions with an
// external generative model.
package judge

import "context"

// Verdict is the raw tuple returned by the scoring collaborator. Score and
// Rank are untrusted and must pass through tier.Classify before persistence.
type Verdict struct {
	Score   float64 `json:"score"`
	Rank    string  `json:"rank"`
	Comment string  `json:"comment"`
	Effect  string  `json:"effect"`
}

// Judge scores a free-text punch description. Implementations may call a
// remote model service and must honor ctx for cancellation.
type Judge interface {
	Judge(ctx context.Context, description string) (Verdict, error)
}
