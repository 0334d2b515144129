package loadgen

import (
	"time"

	"github.com/punchlab/punchd/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL        string        // Base URL of the service
	NumSubmissions int           // Number of submissions to generate
	PunchShare     float64       // Fraction routed through the judge endpoint
	TopN           int           // Number of top entries to fetch
	Workers        int           // Number of dispatch workers
	QueueSize      int           // Dispatch queue buffer size
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Output file for generated submissions
	LogFile        string        // Log file for run output
	Verbose        bool          // Enable verbose logging
}

// Submission is the generated payload dispatched against the service.
type Submission = model.Submission

// Entry is the read shape returned by leaderboard queries.
type Entry = model.Entry

// scoreResponse mirrors the accepted-submission response shape.
type scoreResponse struct {
	Entry    Entry `json:"entry"`
	Position int   `json:"position"`
}

// positionResponse mirrors GET /v1/position.
type positionResponse struct {
	Score    int `json:"score"`
	Position int `json:"position"`
}

// Stats holds load run statistics.
type Stats struct {
	SubmissionsGenerated int
	SubmissionsSent      int
	SubmissionsAccepted  int
	SubmissionsFailed    int
	PositionsRetrieved   int
	LeaderboardEntries   int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
