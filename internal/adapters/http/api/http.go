// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/punchlab/punchd/internal/app"
	"github.com/punchlab/punchd/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit records a pre-judged score on the leaderboard.
	Submit(ctx context.Context, name string, rawScore float64, rawRank string) (service.SubmitResult, error)

	// Punch runs a described punch through the judge and records the verdict.
	Punch(ctx context.Context, name, description string) (service.PunchResult, error)

	// Read operations expose leaderboard data.
	Leaderboard(ctx context.Context, n int) []Entry
	Position(ctx context.Context, score int) int
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = model.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	punchHandler       *PunchHandler
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	positionHandler    *PositionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		punchHandler:       NewPunchHandler(deps),
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		positionHandler:    NewPositionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/punch", MetricsMiddleware(s.punchHandler.HandlePostPunch, "punch"))
	mux.HandleFunc("/v1/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("/v1/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/v1/position", MetricsMiddleware(s.positionHandler.HandleGetPosition, "position"))
}

// scoreRequest mirrors the schema for POST /v1/scores.
type scoreRequest struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Rank  string  `json:"rank"`
}

func (s scoreRequest) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("missing name")
	}
	return nil
}

// punchRequest mirrors the schema for POST /v1/punch.
type punchRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (p punchRequest) validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(p.Description) == "":
		return errors.New("missing description")
	}
	return nil
}

// scoreResponse is the accepted-submission shape shared by scores and punch.
type scoreResponse struct {
	Entry    Entry   `json:"entry"`
	Position int     `json:"position"`
	Top      []Entry `json:"top"`
}

// punchResponse extends scoreResponse with the judge's commentary.
type punchResponse struct {
	scoreResponse
	Comment string `json:"comment"`
	Effect  string `json:"effect"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
