// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
)

// PositionDependencies defines the interface for positional rank lookups.
type PositionDependencies interface {
	Position(ctx context.Context, score int) int
}

// PositionHandler handles position requests.
type PositionHandler struct {
	deps PositionDependencies
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(deps PositionDependencies) *PositionHandler {
	return &PositionHandler{deps: deps}
}

type positionResponse struct {
	Score    int `json:"score"`
	Position int `json:"position"`
}

// HandleGetPosition handles GET /v1/position?score=N requests.
// A position of -1 means the board could not be consulted.
func (h *PositionHandler) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_position"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	scoreStr := r.URL.Query().Get("score")
	score, err := strconv.Atoi(scoreStr)
	if err != nil || score < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	pos := h.deps.Position(r.Context(), score)
	writeJSON(w, http.StatusOK, positionResponse{Score: score, Position: pos})
}
