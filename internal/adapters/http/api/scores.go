// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/punchlab/punchd/internal/adapters/repository"
	service "github.com/punchlab/punchd/internal/app"
	"github.com/punchlab/punchd/internal/domain/tier"
)

// ScoresDependencies defines the interface for score submissions.
type ScoresDependencies interface {
	Submit(ctx context.Context, name string, rawScore float64, rawRank string) (service.SubmitResult, error)
}

// ScoresHandler handles direct score submissions.
type ScoresHandler struct {
	deps ScoresDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoresDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandlePostScore handles POST /v1/scores requests.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	result, err := h.deps.Submit(r.Context(), req.Name, req.Score, req.Rank)
	if err != nil {
		writeSubmitError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, scoreResponse{
		Entry:    result.Entry,
		Position: result.Position,
		Top:      result.Top,
	})
}

// writeSubmitError maps submission failures onto HTTP statuses. Storage
// failures keep their distinct statuses so clients can tell a rejected
// write from an unreachable medium.
func writeSubmitError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidName), errors.Is(err, tier.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrRejectedWrite):
		writeError(w, http.StatusUnprocessableEntity, "rejected_write", Wrap(op, err))
	case errors.Is(err, repository.ErrNetwork):
		writeError(w, http.StatusBadGateway, "network_error", Wrap(op, err))
	case errors.Is(err, repository.ErrStorageUnavailable):
		writeError(w, http.StatusInsufficientStorage, "storage_unavailable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
