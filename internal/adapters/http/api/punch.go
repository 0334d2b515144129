// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/punchlab/punchd/internal/app"
)

// PunchDependencies defines the interface for judged punches.
type PunchDependencies interface {
	Punch(ctx context.Context, name, description string) (service.PunchResult, error)
}

// PunchHandler handles punch requests.
type PunchHandler struct {
	deps PunchDependencies
}

// NewPunchHandler creates a new punch handler.
func NewPunchHandler(deps PunchDependencies) *PunchHandler {
	return &PunchHandler{deps: deps}
}

// HandlePostPunch handles POST /v1/punch requests.
func (h *PunchHandler) HandlePostPunch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_punch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req punchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	result, err := h.deps.Punch(r.Context(), req.Name, req.Description)
	if err != nil {
		writeSubmitError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, punchResponse{
		scoreResponse: scoreResponse{
			Entry:    result.Entry,
			Position: result.Position,
			Top:      result.Top,
		},
		Comment: result.Comment,
		Effect:  result.Effect,
	})
}
