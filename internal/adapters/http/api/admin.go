// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// resetConfirmPhrase must be echoed back before the sweep runs. Reset is
// destructive and shared: every session loses its scores and votes.
const resetConfirmPhrase = "RESET ALL SCORES"

// AdminHandler handles destructive event controls.
type AdminHandler struct {
	deps AdminDependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

// resetRequest mirrors the schema for POST /admin/reset.
type resetRequest struct {
	Confirm string `json:"confirm"`
}

// resetResponse reports the sweep outcome.
type resetResponse struct {
	JudgmentsDeleted int `json:"judgments_deleted"`
	VotesDeleted     int `json:"votes_deleted"`
	Failures         int `json:"failures"`
}

// HandleReset handles POST /admin/reset requests.
func (h *AdminHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_reset"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Confirm != resetConfirmPhrase {
		writeError(w, http.StatusBadRequest, "confirmation_required", NewKind(op, ErrBadRequest))
		return
	}

	sum, err := h.deps.Reset(r.Context())
	resp := resetResponse{
		JudgmentsDeleted: sum.JudgmentsDeleted,
		VotesDeleted:     sum.VotesDeleted,
		Failures:         sum.Failures,
	}
	if err != nil {
		// Partial sweeps report what was removed; a retry finishes the rest.
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
