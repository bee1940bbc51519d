// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// JudgmentsHandler handles the calling judge's draft and submit requests.
type JudgmentsHandler struct {
	deps JudgmentDependencies
}

// NewJudgmentsHandler creates a new judgments handler.
func NewJudgmentsHandler(deps JudgmentDependencies) *JudgmentsHandler {
	return &JudgmentsHandler{deps: deps}
}

// draftRequest mirrors the schema for PUT /judgments/{entry_id}. Scores are
// strict integers: a non-numeric value fails decoding and is rejected here,
// never coerced to zero. Clear lists criteria to return to unset, which is
// different from scoring them zero.
type draftRequest struct {
	Scores map[string]int `json:"scores"`
	Clear  []string       `json:"clear"`
	Review *string        `json:"review"`
}

// HandleProgress handles GET /judgments requests with the caller's
// coverage counts.
func (h *JudgmentsHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	progress, err := h.deps.Counts(r.Context())
	if err != nil {
		writeServiceError(w, "api.judgments_progress", err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// HandleJudgment routes /judgments/{entry_id} and its sub-actions.
func (h *JudgmentsHandler) HandleJudgment(w http.ResponseWriter, r *http.Request) {
	const op = "api.judgments"
	rest := strings.TrimPrefix(r.URL.Path, "/judgments/")
	entryID, action, _ := strings.Cut(rest, "/")
	if entryID == "" || strings.Contains(action, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.display(w, r, entryID)
	case action == "" && r.Method == http.MethodPut:
		h.updateDraft(w, r, entryID)
	case action == "" && r.Method == http.MethodDelete:
		h.retract(w, r, entryID)
	case action == "submit" && r.Method == http.MethodPost:
		h.submit(w, r, entryID)
	case action == "discard" && r.Method == http.MethodPost:
		h.discard(w, r, entryID)
	default:
		http.NotFound(w, r)
	}
}

func (h *JudgmentsHandler) display(w http.ResponseWriter, r *http.Request, entryID string) {
	view, err := h.deps.Display(r.Context(), entryID)
	if err != nil {
		writeServiceError(w, "api.get_judgment", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *JudgmentsHandler) updateDraft(w http.ResponseWriter, r *http.Request, entryID string) {
	const op = "api.put_judgment"
	var req draftRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	list := h.deps.Criteria()
	for id := range req.Scores {
		if _, ok := list.Lookup(id); !ok {
			writeError(w, http.StatusBadRequest, "unknown_criterion", NewKind(op, ErrBadRequest))
			return
		}
	}

	// Apply clears first so a key in both lists ends up set.
	for _, id := range req.Clear {
		if err := h.deps.ClearScore(r.Context(), entryID, id); err != nil {
			writeServiceError(w, op, err)
			return
		}
	}
	for _, id := range list.IDs() {
		value, ok := req.Scores[id]
		if !ok {
			continue
		}
		if err := h.deps.SetScore(r.Context(), entryID, id, value); err != nil {
			writeServiceError(w, op, err)
			return
		}
	}
	if req.Review != nil {
		if err := h.deps.SetReview(r.Context(), entryID, *req.Review); err != nil {
			writeServiceError(w, op, err)
			return
		}
	}

	view, err := h.deps.Display(r.Context(), entryID)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *JudgmentsHandler) submit(w http.ResponseWriter, r *http.Request, entryID string) {
	if err := h.deps.Submit(r.Context(), entryID); err != nil {
		writeServiceError(w, "api.submit_judgment", err)
		return
	}
	view, err := h.deps.Display(r.Context(), entryID)
	if err != nil {
		writeServiceError(w, "api.submit_judgment", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *JudgmentsHandler) discard(w http.ResponseWriter, r *http.Request, entryID string) {
	if err := h.deps.Discard(r.Context(), entryID); err != nil {
		writeServiceError(w, "api.discard_judgment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JudgmentsHandler) retract(w http.ResponseWriter, r *http.Request, entryID string) {
	if err := h.deps.Retract(r.Context(), entryID); err != nil {
		writeServiceError(w, "api.retract_judgment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
