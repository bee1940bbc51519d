// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// EntriesHandler handles entry catalog requests.
type EntriesHandler struct {
	deps EntryDependencies
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps EntryDependencies) *EntriesHandler {
	return &EntriesHandler{deps: deps}
}

// entryRequest mirrors the schema for POST /entries.
type entryRequest struct {
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	Category string `json:"category"`
}

// HandleEntries handles GET /entries and POST /entries requests.
func (h *EntriesHandler) HandleEntries(w http.ResponseWriter, r *http.Request) {
	const op = "api.entries"
	switch r.Method {
	case http.MethodGet:
		entries, err := h.deps.Entries(r.Context())
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	case http.MethodPost:
		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		created, err := h.deps.CreateEntry(r.Context(), req.Name, req.Owner, req.Category)
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		http.NotFound(w, r)
	}
}

// HandleEntryByID handles DELETE /entries/{id} requests.
func (h *EntriesHandler) HandleEntryByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.entry"
	id := strings.TrimPrefix(r.URL.Path, "/entries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.DeleteEntry(r.Context(), id); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
