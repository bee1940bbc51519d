// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// VotesHandler handles popular vote requests.
type VotesHandler struct {
	deps VoteDependencies
}

// NewVotesHandler creates a new votes handler.
func NewVotesHandler(deps VoteDependencies) *VotesHandler {
	return &VotesHandler{deps: deps}
}

// voteRequest mirrors the schema for POST /votes.
type voteRequest struct {
	VoterName string `json:"voter_name"`
	Category  string `json:"category"`
}

// voteResponse is the caller's current ballot.
type voteResponse struct {
	Category  string `json:"category,omitempty"`
	VoterName string `json:"voter_name,omitempty"`
	Voted     bool   `json:"voted"`
}

// HandleVotes handles GET, POST and DELETE /votes requests.
func (h *VotesHandler) HandleVotes(w http.ResponseWriter, r *http.Request) {
	const op = "api.votes"
	switch r.Method {
	case http.MethodGet:
		vote, err := h.deps.MyVote(r.Context())
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		if vote == nil {
			writeJSON(w, http.StatusOK, voteResponse{Voted: false})
			return
		}
		writeJSON(w, http.StatusOK, voteResponse{
			Category:  vote.Category,
			VoterName: vote.VoterName,
			Voted:     true,
		})
	case http.MethodPost:
		var req voteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.CastVote(r.Context(), req.VoterName, req.Category); err != nil {
			writeServiceError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, voteResponse{
			Category:  req.Category,
			VoterName: req.VoterName,
			Voted:     true,
		})
	case http.MethodDelete:
		if err := h.deps.RetractVote(r.Context()); err != nil {
			writeServiceError(w, op, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

// tallyResponse is the per-category vote count plus the configured order.
type tallyResponse struct {
	Categories []string       `json:"categories"`
	Tally      map[string]int `json:"tally"`
}

// HandleTally handles GET /votes/tally requests.
func (h *VotesHandler) HandleTally(w http.ResponseWriter, r *http.Request) {
	const op = "api.votes_tally"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tally, err := h.deps.VoteTally(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, tallyResponse{
		Categories: h.deps.Categories(),
		Tally:      tally,
	})
}
