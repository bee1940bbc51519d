// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/okian/jury/internal/domain/rank"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// parseQuery reads ?sort, ?filter, ?q and ?limit into a rank query.
func (h *LeaderboardHandler) parseQuery(r *http.Request) (rank.Query, error) {
	q := rank.Query{
		Sort:   rank.ByScore,
		Filter: rank.FilterAll,
		Search: r.URL.Query().Get("q"),
	}

	switch sort := r.URL.Query().Get("sort"); sort {
	case "", string(rank.ByScore):
	case string(rank.ByVotes):
		q.Sort = rank.ByVotes
	case string(rank.ByName):
		q.Sort = rank.ByName
	default:
		return q, NewKind("api.leaderboard", ErrBadRequest)
	}

	switch filter := r.URL.Query().Get("filter"); filter {
	case "", string(rank.FilterAll):
	case string(rank.FilterMine):
		q.Filter = rank.FilterMine
	case string(rank.FilterNotMine):
		q.Filter = rank.FilterNotMine
	default:
		return q, NewKind("api.leaderboard", ErrBadRequest)
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			return q, NewKind("api.leaderboard", ErrBadRequest)
		}
		if n > h.maxLimit {
			return q, NewKind("api.leaderboard", ErrBadRequest)
		}
		q.Limit = n
	}
	return q, nil
}

// HandleGetLeaderboard handles GET /leaderboard requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, err := h.deps.Rankings(r.Context(), q)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGetLeaderboardCSV handles GET /leaderboard.csv requests.
func (h *LeaderboardHandler) HandleGetLeaderboardCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard_csv"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.csv"`)
	if err := h.deps.ExportCSV(r.Context(), w, q); err != nil {
		// Headers are out; the truncated body is the best signal left.
		return
	}
}
