// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/jury/internal/adapters/judgment"
	service "github.com/okian/jury/internal/app"
	"github.com/okian/jury/internal/domain/criteria"
	"github.com/okian/jury/internal/domain/model"
	"github.com/okian/jury/internal/domain/rank"
	"github.com/okian/jury/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EntryDependencies
	JudgmentDependencies
	LeaderboardDependencies
	VoteDependencies
	AdminDependencies
}

// EntryDependencies covers the entry catalog operations.
type EntryDependencies interface {
	Entries(ctx context.Context) ([]types.Entry, error)
	CreateEntry(ctx context.Context, name, owner, category string) (types.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// JudgmentDependencies covers the draft and submit operations for the
// calling judge.
type JudgmentDependencies interface {
	SetScore(ctx context.Context, entryID, criterionID string, value int) error
	ClearScore(ctx context.Context, entryID, criterionID string) error
	SetReview(ctx context.Context, entryID, text string) error
	Discard(ctx context.Context, entryID string) error
	Display(ctx context.Context, entryID string) (types.Judgment, error)
	Submit(ctx context.Context, entryID string) error
	Retract(ctx context.Context, entryID string) error
	Counts(ctx context.Context) (types.Progress, error)
	Criteria() criteria.List
}

// LeaderboardDependencies covers the ranked read side.
type LeaderboardDependencies interface {
	Rankings(ctx context.Context, q rank.Query) ([]types.Row, error)
	ExportCSV(ctx context.Context, w io.Writer, q rank.Query) error
}

// VoteDependencies covers the popular vote operations.
type VoteDependencies interface {
	CastVote(ctx context.Context, voterName, category string) error
	RetractVote(ctx context.Context) error
	MyVote(ctx context.Context) (*model.VoteRecord, error)
	VoteTally(ctx context.Context) (map[string]int, error)
	Categories() []string
}

// AdminDependencies covers the destructive event controls.
type AdminDependencies interface {
	Reset(ctx context.Context) (judgment.ResetSummary, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	entriesHandler     *EntriesHandler
	judgmentsHandler   *JudgmentsHandler
	leaderboardHandler *LeaderboardHandler
	votesHandler       *VotesHandler
	adminHandler       *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		entriesHandler:     NewEntriesHandler(deps),
		judgmentsHandler:   NewJudgmentsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		votesHandler:       NewVotesHandler(deps),
		adminHandler:       NewAdminHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. Business routes run behind the
// subject middleware so an upstream authenticator can pin the judge id.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	route := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return MetricsMiddleware(SubjectMiddleware(h), endpoint)
	}

	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/entries", route(s.entriesHandler.HandleEntries, "entries"))
	mux.HandleFunc("/entries/", route(s.entriesHandler.HandleEntryByID, "entry"))
	mux.HandleFunc("/judgments", route(s.judgmentsHandler.HandleProgress, "judgments_progress"))
	mux.HandleFunc("/judgments/", route(s.judgmentsHandler.HandleJudgment, "judgments"))
	mux.HandleFunc("/leaderboard", route(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/leaderboard.csv", route(s.leaderboardHandler.HandleGetLeaderboardCSV, "leaderboard_csv"))
	mux.HandleFunc("/votes", route(s.votesHandler.HandleVotes, "votes"))
	mux.HandleFunc("/votes/tally", route(s.votesHandler.HandleTally, "votes_tally"))
	mux.HandleFunc("/admin/reset", route(s.adminHandler.HandleReset, "admin_reset"))
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

// writeServiceError maps service sentinels to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownEntry):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrIncomplete):
		writeError(w, http.StatusConflict, "incomplete", Wrap(op, err))
	case errors.Is(err, service.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, "unknown_category", Wrap(op, err))
	case errors.Is(err, criteria.ErrUnknownCriterion):
		writeError(w, http.StatusBadRequest, "unknown_criterion", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
