// Package types contains common read shapes shared across the application
package types

import "time"

// Entry is the catalog shape returned by entry listings.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Row represents a leaderboard row returned by ranking queries.
type Row struct {
	Rank     int                `json:"rank"`
	EntryID  string             `json:"entry_id"`
	Name     string             `json:"name"`
	Owner    string             `json:"owner"`
	Category string             `json:"category,omitempty"`
	Votes    int                `json:"votes"`
	Total    int                `json:"total"`
	Averages map[string]float64 `json:"averages"`
	Status   string             `json:"status"`
}

// Progress summarizes the calling judge's coverage of the catalog.
type Progress struct {
	All       int `json:"all"`
	Complete  int `json:"complete"`
	Remaining int `json:"remaining"`
}

// Judgment is the reconciled per-entry view for the current judge: draft
// fields where edited, persisted fields otherwise.
type Judgment struct {
	EntryID string         `json:"entry_id"`
	Scores  map[string]int `json:"scores"`
	Review  string         `json:"review"`
	Total   int            `json:"total"`
	Status  string         `json:"status"`
	Dirty   bool           `json:"dirty"`
}
