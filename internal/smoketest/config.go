// Package smoketest drives a running server through a full event cycle:
// seed entries, score and submit them, cast a ballot, then verify the
// leaderboard and tally against what was sent.
package smoketest

import "time"

// Config holds smoke test run parameters.
type Config struct {
	BaseURL    string
	NumEntries int
	Workers    int
	Timeout    time.Duration
	LogFile    string
	Verbose    bool
}

// Stats tracks run results for reporting.
type Stats struct {
	EntriesCreated   int
	SubmitsOK        int
	SubmitsFailed    int
	RowsVerified     int
	VerifyFailures   int
	StartTime        time.Time
	EndTime          time.Time
	LeaderboardTotal int
}

// Duration returns the elapsed run time.
func (s *Stats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
