package smoketest

import (
	"context"
	"fmt"
	"log"
)

// verifyLeaderboard checks ranking invariants and that every submitted
// total survived the round trip through the aggregate.
func verifyLeaderboard(ctx context.Context, client *client, expected map[string]int, stats *Stats) error {
	rows, err := client.leaderboard(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(rows))
	prevTotal := -1
	for i, r := range rows {
		stats.RowsVerified++

		if r.Rank != i+1 {
			stats.VerifyFailures++
			log.Printf("verify: row %d has rank %d", i, r.Rank)
		}
		if prevTotal >= 0 && r.Total > prevTotal {
			stats.VerifyFailures++
			log.Printf("verify: row %d total %d exceeds previous %d", i, r.Total, prevTotal)
		}
		prevTotal = r.Total

		want, ok := expected[r.EntryID]
		if !ok {
			// Entries from earlier runs may still be present.
			continue
		}
		seen[r.EntryID] = true
		if r.Total != want {
			stats.VerifyFailures++
			log.Printf("verify: %s total %d, submitted %d", r.Name, r.Total, want)
		}
		if r.Votes < 1 {
			stats.VerifyFailures++
			log.Printf("verify: %s has no judgments after submit", r.Name)
		}
		if r.Status != "complete" {
			stats.VerifyFailures++
			log.Printf("verify: %s status %q after submit", r.Name, r.Status)
		}
	}

	if len(seen) != len(expected) {
		stats.VerifyFailures++
		return fmt.Errorf("leaderboard shows %d of %d submitted entries", len(seen), len(expected))
	}
	stats.LeaderboardTotal = len(rows)
	return nil
}

// verifyTally checks that the cast ballot shows up in the category tally.
func verifyTally(ctx context.Context, client *client, stats *Stats) error {
	t, err := client.voteTally(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, c := range t.Categories {
		if c == ballotCategory {
			found = true
		}
		if _, ok := t.Tally[c]; !ok {
			stats.VerifyFailures++
			log.Printf("verify: category %q missing from tally", c)
		}
	}
	if !found {
		stats.VerifyFailures++
		return fmt.Errorf("category %q not configured on server", ballotCategory)
	}
	if t.Tally[ballotCategory] < 1 {
		stats.VerifyFailures++
		log.Printf("verify: tally for %q is %d after casting", ballotCategory, t.Tally[ballotCategory])
	}
	return nil
}
