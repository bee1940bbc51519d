package smoketest

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// verifyDelay gives the server's watch pipeline time to fold the last
// submit into the aggregate before the leaderboard is checked.
const verifyDelay = 500 * time.Millisecond

// Run executes the full smoke test cycle against a running server.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	client := newClient(config.BaseURL, config.Timeout)
	if err := client.health(ctx); err != nil {
		return fmt.Errorf("server not reachable at %s: %w", config.BaseURL, err)
	}

	log.Printf("seeding %d entries with %d workers against %s", config.NumEntries, config.Workers, config.BaseURL)

	expected, err := seedAndScore(ctx, client, config, stats)
	if err != nil {
		return err
	}

	if err := client.castVote(ctx, "smoke", ballotCategory); err != nil {
		return fmt.Errorf("cast ballot: %w", err)
	}

	// Watch delivery is asynchronous; give the rebuild a moment.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(verifyDelay):
	}

	if err := verifyLeaderboard(ctx, client, expected, stats); err != nil {
		return err
	}
	if err := verifyTally(ctx, client, stats); err != nil {
		return err
	}

	stats.EndTime = time.Now()
	report(stats)
	if stats.VerifyFailures > 0 || stats.SubmitsFailed > 0 {
		return fmt.Errorf("smoke test found %d verify failures, %d failed submits",
			stats.VerifyFailures, stats.SubmitsFailed)
	}
	return nil
}

// seedAndScore creates entries and submits a full judgment for each,
// returning expected totals keyed by entry id.
func seedAndScore(ctx context.Context, client *client, config *Config, stats *Stats) (map[string]int, error) {
	var mu sync.Mutex
	expected := make(map[string]int, config.NumEntries)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for i := 0; i < config.NumEntries; i++ {
		i := i
		g.Go(func() error {
			name := fmt.Sprintf("smoke-entry-%04d", i)
			created, err := client.createEntry(gctx, name, "smoke")
			if err != nil {
				return fmt.Errorf("create %s: %w", name, err)
			}

			scores := make(map[string]int, len(rubric))
			total := 0
			for _, c := range rubric {
				v := rand.Intn(c.Max + 1)
				scores[c.ID] = v
				total += v
			}

			if err := client.putDraft(gctx, created.ID, scores); err != nil {
				return fmt.Errorf("draft %s: %w", name, err)
			}
			view, err := client.submit(gctx, created.ID)
			if err != nil {
				mu.Lock()
				stats.SubmitsFailed++
				mu.Unlock()
				return fmt.Errorf("submit %s: %w", name, err)
			}
			if view.Total != total {
				return fmt.Errorf("submit %s: total %d, sent %d", name, view.Total, total)
			}

			mu.Lock()
			stats.EntriesCreated++
			stats.SubmitsOK++
			expected[created.ID] = total
			mu.Unlock()

			if config.Verbose {
				log.Printf("scored %s total=%d", name, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return expected, nil
}

func report(stats *Stats) {
	log.Printf("smoke test done in %s: entries=%d submits=%d rows=%d verify_failures=%d",
		stats.Duration().Round(time.Millisecond),
		stats.EntriesCreated, stats.SubmitsOK, stats.RowsVerified, stats.VerifyFailures)
}
