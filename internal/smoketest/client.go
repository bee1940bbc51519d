package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// client is a thin JSON wrapper over the server's HTTP API.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// entry mirrors the catalog shape returned by /entries.
type entry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	Category string `json:"category,omitempty"`
}

// judgment mirrors the reconciled view returned by /judgments/{id}.
type judgment struct {
	EntryID string         `json:"entry_id"`
	Scores  map[string]int `json:"scores"`
	Total   int            `json:"total"`
	Status  string         `json:"status"`
	Dirty   bool           `json:"dirty"`
}

// row mirrors a leaderboard row.
type row struct {
	Rank    int    `json:"rank"`
	EntryID string `json:"entry_id"`
	Name    string `json:"name"`
	Votes   int    `json:"votes"`
	Total   int    `json:"total"`
	Status  string `json:"status"`
}

// tally mirrors /votes/tally.
type tally struct {
	Categories []string       `json:"categories"`
	Tally      map[string]int `json:"tally"`
}

func (c *client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) createEntry(ctx context.Context, name, owner string) (entry, error) {
	var created entry
	status, err := c.do(ctx, http.MethodPost, "/entries", map[string]string{
		"name":  name,
		"owner": owner,
	}, &created)
	if err != nil {
		return entry{}, err
	}
	if status != http.StatusCreated {
		return entry{}, fmt.Errorf("create entry: unexpected status %d", status)
	}
	return created, nil
}

func (c *client) putDraft(ctx context.Context, entryID string, scores map[string]int) error {
	status, err := c.do(ctx, http.MethodPut, "/judgments/"+entryID, map[string]interface{}{
		"scores": scores,
	}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("put draft: unexpected status %d", status)
	}
	return nil
}

func (c *client) submit(ctx context.Context, entryID string) (judgment, error) {
	var view judgment
	status, err := c.do(ctx, http.MethodPost, "/judgments/"+entryID+"/submit", nil, &view)
	if err != nil {
		return judgment{}, err
	}
	if status != http.StatusOK {
		return judgment{}, fmt.Errorf("submit: unexpected status %d", status)
	}
	return view, nil
}

func (c *client) castVote(ctx context.Context, voterName, category string) error {
	status, err := c.do(ctx, http.MethodPost, "/votes", map[string]string{
		"voter_name": voterName,
		"category":   category,
	}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("cast vote: unexpected status %d", status)
	}
	return nil
}

func (c *client) leaderboard(ctx context.Context) ([]row, error) {
	var rows []row
	status, err := c.do(ctx, http.MethodGet, "/leaderboard", nil, &rows)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("leaderboard: unexpected status %d", status)
	}
	return rows, nil
}

func (c *client) voteTally(ctx context.Context) (tally, error) {
	var t tally
	status, err := c.do(ctx, http.MethodGet, "/votes/tally", nil, &t)
	if err != nil {
		return tally{}, err
	}
	if status != http.StatusOK {
		return tally{}, fmt.Errorf("tally: unexpected status %d", status)
	}
	return t, nil
}

func (c *client) health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("healthz: unexpected status %d", status)
	}
	return nil
}
