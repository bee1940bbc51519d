package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/jury/internal/adapters/http/api"
	"github.com/okian/jury/internal/adapters/identity"
	"github.com/okian/jury/internal/adapters/store"
	service "github.com/okian/jury/internal/app"
	"github.com/okian/jury/internal/domain/types"
	"github.com/okian/jury/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// newTestServer wires a real service over a memory store behind the mux.
func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()

	svc := service.New(
		service.WithStore(store.NewMemStore()),
		service.WithIdentity(identity.Static("judge-test")),
		service.WithMaxLimit(50),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc, 50).Register(context.Background(), mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, svc
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

// createEntry posts an entry and waits until the catalog shows it.
func createEntry(t *testing.T, ts *httptest.Server, name, owner string) types.Entry {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/entries",
		fmt.Sprintf(`{"name":%q,"owner":%q}`, name, owner))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create entry: status %d: %s", resp.StatusCode, body)
	}
	var entry types.Entry
	if err := json.Unmarshal(body, &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	waitFor(t, func() bool {
		resp, body := doJSON(t, http.MethodGet, ts.URL+"/entries", "")
		return resp.StatusCode == http.StatusOK && strings.Contains(string(body), entry.ID)
	})
	return entry
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatal("condition not met before deadline")
	}
}

func TestEntryEndpoints(t *testing.T) {
	Convey("Given the entries endpoint", t, func() {
		ts, _ := newTestServer(t)
		Convey("When posting a valid entry", func() {
			entry := createEntry(t, ts, "Alpha", "Team A")

			Convey("Then the entry is listed", func() {
				So(entry.ID, ShouldNotBeEmpty)

				resp, body := doJSON(t, http.MethodGet, ts.URL+"/entries", "")
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entries []types.Entry
				So(json.Unmarshal(body, &entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Name, ShouldEqual, "Alpha")
			})

			Convey("And deleting it empties the catalog", func() {
				resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/entries/"+entry.ID, "")
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

				waitFor(t, func() bool {
					_, body := doJSON(t, http.MethodGet, ts.URL+"/entries", "")
					return strings.TrimSpace(string(body)) == "[]"
				})
			})
		})

		Convey("When posting an entry without a name", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/entries", `{"owner":"Team A"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting malformed JSON", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/entries", `{"name":`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestJudgmentEndpoints(t *testing.T) {
	Convey("Given an entry to judge", t, func() {
		ts, _ := newTestServer(t)
		entry := createEntry(t, ts, "Beta", "Team B")
		base := ts.URL + "/judgments/" + entry.ID

		Convey("When updating the draft", func() {
			resp, body := doJSON(t, http.MethodPut, base,
				`{"scores":{"innovation":15,"technical":40},"review":"nice"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var view types.Judgment
			So(json.Unmarshal(body, &view), ShouldBeNil)

			Convey("Then scores are clamped and the view is dirty", func() {
				So(view.Scores["innovation"], ShouldEqual, 15)
				So(view.Scores["technical"], ShouldEqual, 30)
				So(view.Review, ShouldEqual, "nice")
				So(view.Dirty, ShouldBeTrue)
				So(view.Status, ShouldEqual, "partial")
			})

			Convey("And clearing a field returns it to unset", func() {
				resp, body := doJSON(t, http.MethodPut, base, `{"clear":["technical"]}`)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var view types.Judgment
				So(json.Unmarshal(body, &view), ShouldBeNil)
				So(view.Scores, ShouldNotContainKey, "technical")
			})

			Convey("And submitting while incomplete is a conflict", func() {
				resp, _ := doJSON(t, http.MethodPost, base+"/submit", "")
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When sending a non-numeric score", func() {
			resp, _ := doJSON(t, http.MethodPut, base, `{"scores":{"innovation":"twelve"}}`)

			Convey("Then it is rejected, never coerced to zero", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

				r, body := doJSON(t, http.MethodGet, base, "")
				So(r.StatusCode, ShouldEqual, http.StatusOK)
				var view types.Judgment
				So(json.Unmarshal(body, &view), ShouldBeNil)
				So(view.Scores, ShouldNotContainKey, "innovation")
			})
		})

		Convey("When scoring an unknown criterion", func() {
			resp, _ := doJSON(t, http.MethodPut, base, `{"scores":{"velocity":5}}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When judging an unknown entry", func() {
			resp, _ := doJSON(t, http.MethodPut, ts.URL+"/judgments/ghost", `{"scores":{"innovation":5}}`)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When completing and submitting", func() {
			resp, _ := doJSON(t, http.MethodPut, base,
				`{"scores":{"innovation":20,"technical":30,"presentation":25,"usability":25}}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp, _ = doJSON(t, http.MethodPost, base+"/submit", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			// The persisted record flows back through the watch stream.
			waitFor(t, func() bool {
				_, body := doJSON(t, http.MethodGet, base, "")
				var view types.Judgment
				if err := json.Unmarshal(body, &view); err != nil {
					return false
				}
				return view.Status == "complete" && !view.Dirty
			})

			Convey("Then the leaderboard reflects the total", func() {
				waitFor(t, func() bool {
					resp, body := doJSON(t, http.MethodGet, ts.URL+"/leaderboard", "")
					if resp.StatusCode != http.StatusOK {
						return false
					}
					var rows []types.Row
					if err := json.Unmarshal(body, &rows); err != nil {
						return false
					}
					return len(rows) == 1 && rows[0].Total == 100
				})
			})

			Convey("And a discard after submit is a no-op view-wise", func() {
				resp, _ := doJSON(t, http.MethodPost, base+"/discard", "")
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
			})
		})
	})
}

func TestLeaderboardEndpoints(t *testing.T) {
	Convey("Given a scored entry", t, func() {
		ts, _ := newTestServer(t)
		entry := createEntry(t, ts, "Gamma", "Team C")
		base := ts.URL + "/judgments/" + entry.ID

		resp, _ := doJSON(t, http.MethodPut, base,
			`{"scores":{"innovation":10,"technical":20,"presentation":15,"usability":5}}`)
		So(resp.StatusCode, ShouldEqual, http.StatusOK)
		resp, _ = doJSON(t, http.MethodPost, base+"/submit", "")
		So(resp.StatusCode, ShouldEqual, http.StatusOK)

		waitFor(t, func() bool {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/leaderboard", "")
			return resp.StatusCode == http.StatusOK && strings.Contains(string(body), `"total":50`)
		})

		Convey("When querying with filters", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/leaderboard?filter=scored-by-me&sort=name", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var rows []types.Row
			So(json.Unmarshal(body, &rows), ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
			So(rows[0].Status, ShouldEqual, "complete")
		})

		Convey("When querying with a bad sort key", func() {
			resp, _ := doJSON(t, http.MethodGet, ts.URL+"/leaderboard?sort=height", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			resp, _ := doJSON(t, http.MethodGet, ts.URL+"/leaderboard?limit=5000", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When exporting CSV", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/leaderboard.csv", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Type"), ShouldStartWith, "text/csv")

			lines := strings.Split(strings.TrimSpace(string(body)), "\n")
			So(lines[0], ShouldStartWith, "rank,name,owner,votes,total")
			So(lines[1], ShouldContainSubstring, "Gamma")
		})
	})
}

func TestVoteEndpoints(t *testing.T) {
	Convey("Given the votes endpoint", t, func() {
		ts, _ := newTestServer(t)
		Convey("When no vote was cast", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/votes", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"voted":false`)
		})

		Convey("When voting for an unknown category", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/votes",
				`{"voter_name":"Sam","category":"golden_banana"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When casting a valid vote", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/votes",
				`{"voter_name":"Sam","category":"best_overall"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			waitFor(t, func() bool {
				resp, body := doJSON(t, http.MethodGet, ts.URL+"/votes/tally", "")
				return resp.StatusCode == http.StatusOK &&
					strings.Contains(string(body), `"best_overall":1`)
			})

			Convey("Then the ballot is visible and retractable", func() {
				waitFor(t, func() bool {
					_, body := doJSON(t, http.MethodGet, ts.URL+"/votes", "")
					return strings.Contains(string(body), `"voted":true`)
				})

				resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/votes", "")
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
			})
		})
	})
}

func TestAdminEndpoints(t *testing.T) {
	Convey("Given scored state", t, func() {
		ts, _ := newTestServer(t)
		entry := createEntry(t, ts, "Delta", "Team D")
		base := ts.URL + "/judgments/" + entry.ID

		resp, _ := doJSON(t, http.MethodPut, base,
			`{"scores":{"innovation":20,"technical":30,"presentation":25,"usability":25}}`)
		So(resp.StatusCode, ShouldEqual, http.StatusOK)
		resp, _ = doJSON(t, http.MethodPost, base+"/submit", "")
		So(resp.StatusCode, ShouldEqual, http.StatusOK)

		Convey("When the confirmation phrase is wrong", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/admin/reset", `{"confirm":"yes please"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the confirmation phrase matches", func() {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/admin/reset",
				`{"confirm":"RESET ALL SCORES"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"judgments_deleted":1`)

			Convey("Then entries survive the sweep", func() {
				_, body := doJSON(t, http.MethodGet, ts.URL+"/entries", "")
				So(string(body), ShouldContainSubstring, "Delta")
			})
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		ts, _ := newTestServer(t)
		Convey("When checking health", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("When scraping metrics", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/metrics", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "jury_scoring")
		})

		Convey("When reading stats", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/stats", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"started":true`)
		})
	})
}
