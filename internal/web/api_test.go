package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestQuickSearch(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	bob := env.register("bob")
	cookie := env.cookie(alice)

	long := strings.Repeat("a", 150)
	for i := 0; i < 12; i++ {
		env.createMemo(alice, fmt.Sprintf("Alpha %d", i), long)
		time.Sleep(2 * time.Millisecond)
	}
	env.createMemo(alice, "unrelated", "nothing")
	env.createMemo(bob, "Alpha of bob", "bob only")

	rec := env.get("/memos/search?q=ALPHA", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	var resp quickSearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 10 || len(resp.Results) != 10 {
		t.Fatalf("expected 10 results, got count=%d len=%d", resp.Count, len(resp.Results))
	}
	if resp.Query != "ALPHA" {
		t.Fatalf("expected query echoed, got %q", resp.Query)
	}
	first := resp.Results[0]
	if first.Title != "Alpha 11" {
		t.Fatalf("expected most recently updated first, got %q", first.Title)
	}
	if first.Content != strings.Repeat("a", 100)+"..." {
		t.Fatalf("expected truncated content, got %d chars", len(first.Content))
	}
	if first.URL != fmt.Sprintf("/memos/%d", first.ID) {
		t.Fatalf("unexpected url %q", first.URL)
	}
	if _, err := time.Parse(timeLayout, first.CreatedAt); err != nil {
		t.Fatalf("created_at %q: %v", first.CreatedAt, err)
	}
	for _, r := range resp.Results {
		if strings.Contains(r.Title, "bob") {
			t.Fatalf("quick search leaked another owner's memo")
		}
	}
}

func TestQuickSearchEmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	env.createMemo(alice, "anything", "at all")

	rec := env.get("/memos/search?q=", env.cookie(alice))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["count"]) != "0" || string(raw["results"]) != "[]" {
		t.Fatalf("expected empty result, got %s", rec.Body.String())
	}
}

func TestStatsData(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	env.createMemo(alice, "one", "two words")
	env.createMemo(alice, "two", "three more words")

	rec := env.get("/memos/stats/data", env.cookie(alice))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats struct {
		TotalCount      int `json:"total_count"`
		TotalWords      int `json:"total_words"`
		RecentCount     int `json:"recent_count"`
		AvgWordsPerMemo int `json:"avg_words_per_memo"`
		MonthlyStats    []struct {
			Month string `json:"month"`
			Count int    `json:"count"`
		} `json:"monthly_stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalCount != 2 || stats.TotalWords != 5 || stats.RecentCount != 2 || stats.AvgWordsPerMemo != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.MonthlyStats) != 6 {
		t.Fatalf("expected 6 months, got %d", len(stats.MonthlyStats))
	}
	if last := stats.MonthlyStats[5]; last.Count != 2 {
		t.Fatalf("expected this month to hold both memos, got %+v", last)
	}
}

func TestStatsPage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	env.createMemo(alice, "one", "words here")

	rec := env.get("/memos/stats", env.cookie(alice))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Total memos") || !strings.Contains(body, time.Now().UTC().Format("January 2006")) {
		t.Fatalf("unexpected stats page")
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get("/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz: got %d %s", rec.Code, rec.Body.String())
	}
	_ = env.backend.Close()
	rec = env.get("/healthz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz on closed store: expected 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register("alice")
	env.get("/memos/", env.cookie(alice))

	rec := env.get("/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "gmemo_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}
