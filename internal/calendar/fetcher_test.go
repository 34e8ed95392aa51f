package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/config"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/scheduler"
)

func newTestFetcher(maxSize int64) *Fetcher {
	cfg := &config.Config{}
	cfg.Calendar.FetchTimeout = 5
	cfg.Calendar.MaxFeedSize = maxSize
	cfg.Calendar.FeedCacheTTL = 60
	return NewFetcher(cfg, time.UTC, scheduler.DashCommaParser{})
}

func TestFetcher_FetchShiftsCachesBody(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(feed(singleEvent)))
	}))
	defer server.Close()

	fetcher := newTestFetcher(1 << 20)
	location := &domain.Location{Label: "ARC", FeedURL: server.URL}

	for i := 0; i < 2; i++ {
		shifts, stats, err := fetcher.FetchShifts(context.Background(), location, week)
		if err != nil {
			t.Fatalf("FetchShifts failed: %v", err)
		}
		if len(shifts) != 1 || stats.Shifts != 1 {
			t.Fatalf("expected 1 shift, got %d", len(shifts))
		}
	}

	if hits.Load() != 1 {
		t.Fatalf("expected the feed to be downloaded once, got %d", hits.Load())
	}

	fetcher.Forget(server.URL)
	if _, _, err := fetcher.FetchShifts(context.Background(), location, week); err != nil {
		t.Fatalf("FetchShifts failed: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected a second download after Forget, got %d", hits.Load())
	}
}

func TestFetcher_RejectsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>Sign in</body></html>"))
	}))
	defer server.Close()

	_, _, err := newTestFetcher(1<<20).FetchShifts(context.Background(), &domain.Location{Label: "ARC", FeedURL: server.URL}, week)
	if !errors.Is(err, ErrNotICalendar) {
		t.Fatalf("expected ErrNotICalendar, got %v", err)
	}
}

func TestFetcher_RejectsOversizedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed(singleEvent)))
	}))
	defer server.Close()

	_, _, err := newTestFetcher(64).FetchShifts(context.Background(), &domain.Location{Label: "ARC", FeedURL: server.URL}, week)
	if err == nil {
		t.Fatal("expected an error for an oversized feed")
	}
}

func TestFetcher_RejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, _, err := newTestFetcher(1<<20).FetchShifts(context.Background(), &domain.Location{Label: "ARC", FeedURL: server.URL}, week)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := map[string]string{
		"webcal://calendar.example.com/ics/abc.ics": "https://calendar.example.com/ics/abc.ics",
		"WEBCAL://calendar.example.com/x.ics":       "https://calendar.example.com/x.ics",
		" https://calendar.example.com/x.ics ":      "https://calendar.example.com/x.ics",
	}

	for in, want := range cases {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q): expected %q, got %q", in, want, got)
		}
	}
}
