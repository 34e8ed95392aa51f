package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/config"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

type Fetcher struct {
	client   *http.Client
	cache    *cache.Cache
	maxSize  int64
	location *time.Location
	parser   MentionParser
}

func NewFetcher(cfg *config.Config, loc *time.Location, parser MentionParser) *Fetcher {
	ttl := time.Duration(cfg.Calendar.FeedCacheTTL) * time.Second

	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.Calendar.FetchTimeout) * time.Second,
		},
		cache:    cache.New(ttl, 2*ttl),
		maxSize:  cfg.Calendar.MaxFeedSize,
		location: loc,
		parser:   parser,
	}
}

// FetchShifts downloads the feed of location and returns its shifts inside week.
func (f *Fetcher) FetchShifts(ctx context.Context, location *domain.Location, week domain.StagingWeek) ([]domain.Shift, *Stats, error) {
	body, err := f.feed(ctx, location.FeedURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch feed of %s: %w", location.Label, err)
	}

	shifts, stats, err := ParseShifts(bytes.NewReader(body), location.Label, week, f.location, f.parser)
	if err != nil {
		return nil, nil, fmt.Errorf("parse feed of %s: %w", location.Label, err)
	}

	slog.Debug("calendar feed parsed",
		"location", location.Label,
		"events", stats.Events,
		"shifts", stats.Shifts,
		"cancelled", stats.Cancelled,
		"allDay", stats.AllDay,
		"outsideWeek", stats.OutsideWeek,
		"invalid", stats.Invalid,
	)

	return shifts, stats, nil
}

// Forget drops a cached feed body, used when a location's feed URL changes.
func (f *Fetcher) Forget(feedURL string) {
	f.cache.Delete(NormalizeURL(feedURL))
}

func (f *Fetcher) feed(ctx context.Context, rawURL string) ([]byte, error) {
	feedURL := NormalizeURL(rawURL)

	if cached, ok := f.cache.Get(feedURL); ok {
		return cached.([]byte), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	// one extra byte tells a body at the limit apart from an oversized one
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > f.maxSize {
		return nil, fmt.Errorf("feed exceeds %d bytes", f.maxSize)
	}

	if err := validateBody(body); err != nil {
		return nil, err
	}

	f.cache.SetDefault(feedURL, body)
	return body, nil
}

// NormalizeURL rewrites webcal:// subscription links to https://.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if len(rawURL) >= len("webcal://") && strings.EqualFold(rawURL[:len("webcal://")], "webcal://") {
		return "https://" + rawURL[len("webcal://"):]
	}
	return rawURL
}
