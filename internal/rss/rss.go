// Package rss fetches Google News search feeds and turns their entries into
// pipeline items.
package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/rss"

	"github.com/deusflow/clipping/internal/logger"
	"github.com/deusflow/clipping/internal/metrics"
	"github.com/deusflow/clipping/internal/news"
	"github.com/deusflow/clipping/internal/ratelimit"
	"github.com/deusflow/clipping/internal/retry"
)

// GoogleNewsRSS is the search endpoint; %s receives the encoded query.
const GoogleNewsRSS = "https://news.google.com/rss/search?q=%s&hl=pt-BR&gl=BR&ceid=BR:pt-419"

// EncodeQuery prepares a search query for the Google News URL: spaces become
// "+" and quotes "%22", so exact-phrase searches survive.
func EncodeQuery(q string) string {
	return url.QueryEscape(q)
}

// BuildQueryURL fills the endpoint template with the encoded query.
func BuildQueryURL(endpoint, q string) string {
	return fmt.Sprintf(endpoint, EncodeQuery(q))
}

// Fetcher downloads one feed per query.
type Fetcher struct {
	Client   *http.Client
	Pacer    *ratelimit.Pacer
	Retry    retry.RetryConfig
	Location *time.Location
	Endpoint string           // defaults to GoogleNewsRSS
	Now      func() time.Time // fallback timestamp for undated entries
}

// NewFetcher returns a Fetcher with the Google News endpoint.
func NewFetcher(client *http.Client, pacer *ratelimit.Pacer, rc retry.RetryConfig, loc *time.Location) *Fetcher {
	return &Fetcher{
		Client:   client,
		Pacer:    pacer,
		Retry:    rc,
		Location: loc,
		Endpoint: GoogleNewsRSS,
		Now:      time.Now,
	}
}

// FetchAll returns the items of every query in fetch order. Failing queries
// are logged and skipped; an error is returned only when all of them fail.
func (f *Fetcher) FetchAll(ctx context.Context, queries []string) ([]news.Item, error) {
	var all []news.Item
	var errs []error
	successCount := 0

	for _, q := range queries {
		if f.Pacer != nil {
			if err := f.Pacer.Wait(ctx); err != nil {
				return all, err
			}
		}

		items, err := f.FetchQuery(ctx, q)
		if err != nil {
			logger.Warn("feed fetch failed", "query", q, "error", err)
			metrics.Global.IncrementFeedErrors()
			errs = append(errs, fmt.Errorf("query %q: %w", q, err))
			continue
		}

		all = append(all, items...)
		successCount++
		logger.Info("feed loaded", "query", q, "items", len(items))
	}

	logger.Info("feeds processed", "ok", successCount, "total", len(queries))
	if successCount == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

// FetchQuery downloads and parses the feed for one query, with retries.
func (f *Fetcher) FetchQuery(ctx context.Context, q string) ([]news.Item, error) {
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = GoogleNewsRSS
	}
	feedURL := BuildQueryURL(endpoint, q)

	var items []news.Item
	err := retry.WithRetry(ctx, f.Retry, func() error {
		body, err := f.get(ctx, feedURL)
		if err != nil {
			return err
		}
		defer body.Close()

		items, err = ParseFeed(body, q, f.Location, f.now)
		return err
	})
	return items, err
}

func (f *Fetcher) get(ctx context.Context, feedURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "clipping/1.0 (+https://github.com/deusflow/clipping)")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (f *Fetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// ParseFeed reads an RSS document and converts its entries. Timestamps are
// expressed in loc; undated entries get now().
func ParseFeed(r io.Reader, query string, loc *time.Location, now func() time.Time) ([]news.Item, error) {
	parser := &rss.Parser{}
	feed, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse RSS: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	items := make([]news.Item, 0, len(feed.Items))
	for _, e := range feed.Items {
		source := ""
		if e.Source != nil {
			source = strings.TrimSpace(e.Source.Title)
		}
		items = append(items, news.Item{
			Title:       SanitizeTitle(e.Title),
			Link:        strings.TrimSpace(e.Link),
			Source:      source,
			PublishedAt: entryTime(e, now).In(loc),
			Query:       query,
		})
	}
	return items, nil
}

// entryTime picks pubDate, then dc:date, then now.
func entryTime(e *rss.Item, now func() time.Time) time.Time {
	if e.PubDateParsed != nil {
		return *e.PubDateParsed
	}
	if e.PubDate != "" {
		if t, err := ParseTime(e.PubDate); err == nil {
			return t
		}
	}
	if e.DublinCoreExt != nil && len(e.DublinCoreExt.Date) > 0 {
		if t, err := ParseTime(e.DublinCoreExt.Date[0]); err == nil {
			return t
		}
	}
	return now()
}

var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the date formats seen in news feeds. Values without a
// zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// SanitizeTitle drops inline markup and entity leftovers some publishers put
// in feed titles, and collapses whitespace.
func SanitizeTitle(title string) string {
	if strings.ContainsAny(title, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(title)); err == nil {
			title = doc.Text()
		}
	}
	return strings.Join(strings.Fields(title), " ")
}
