// Package app runs one clipping pass: fetch, clean, render and publish.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deusflow/clipping/internal/config"
	"github.com/deusflow/clipping/internal/gemini"
	"github.com/deusflow/clipping/internal/logger"
	"github.com/deusflow/clipping/internal/metrics"
	"github.com/deusflow/clipping/internal/news"
	"github.com/deusflow/clipping/internal/ratelimit"
	"github.com/deusflow/clipping/internal/report"
	"github.com/deusflow/clipping/internal/retry"
	"github.com/deusflow/clipping/internal/rss"
	"github.com/deusflow/clipping/internal/storage"
	"github.com/deusflow/clipping/internal/telegram"
)

// Overviewer writes a short summary of the day's headlines.
type Overviewer interface {
	Overview(ctx context.Context, titles []string) (string, error)
}

// Notifier delivers the digest message.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// Options tune a run. Zero values use production endpoints.
type Options struct {
	DryRun          bool // write files only
	Now             func() time.Time
	FeedEndpoint    string
	TelegramBaseURL string
}

// Result describes what a run produced.
type Result struct {
	Items []news.Item
	Stats news.Stats
	Paths report.Paths
	Sent  bool
	RunID string
}

type App struct {
	cfg      *config.Config
	fetcher  *rss.Fetcher
	notifier Notifier
	overview Overviewer
	budget   *ratelimit.Budget
	archive  storage.Archive
	dryRun   bool
	now      func() time.Time
	closers  []func()
}

// New wires the collaborators enabled by cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	rc := retry.RetryConfig{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	}

	fetcher := rss.NewFetcher(&http.Client{Timeout: cfg.RequestTimeout}, ratelimit.NewPacer(cfg.FeedInterval), rc, cfg.Location)
	fetcher.Now = now
	if opts.FeedEndpoint != "" {
		fetcher.Endpoint = opts.FeedEndpoint
	}

	a := &App{
		cfg:     cfg,
		fetcher: fetcher,
		dryRun:  opts.DryRun,
		now:     now,
	}

	if opts.DryRun {
		logger.Info("dry run: Telegram, overview and archive disabled")
		return a, nil
	}

	if cfg.TelegramEnabled() {
		tg := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID, rc)
		tg.HTTP.Timeout = cfg.RequestTimeout
		if opts.TelegramBaseURL != "" {
			tg.BaseURL = opts.TelegramBaseURL
		}
		a.notifier = tg
	}

	if cfg.GeminiAPIKey != "" && cfg.MaxGeminiRequests > 0 {
		budget := ratelimit.NewBudget("gemini", cfg.MaxGeminiRequests)
		gc, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, budget)
		if err != nil {
			logger.Warn("Gemini disabled", "error", err)
		} else {
			a.overview = gc
			a.budget = budget
			a.closers = append(a.closers, gc.Close)
		}
	}

	if cfg.ArchiveDSN != "" {
		archive, err := storage.Open(ctx, cfg.ArchiveDSN)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open archive: %w", err)
		}
		a.archive = archive
		a.closers = append(a.closers, func() {
			if err := archive.Close(); err != nil {
				logger.Warn("closing archive", "error", err)
			}
		})
	}

	return a, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run builds an App from cfg and executes one pass.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	a, err := New(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.Run(ctx)
}

func (a *App) Run(ctx context.Context) (*Result, error) {
	start := a.now()
	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(start))
	}()

	items, err := a.fetcher.FetchAll(ctx, a.cfg.Queries)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return nil, fmt.Errorf("fetch feeds: %w", err)
	}
	metrics.Global.AddFetched(len(items))
	logger.Info("news collected", "count", len(items))

	items, expired := news.Since(items, start.Add(-a.cfg.Lookback()))
	metrics.Global.AddExpired(expired)
	logger.Debug("lookback window applied", "hours", a.cfg.LookbackHours, "dropped", expired)

	items, stats := news.Clean(items, a.cfg.PipelineOptions())
	metrics.Global.RecordStats(stats)
	logger.Info("pipeline finished",
		"input", stats.Input,
		"duplicates", stats.Duplicates,
		"not_allowed", stats.NotAllowed,
		"blacklisted", stats.Blacklisted,
		"near_duplicates", stats.NearDuplicates,
		"output", stats.Output,
	)

	if a.cfg.MaxItems > 0 && len(items) > a.cfg.MaxItems {
		logger.Debug("capping items", "max_items", a.cfg.MaxItems, "dropped", len(items)-a.cfg.MaxItems)
		items = items[:a.cfg.MaxItems]
	}

	res := &Result{Items: items, Stats: stats}
	if len(items) == 0 {
		logger.Info("no news to publish")
		metrics.Global.SetLastRun()
		return res, nil
	}

	paths, err := report.WriteFiles(a.cfg.OutputDir, items, start, a.cfg.Location)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return nil, fmt.Errorf("write output: %w", err)
	}
	res.Paths = paths
	logger.Info("files written", "csv", paths.CSV, "markdown", paths.Markdown)

	failed := false
	if a.notifier != nil {
		msg := telegram.FormatDigest(items, start.In(a.cfg.Location), a.writeOverview(ctx, items), 0)
		if err := a.notifier.SendMessage(ctx, msg); err != nil {
			logger.Error("telegram delivery failed", "error", err)
			metrics.Global.SetError(err.Error())
			failed = true
		} else {
			res.Sent = true
			metrics.Global.IncrementTelegramMessagesSent()
			metrics.Global.AddPublished(len(items))
		}
	}

	if a.archive != nil {
		run := storage.NewRun(items, start)
		if err := a.archive.SaveRun(ctx, run); err != nil {
			logger.Error("archive write failed", "error", err)
			metrics.Global.SetError(err.Error())
			failed = true
		} else {
			res.RunID = run.ID.String()
			metrics.Global.IncrementArchiveWrites()
			logger.Debug("run archived", "id", res.RunID, "items", len(items))
		}
	}

	if !failed {
		metrics.Global.SetLastRun()
	}
	return res, nil
}

// writeOverview returns "" when no overview writer is configured, its request
// budget is spent, or it fails.
func (a *App) writeOverview(ctx context.Context, items []news.Item) string {
	if a.overview == nil {
		return ""
	}
	if a.budget != nil {
		defer func() { metrics.Global.RecordBudget(a.budget.GetStats()) }()
		if !a.budget.CanUse() {
			return ""
		}
	}

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}

	text, err := a.overview.Overview(ctx, titles)
	if err != nil {
		logger.Warn("overview skipped", "error", err)
		return ""
	}
	return text
}
