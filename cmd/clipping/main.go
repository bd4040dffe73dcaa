package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deusflow/clipping/internal/app"
	"github.com/deusflow/clipping/internal/config"
	"github.com/deusflow/clipping/internal/logger"
	"github.com/deusflow/clipping/internal/metrics"
	"github.com/deusflow/clipping/internal/storage"
)

func main() {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to config.yaml")
	dryRun := flag.Bool("dry-run", false, "write files only; skip Telegram, overview and archive")
	recent := flag.Int("recent", 0, "list the N most recent archived runs and exit")
	flag.Parse()

	logger.Init(os.Getenv("DEBUG") == "true")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *recent > 0 {
		if err := listRecentRuns(ctx, os.Stdout, cfg.ArchiveDSN, *recent); err != nil {
			logger.Error("listing archived runs failed", "error", err)
			stop()
			os.Exit(1)
		}
		return
	}

	// Check if we should start HTTP server for monitoring
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		srv := newMonitoringServer(os.Getenv("MONITORING_PORT"))
		go func() {
			logger.Info("starting monitoring server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("monitoring server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	res, err := app.Run(ctx, cfg, app.Options{DryRun: *dryRun})
	if err != nil {
		logger.Error("clipping failed", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("clipping done", "items", len(res.Items), "sent", res.Sent, "stats", res.Stats.String())
}

// listRecentRuns prints the newest archived runs, one per line.
func listRecentRuns(ctx context.Context, w io.Writer, dsn string, n int) error {
	if dsn == "" {
		return errors.New("ARCHIVE_DSN is not set")
	}

	archive, err := storage.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer archive.Close()

	runs, err := archive.RecentRuns(ctx, n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no archived runs")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %d items\n", r.CreatedAt.Format(time.RFC3339), r.ID, r.Items)
	}
	return nil
}

func newMonitoringServer(port string) *http.Server {
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
