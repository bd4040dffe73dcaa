package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deusflow/clipping/internal/metrics"
	"github.com/deusflow/clipping/internal/news"
	"github.com/deusflow/clipping/internal/storage"
)

func TestHealthHandler(t *testing.T) {
	saved := metrics.Global
	t.Cleanup(func() { metrics.Global = saved })

	metrics.Global = metrics.New()
	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}

	metrics.Global.SetError("telegram down")
	rec = httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "error" || body["last_error"] != "telegram down" {
		t.Errorf("body = %v", body)
	}
}

func TestMetricsHandler(t *testing.T) {
	saved := metrics.Global
	t.Cleanup(func() { metrics.Global = saved })

	metrics.Global = metrics.New()
	metrics.Global.AddFetched(7)

	srv := newMonitoringServer("0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["items_fetched"] != float64(7) {
		t.Errorf("items_fetched = %v", body["items_fetched"])
	}
}

func TestListRecentRuns(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "archive.db")

	archive, err := storage.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run := storage.NewRun([]news.Item{{Title: "a", Link: "b"}, {Title: "c", Link: "d"}},
		time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if err := archive.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	archive.Close()

	var buf bytes.Buffer
	if err := listRecentRuns(ctx, &buf, dsn, 5); err != nil {
		t.Fatalf("listRecentRuns: %v", err)
	}
	want := "2026-03-10T12:00:00Z  " + run.ID.String() + "  2 items\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestListRecentRuns_Empty(t *testing.T) {
	var buf bytes.Buffer
	dsn := filepath.Join(t.TempDir(), "archive.db")
	if err := listRecentRuns(context.Background(), &buf, dsn, 5); err != nil {
		t.Fatalf("listRecentRuns: %v", err)
	}
	if !strings.Contains(buf.String(), "no archived runs") {
		t.Errorf("got %q", buf.String())
	}
}

func TestListRecentRuns_NoDSN(t *testing.T) {
	if err := listRecentRuns(context.Background(), &bytes.Buffer{}, "", 5); err == nil {
		t.Error("expected error without ARCHIVE_DSN")
	}
}
