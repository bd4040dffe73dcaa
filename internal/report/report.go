// Package report renders a cleaned clipping to the CSV and Markdown files
// written on every run.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deusflow/clipping/internal/news"
)

// DayLayout names the output files and titles the Markdown digest.
const DayLayout = "2006-01-02"

var csvHeader = []string{"title", "link", "source", "published_at", "query"}

// WriteCSV writes items with a header row. Timestamps are RFC 3339.
func WriteCSV(w io.Writer, items []news.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, it := range items {
		rec := []string{it.Title, it.Link, it.Source, it.PublishedAt.Format(time.RFC3339), it.Query}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Markdown renders the digest as a bullet list headed by the day.
func Markdown(items []news.Item, day time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	lines := make([]string, 0, len(items)+1)
	lines = append(lines, fmt.Sprintf("# Clipping — %s\n", day.In(loc).Format(DayLayout)))

	for _, it := range items {
		when := it.PublishedAt.In(loc).Format("02/01 15:04")
		src := ""
		if it.Source != "" {
			src = fmt.Sprintf(" — *%s*", it.Source)
		}
		lines = append(lines, fmt.Sprintf("- **%s**%s (%s)\n  %s", it.Title, src, when, it.Link))
	}
	return strings.Join(lines, "\n")
}

// Paths are the files produced by WriteFiles.
type Paths struct {
	CSV      string
	Markdown string
}

// WriteFiles creates dir if needed and writes clipping_<day>.csv and
// clipping_<day>.md, with the day taken from now in loc.
func WriteFiles(dir string, items []news.Item, now time.Time, loc *time.Location) (Paths, error) {
	if loc == nil {
		loc = time.UTC
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}

	day := now.In(loc).Format(DayLayout)
	paths := Paths{
		CSV:      filepath.Join(dir, "clipping_"+day+".csv"),
		Markdown: filepath.Join(dir, "clipping_"+day+".md"),
	}

	f, err := os.Create(paths.CSV)
	if err != nil {
		return Paths{}, fmt.Errorf("create CSV: %w", err)
	}
	if err := WriteCSV(f, items); err != nil {
		f.Close()
		return Paths{}, err
	}
	if err := f.Close(); err != nil {
		return Paths{}, fmt.Errorf("close CSV: %w", err)
	}

	md := Markdown(items, now, loc)
	if err := os.WriteFile(paths.Markdown, []byte(md), 0644); err != nil {
		return Paths{}, fmt.Errorf("write Markdown: %w", err)
	}

	return paths, nil
}
