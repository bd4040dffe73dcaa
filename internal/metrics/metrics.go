package metrics

import (
	"sync"
	"time"

	"github.com/deusflow/clipping/internal/news"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsFetched         int64
	FeedErrors           int64
	ItemsExpired         int64
	DuplicatesFiltered   int64
	NotAllowedFiltered   int64
	BlacklistFiltered    int64
	NearDuplicates       int64
	ItemsPublished       int64
	TelegramMessagesSent int64
	ArchiveWrites        int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Paid API request budgets, by API name
	Budgets map[string]map[string]interface{}

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) AddFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFetched += int64(n)
}

func (m *Metrics) IncrementFeedErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedErrors++
}

func (m *Metrics) AddExpired(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsExpired += int64(n)
}

// RecordStats adds the per-stage removal counts of one pipeline run.
func (m *Metrics) RecordStats(st news.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(st.Duplicates)
	m.NotAllowedFiltered += int64(st.NotAllowed)
	m.BlacklistFiltered += int64(st.Blacklisted)
	m.NearDuplicates += int64(st.NearDuplicates)
}

func (m *Metrics) AddPublished(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsPublished += int64(n)
}

func (m *Metrics) IncrementTelegramMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TelegramMessagesSent++
}

func (m *Metrics) IncrementArchiveWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArchiveWrites++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

// RecordBudget stores the latest snapshot of a ratelimit.Budget.
func (m *Metrics) RecordBudget(stats map[string]interface{}) {
	name, _ := stats["api"].(string)
	if name == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Budgets == nil {
		m.Budgets = make(map[string]map[string]interface{})
	}
	m.Budgets[name] = stats
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budgets := make(map[string]interface{}, len(m.Budgets))
	for name, b := range m.Budgets {
		budgets[name] = b
	}

	return map[string]interface{}{
		"api_budgets":                budgets,
		"items_fetched":              m.ItemsFetched,
		"feed_errors":                m.FeedErrors,
		"items_expired":              m.ItemsExpired,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"not_allowed_filtered":       m.NotAllowedFiltered,
		"blacklist_filtered":         m.BlacklistFiltered,
		"near_duplicates":            m.NearDuplicates,
		"items_published":            m.ItemsPublished,
		"telegram_messages_sent":     m.TelegramMessagesSent,
		"archive_writes":             m.ArchiveWrites,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
