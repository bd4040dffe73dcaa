// Package ratelimit paces outbound requests: a token-bucket pacer for the
// Google News queries and a per-run request budget for the AI overview.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deusflow/clipping/internal/logger"
)

// Pacer spaces requests to the same host at a fixed interval.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows one request per interval. A zero interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Budget caps how many requests a run may send to a paid API.
type Budget struct {
	mu    sync.Mutex
	name  string
	used  int
	limit int // 0 = no requests allowed
}

func NewBudget(name string, limit int) *Budget {
	return &Budget{name: name, limit: limit}
}

// CanUse reports whether another request fits in the budget.
func (b *Budget) CanUse() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.used >= b.limit {
		logger.Warn("request budget reached", "api", b.name, "used", b.used, "limit", b.limit)
		return false
	}
	return true
}

// Use takes one request from the budget.
func (b *Budget) Use() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.used >= b.limit {
		return fmt.Errorf("%s request budget exceeded (%d/%d)", b.name, b.used, b.limit)
	}
	b.used++
	logger.Debug("request budget", "api", b.name, "used", b.used, "limit", b.limit)
	return nil
}

func (b *Budget) GetStats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"api":   b.name,
		"used":  b.used,
		"limit": b.limit,
	}
}
