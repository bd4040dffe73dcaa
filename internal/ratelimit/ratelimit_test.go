package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBudget(t *testing.T) {
	b := NewBudget("gemini", 2)

	for i := 0; i < 2; i++ {
		if !b.CanUse() {
			t.Fatalf("call %d: CanUse = false, want true", i)
		}
		if err := b.Use(); err != nil {
			t.Fatalf("call %d: Use: %v", i, err)
		}
	}
	if b.CanUse() {
		t.Error("CanUse = true after budget spent")
	}
	if err := b.Use(); err == nil {
		t.Error("Use succeeded after budget spent")
	}
	if used := b.GetStats()["used"].(int); used != 2 {
		t.Errorf("used = %d, want 2", used)
	}
}

func TestBudget_ZeroLimit(t *testing.T) {
	b := NewBudget("gemini", 0)
	if b.CanUse() {
		t.Error("zero budget must not allow requests")
	}
}

func TestPacer_Spacing(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	// First token is immediate, the next two wait ~20ms each.
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("three waits took %v, want at least ~40ms", elapsed)
	}
}

func TestPacer_Disabled(t *testing.T) {
	p := NewPacer(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("disabled pacer took %v", elapsed)
	}
}

func TestPacer_ContextCancelled(t *testing.T) {
	p := NewPacer(time.Hour)
	_ = p.Wait(context.Background()) // spend the burst token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}
