package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		wantErr bool
	}{
		{"positive limit", 50, false},
		{"zero limit", 0, true},
		{"negative limit", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.limit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%d) error = %v, wantErr %v", tt.limit, err, tt.wantErr)
			}
			if err == nil && g.Limit() != tt.limit {
				t.Errorf("Limit() = %d, want %d", g.Limit(), tt.limit)
			}
		})
	}
}

func TestAcquireCapsOccupancy(t *testing.T) {
	const limit = 5
	const holders = 25

	g, err := New(limit)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < holders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			defer release()

			now := int64(g.InFlight())
			for {
				prev := peak.Load()
				if now <= prev || peak.CompareAndSwap(prev, now) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > limit {
		t.Errorf("peak in-flight = %d, want at most %d", p, limit)
	}
	if n := g.InFlight(); n != 0 {
		t.Errorf("InFlight() after all releases = %d, want 0", n)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	g, err := New(1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
	release() // second call must not free an extra slot or panic

	if n := g.InFlight(); n != 0 {
		t.Fatalf("InFlight() = %d, want 0", n)
	}

	// The single slot is usable again, but only once.
	release2, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	defer release2()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.Acquire(ctx); err == nil {
		t.Error("Acquire() beyond limit expected error, got nil")
	}
}

func TestAcquireContextCancelled(t *testing.T) {
	g, err := New(1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Acquire(ctx); err == nil {
		t.Error("Acquire() with cancelled context expected error, got nil")
	}
}
