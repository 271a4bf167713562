package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		maxRPS  int
		wantErr bool
	}{
		{"positive rate", 18, false},
		{"zero rate", 0, true},
		{"negative rate", -5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lim, err := New(tt.maxRPS)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%d) error = %v, wantErr %v", tt.maxRPS, err, tt.wantErr)
			}
			if err == nil && lim.MaxRPS() != tt.maxRPS {
				t.Errorf("MaxRPS() = %d, want %d", lim.MaxRPS(), tt.maxRPS)
			}
		})
	}
}

func TestAcquireSpacing(t *testing.T) {
	const maxRPS = 40
	const admissions = 21

	lim, err := New(maxRPS)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	start := time.Now()
	for i := 0; i < admissions; i++ {
		if err := lim.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	// The first admission is free; each further one needs 1/maxRPS.
	minElapsed := time.Duration(admissions-1) * time.Second / maxRPS
	if elapsed < minElapsed {
		t.Errorf("%d admissions took %v, want at least %v", admissions, elapsed, minElapsed)
	}
}

func TestAcquireConcurrentRollingWindow(t *testing.T) {
	const maxRPS = 30
	const workers = 10
	const perWorker = 4

	lim, err := New(maxRPS)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var mu sync.Mutex
	var admitted []time.Time
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := lim.Acquire(context.Background()); err != nil {
					t.Errorf("Acquire() error = %v", err)
					return
				}
				mu.Lock()
				admitted = append(admitted, time.Now())
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(admitted) != workers*perWorker {
		t.Fatalf("admitted %d requests, want %d", len(admitted), workers*perWorker)
	}
	if got := maxInRollingWindow(admitted, time.Second); got > maxRPS+1 {
		t.Errorf("rolling 1s window admitted %d requests, want at most %d", got, maxRPS+1)
	}
}

func TestAcquireContextCancelled(t *testing.T) {
	lim, err := New(1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// Drain the only token so the next Acquire has to wait.
	if err := lim.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := lim.Acquire(ctx); err == nil {
		t.Error("Acquire() with cancelled context expected error, got nil")
	}
}

// maxInRollingWindow returns the largest number of admission timestamps
// falling inside any half-open window of the given length.
func maxInRollingWindow(times []time.Time, window time.Duration) int {
	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	most := 0
	j := 0
	for i := range sorted {
		if j < i {
			j = i
		}
		for j < len(sorted) && sorted[j].Sub(sorted[i]) < window {
			j++
		}
		if j-i > most {
			most = j - i
		}
	}
	return most
}
