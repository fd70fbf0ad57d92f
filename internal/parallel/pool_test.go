// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	if want := runtime.GOMAXPROCS(0); pool.Workers() != want {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), want)
	}
}

func TestWorkerPool_ForEachBandAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	rows := 0
	pool.ForEachBand(32, func(y0, y1 int) { rows += y1 - y0 })
	if rows != 32 {
		t.Errorf("rows = %d after Close, want 32 (inline execution)", rows)
	}
}

func TestWorkerPool_ConcurrentCallers(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var total atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.ForEachBand(64, func(y0, y1 int) { total.Add(int64(y1 - y0)) })
		}()
	}
	wg.Wait()
	if total.Load() != 8*64 {
		t.Errorf("rows = %d, want %d", total.Load(), 8*64)
	}
}

func TestWorkerPool_ForEachBandCoversRowsOnce(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	for _, height := range []int{1, 7, 8, 9, 64, 257} {
		hits := make([]atomic.Int32, height)
		pool.ForEachBand(height, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				hits[y].Add(1)
			}
		})
		for y := range hits {
			if got := hits[y].Load(); got != 1 {
				t.Fatalf("height %d: row %d visited %d times", height, y, got)
			}
		}
	}
}

func TestBands(t *testing.T) {
	tests := []struct {
		name   string
		height int
		n      int
		want   int
	}{
		{"empty", 0, 4, 0},
		{"single row", 1, 4, 1},
		{"small grid keeps one band", 8, 4, 1},
		{"split evenly", 64, 4, 4},
		{"more workers than bands", 20, 16, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bands := Bands(tt.height, tt.n)
			if len(bands) != tt.want {
				t.Fatalf("len(Bands(%d, %d)) = %d, want %d", tt.height, tt.n, len(bands), tt.want)
			}
			next := 0
			for _, b := range bands {
				if b[0] != next || b[1] <= b[0] {
					t.Fatalf("band %v does not continue at row %d", b, next)
				}
				next = b[1]
			}
			if tt.height > 0 && next != tt.height {
				t.Errorf("bands end at %d, want %d", next, tt.height)
			}
		})
	}
}
