// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package parallel provides the worker pool used by the software device to
// shade row bands of a render target concurrently.
package parallel

import (
	"runtime"
	"sync"
)

// minRowsPerBand keeps bands large enough that scheduling overhead does not
// dominate on small grids.
const minRowsPerBand = 8

// band is one row range queued for a worker.
type band struct {
	y0, y1 int
	fn     func(y0, y1 int)
	done   *sync.WaitGroup
}

// WorkerPool shades row bands on a fixed set of goroutines.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queue   chan band
	wg      sync.WaitGroup

	// mu is held shared by ForEachBand and exclusively by Close, so the
	// queue is never closed under a sender.
	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		workers: workers,
		queue:   make(chan band, workers),
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for b := range p.queue {
		b.fn(b.y0, b.y1)
		b.done.Done()
	}
}

// ForEachBand splits rows [0, height) into contiguous bands, calls fn for
// each band and waits. Bands never overlap, so fn may write the rows it is
// given without further locking. The calling goroutine shades the first
// band; on a closed pool it shades all of them.
func (p *WorkerPool) ForEachBand(height int, fn func(y0, y1 int)) {
	bands := Bands(height, p.workers)
	if len(bands) == 0 {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || len(bands) == 1 {
		for _, b := range bands {
			fn(b[0], b[1])
		}
		return
	}

	var done sync.WaitGroup
	done.Add(len(bands) - 1)
	for _, b := range bands[1:] {
		p.queue <- band{y0: b[0], y1: b[1], fn: fn, done: &done}
	}
	fn(bands[0][0], bands[0][1])
	done.Wait()
}

// Bands returns up to n half-open row ranges covering [0, height).
func Bands(height, n int) [][2]int {
	if height <= 0 {
		return nil
	}
	n = max(1, min(n, (height+minRowsPerBand-1)/minRowsPerBand))
	rows := height / n
	extra := height - rows*n

	out := make([][2]int, 0, n)
	y := 0
	for i := range n {
		h := rows
		if i < extra {
			h++
		}
		out = append(out, [2]int{y, y + h})
		y += h
	}
	return out
}

// Close waits for bands in flight and stops the workers. Close is safe to
// call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.queue)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int { return p.workers }
