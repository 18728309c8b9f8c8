// Package parallel provides the worker-splitting helper used by the GEMM
// kernel.
//
// Parallelism here is strictly a performance optimization over independent
// output rows: every output element is computed start to finish by a single
// goroutine, so derivative accumulation order within an element is identical
// to the sequential execution.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16,
	}
}

// Sequential returns a config that disables parallelism entirely.
func Sequential() Config {
	return Config{}
}

// For executes f(i) for i in [0, n), splitting the range across workers.
// Falls back to sequential execution if parallelism is disabled or n is too
// small to amortize the goroutine overhead.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForRows iterates the batch×rows grid of a batched matrix product.
// Each (batch, row) pair runs on exactly one worker.
func ForRows(batch, rows int, f func(b, i int), cfg Config) {
	For(batch*rows, func(k int) {
		f(k/rows, k%rows)
	}, cfg)
}
