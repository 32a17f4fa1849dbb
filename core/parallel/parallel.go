// Package parallel fans independent column work out over the available CPU
// cores. Every transform in this library is column-wise with no shared
// writes, so the split is a plain range partition.
package parallel

import (
	"runtime"
	"sync"
)

// Columns splits [0, cols) into contiguous chunks and runs fn on each chunk
// concurrently. fn must not touch columns outside its [start, end) range.
func Columns(cols int, fn func(start, end int)) {
	if cols == 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > cols {
		workers = cols
	}
	chunk := (cols + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > cols {
			end = cols
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ColumnsWithThreshold runs fn sequentially when the column count is at or
// below threshold, and in parallel otherwise. Small matrices are not worth
// the goroutine overhead.
func ColumnsWithThreshold(cols, threshold int, fn func(start, end int)) {
	if cols <= threshold {
		fn(0, cols)
		return
	}
	Columns(cols, fn)
}
