// Package workerpool implements a bounded goroutine pool. Its one
// caller is internal/interp, which runs image rows on it (spec §5).
//
// Grounded on the teacher's internal/tile/generator.go job-channel
// pattern: a buffered job channel feeding a fixed worker count, a
// WaitGroup for completion, and the first error observed winning.
package workerpool

import (
	"runtime"
	"sync"
)

// Run executes fn(i) for each i in [0, n), using up to concurrency
// goroutines (0 or negative means runtime.NumCPU()). It returns the
// first error any call to fn reported, if any; all n calls are still
// attempted regardless of earlier failures; so a caller that prefers
// fail-fast should check context itself, since workerpool (like the
// teacher's generator) runs to completion over a zoom/row level.
func Run(n, concurrency int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > n {
		concurrency = n
	}

	jobs := make(chan int, concurrency*2)
	errCh := make(chan error, n)
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(i); err != nil {
					errCh <- err
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		return err
	}
	return nil
}
