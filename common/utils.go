package common

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// StopWorkerPool shuts down a pool created with NewDynamicWorkerPool(workers, ...) and returns
// once every worker goroutine has exited. The pool's own Stop shares one stop channel between
// workers, and a worker discards ids that are not its own, so a worker is instead retired by
// handing it a task that ends its goroutine. Tasks already queued run first.
//
// Parameters:
//   - pool: the pool to stop; it must not be used afterwards
//   - workers: the pool's worker count
func StopWorkerPool(pool worker.DynamicWorkerPool, workers int) {
	if pool == nil {
		return
	}
	workers = max(workers, 1)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		pool.SubmitTask(worker.Task{
			ID: -1 - i,
			Do: func() (any, error) {
				defer wg.Done()
				runtime.Goexit()
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Marks the pool stopped; the stop ids land in the buffered channel with no reader left.
	pool.Stop()
}
