package common

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/stretchr/testify/assert"
)

func TestStopWorkerPool(t *testing.T) {
	before := runtime.NumGoroutine()

	var done atomic.Int32
	for range 10 {
		pool := worker.NewDynamicWorkerPool(4, 16, time.Second)
		for i := range 8 {
			pool.SubmitTask(worker.Task{ID: i, Do: func() (any, error) {
				done.Add(1)
				return nil, nil
			}})
		}
		StopWorkerPool(pool, 4)
	}

	assert.Equal(t, int32(80), done.Load())
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStopWorkerPoolNil(t *testing.T) {
	assert.NotPanics(t, func() { StopWorkerPool(nil, 4) })
}
