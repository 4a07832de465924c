package profiler

import (
	"log"
	"runtime"
	"time"
)

// Report is one interval's worth of frame and memory statistics.
type Report struct {
	FPS float64
	// AvgDrawn and AvgSkipped are per-frame averages of mesh instances drawn and skipped.
	AvgDrawn   float64
	AvgSkipped float64
	HeapMB     float64
	AllocRate  float64 // MB/s
	GCCount    uint32
	LastPause  time.Duration
	MaxPause   time.Duration
	SysMB      float64
}

// Profiler tracks frame rate, draw counts and memory statistics for performance monitoring.
// Outputs a Report to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	drawn          int
	skipped        int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Report
	quiet          bool
	now            func() time.Time
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the number of instances the frame drew and skipped.
// When the update interval has elapsed a Report is computed and logged.
//
// Parameters:
//   - drawn: mesh instances drawn this frame
//   - skipped: mesh instances skipped this frame
//
// Returns:
//   - bool: true if a report was produced this tick, false otherwise
func (p *Profiler) Tick(drawn, skipped int) bool {
	p.frameCount++
	p.drawn += drawn
	p.skipped += skipped

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	r := Report{
		FPS:        float64(p.frameCount) / elapsed.Seconds(),
		AvgDrawn:   float64(p.drawn) / float64(p.frameCount),
		AvgSkipped: float64(p.skipped) / float64(p.frameCount),
	}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	r.AllocRate = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		r.LastPause = time.Duration(p.memStats.PauseNs[(r.GCCount-1)%256])
		start := p.lastGCCount
		if r.GCCount-start > 256 {
			start = r.GCCount - 256
		}
		for i := start; i < r.GCCount; i++ {
			r.MaxPause = max(r.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	if !p.quiet {
		log.Printf("[Profiler] FPS: %.2f | Drawn: %.1f | Skipped: %.1f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			r.FPS, r.AvgDrawn, r.AvgSkipped, r.HeapMB, r.AllocRate, r.GCCount, r.LastPause.Microseconds(), r.MaxPause.Microseconds(), r.SysMB)
	}

	p.last = r
	p.frameCount = 0
	p.drawn = 0
	p.skipped = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// LastReport returns the most recent Report, or the zero Report before the first interval elapses.
func (p *Profiler) LastReport() Report {
	return p.last
}
