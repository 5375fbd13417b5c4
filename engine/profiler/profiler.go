// Package profiler reports frame rate and memory statistics through the engine logger.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-shade/common"
)

// Stats is one reporting window of the profiler.
type Stats struct {
	FPS float64
	// FrameTime is the mean frame duration of the window.
	FrameTime time.Duration
	// SlowestFrame is the longest single frame of the window.
	SlowestFrame time.Duration
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	// MaxPause is the longest GC pause since the previous report.
	MaxPause time.Duration
}

// Profiler accumulates frame timings and logs Stats once per interval.
type Profiler struct {
	interval   time.Duration
	now        func() time.Time
	frameCount int
	windowFrom time.Time
	lastFrame  time.Time
	slowest    time.Duration
	memStats   runtime.MemStats
	lastGC     uint32
	lastAlloc  uint64
	last       Stats
}

// NewProfiler creates a Profiler reporting once per second by default.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		interval: time.Second,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.windowFrom = p.now()
	p.lastFrame = p.windowFrom
	return p
}

// Tick records the end of a frame and logs the window's statistics once the interval has elapsed.
//
// Returns:
//   - bool: true if statistics were reported by this tick
func (p *Profiler) Tick() bool {
	now := p.now()
	p.frameCount++
	p.slowest = max(p.slowest, now.Sub(p.lastFrame))
	p.lastFrame = now

	elapsed := now.Sub(p.windowFrom)
	if elapsed < p.interval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	stats := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		FrameTime:    elapsed / time.Duration(p.frameCount),
		SlowestFrame: p.slowest,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
	}
	// PauseNs is a ring of the last 256 pauses.
	from := p.lastGC
	if stats.GCCount-from > 256 {
		from = stats.GCCount - 256
	}
	for i := from; i < stats.GCCount; i++ {
		stats.MaxPause = max(stats.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
	}

	common.Logger().Info("profiler",
		"fps", stats.FPS,
		"frame_time", stats.FrameTime,
		"slowest_frame", stats.SlowestFrame,
		"heap_mb", stats.HeapMB,
		"alloc_rate_mb", stats.AllocRateMB,
		"gc", stats.GCCount,
		"gc_max_pause", stats.MaxPause,
	)

	p.last = stats
	p.frameCount = 0
	p.slowest = 0
	p.windowFrom = now
	p.lastGC = stats.GCCount
	p.lastAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently reported statistics.
//
// Returns:
//   - Stats: the last report, zero before the first
func (p *Profiler) Last() Stats {
	return p.last
}
