package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestProfilerReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithInterval(100*time.Millisecond), WithClock(clock.now))

	for range 4 {
		clock.advance(20 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.advance(20 * time.Millisecond)
	assert.True(t, p.Tick())

	stats := p.Last()
	assert.InDelta(t, 50.0, stats.FPS, 1e-9)
	assert.Equal(t, 20*time.Millisecond, stats.FrameTime)
	assert.Equal(t, 20*time.Millisecond, stats.SlowestFrame)

	clock.advance(10 * time.Millisecond)
	assert.False(t, p.Tick(), "a new window starts after each report")
}

func TestProfilerTracksSlowestFrame(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithInterval(time.Second), WithClock(clock.now))

	clock.advance(100 * time.Millisecond)
	p.Tick()
	clock.advance(700 * time.Millisecond)
	p.Tick()
	clock.advance(200 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.Equal(t, 700*time.Millisecond, p.Last().SlowestFrame)
	assert.InDelta(t, 3.0, p.Last().FPS, 1e-9)
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.interval)
}
