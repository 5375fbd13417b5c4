package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickInterval(t *testing.T) {
	assert.Equal(t, time.Second/60, tickInterval(0))
	assert.Equal(t, time.Second/60, tickInterval(-5))
	assert.Equal(t, 8*time.Millisecond, tickInterval(125))
	assert.Equal(t, 40*time.Millisecond, tickInterval(25))
}

func TestFrameInterval(t *testing.T) {
	assert.Zero(t, frameInterval(0), "uncapped")
	assert.Equal(t, 10*time.Millisecond, frameInterval(100))
}

func TestSetTickRateKeepsOnlyTheLatestRate(t *testing.T) {
	e := &engine{tickRateChannel: make(chan time.Duration, 1)}

	e.SetTickRate(50)
	e.SetTickRate(100)

	require.Len(t, e.tickRateChannel, 1)
	assert.Equal(t, 10*time.Millisecond, <-e.tickRateChannel)
}

func TestQuitIsIdempotent(t *testing.T) {
	e := &engine{quitChannel: make(chan struct{})}

	e.Quit()
	e.Quit()

	select {
	case <-e.quitChannel:
	default:
		t.Fatal("quit channel still open")
	}
}

func TestWithTickRateAndFrameLimit(t *testing.T) {
	e := &engine{}
	WithTickRate(30)(e)
	WithRenderFrameLimit(50)(e)
	WithProfiling(true)(e)

	assert.Equal(t, time.Duration(float64(time.Second)/30), e.engineTickRate)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	assert.True(t, e.profilingEnabled)
}
