package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline()

	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, BlendNone, p.BlendMode())
	assert.Equal(t, CullBack, p.CullMode())
	assert.Equal(t, FrontFaceCCW, p.FrontFace())
	assert.True(t, p.ColorWriteEnabled())
}

func TestPipelineKey(t *testing.T) {
	additive := func() Pipeline {
		return NewPipeline(
			WithDepthTestEnabled(false),
			WithDepthWriteEnabled(false),
			WithBlendMode(BlendAdditive),
		)
	}

	assert.Equal(t, additive().Key(), additive().Key(), "identical state yields identical keys")
	assert.NotEqual(t, NewPipeline().Key(), additive().Key())
	assert.NotEqual(t, NewPipeline().Key(), NewPipeline(WithDepthBias(2, 1.5)).Key())
}
