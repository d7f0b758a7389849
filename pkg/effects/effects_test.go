package effects

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestLightingBounds(t *testing.T) {
	l := NewLighting(0.1, 90)
	for range 500 {
		info := l.Next()
		for _, ch := range []float64{info.Color.R, info.Color.G, info.Color.B} {
			assert.GreaterOrEqual(t, ch, 0.1)
			assert.Less(t, ch, 1.0)
		}
		assert.InDelta(t, 0, info.XRotation, 90)
		assert.InDelta(t, 0, info.YRotation, 90)
		assert.Equal(t, info.Color.Hex(), info.Hex)
		assert.InDelta(t, 1, info.Direction().Len(), 1e-9)
	}
}

func TestLightingDeterministic(t *testing.T) {
	a, b := NewLighting(0.2, 45), NewLighting(0.2, 45)
	for range 20 {
		if diff := cmp.Diff(a.Next(), b.Next()); diff != "" {
			t.Fatalf("lighting streams diverged:\n%s", diff)
		}
	}
}

func TestLightDirectionStraightAhead(t *testing.T) {
	d := LightInfo{}.Direction()
	assert.InDelta(t, -1, d.Z, 1e-12)
}

func TestPostProcessingBounds(t *testing.T) {
	p := NewPostProcessing(0.01, 0.5, 0.02)
	for range 500 {
		pp := p.Next()
		assert.GreaterOrEqual(t, pp.BlurKernelSize, 0.0)
		assert.Less(t, pp.BlurKernelSize, 0.01)
		assert.GreaterOrEqual(t, pp.BlurStdDev, 0.0)
		assert.LessOrEqual(t, pp.BlurStdDev, 0.5*pp.BlurKernelSize)
		assert.GreaterOrEqual(t, pp.NoiseStrength, 0.0)
		assert.Less(t, pp.NoiseStrength, 0.02)
	}
}

func TestPostProcessingMaxStrength(t *testing.T) {
	p := NewPostProcessing(0.01, 0.5, 0.02)
	p.MaxStrength = true
	want := PostProcess{BlurKernelSize: 0.01, BlurStdDev: 0.005, NoiseStrength: 0.02}
	for range 3 {
		assert.Equal(t, want, p.Next())
	}
}
