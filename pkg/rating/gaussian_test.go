package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVNonDraw(t *testing.T) {
	// At an even match the correction is pdf(0)/cdf(0).
	assert.InDelta(t, 0.7978845608, vNonDraw(0, 0), 1e-9)

	// An upset (performance difference against the winner) yields a
	// larger correction than an even match.
	assert.Greater(t, vNonDraw(-1, 0), vNonDraw(0, 0))
	assert.Greater(t, vNonDraw(0, 0), vNonDraw(1, 0))
}

func TestWNonDraw(t *testing.T) {
	v := vNonDraw(0, 0)
	assert.InDelta(t, v*v, wNonDraw(0, 0), 1e-12)

	// Variance correction stays in (0, 1) for sane inputs.
	for _, x := range []float64{-2, -1, 0, 1, 2} {
		w := wNonDraw(x, 0)
		assert.Greater(t, w, 0.0, "t=%f", x)
		assert.Less(t, w, 1.0, "t=%f", x)
	}
}

func TestVDrawAntisymmetric(t *testing.T) {
	for _, tt := range []struct{ tVal, eVal float64 }{
		{0.5, 0.3},
		{1.2, 0.74},
		{0.1, 1.0},
	} {
		assert.InDelta(t, -vDraw(-tt.tVal, tt.eVal), vDraw(tt.tVal, tt.eVal), 1e-12)
	}

	// Level performances in a draw leave the means alone.
	assert.InDelta(t, 0.0, vDraw(0, 0.5), 1e-12)
}

func TestDrawZeroDenominator(t *testing.T) {
	// Far outside the draw margin the window probability underflows;
	// the guards return 0 instead of NaN.
	assert.Equal(t, 0.0, vDraw(100, 1e-12))
	assert.Equal(t, 0.0, wDraw(100, 1e-12))
}

func TestWDrawPositive(t *testing.T) {
	assert.Greater(t, wDraw(0, 0.5), 0.0)
	assert.Greater(t, wDraw(0.3, 0.5), 0.0)
}
