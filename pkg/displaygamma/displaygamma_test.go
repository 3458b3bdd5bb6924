package displaygamma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var w2020 = [3]float64{0.2627, 0.6780, 0.0593}

func TestSystemGamma(t *testing.T) {
	assert.InDelta(t, 1.2, SystemGamma(1000), 1e-12)
	assert.InDelta(t, 1.2+0.42*0.3010299957, SystemGamma(2000), 1e-9)
	assert.InDelta(t, 1.2, NewHLG(0, w2020).Gamma, 1e-12)
}

func TestHLGRoundTrip(t *testing.T) {
	h := NewHLG(1000, w2020)
	samples := [][3]float64{
		{1, 1, 1},
		{0.5, 0.25, 0.125},
		{1, 0, 0},
		{0.001, 0.002, 0.0005},
	}
	for _, s := range samples {
		d := h.ToDisplay(s)
		back := h.ToScene(d)
		for c := 0; c < 3; c++ {
			assert.InDelta(t, s[c], back[c], 1e-12)
		}
		// display luminance is scene luminance raised to the system gamma
		assert.InDelta(t, math.Pow(h.luma(s), h.Gamma), h.luma(d), 1e-12)
	}
}

func TestHLGBlack(t *testing.T) {
	h := NewHLG(1000, w2020)
	assert.Equal(t, [3]float64{}, h.ToDisplay([3]float64{}))
	assert.Equal(t, [3]float64{}, h.ToScene([3]float64{}))
}

func TestIdentity(t *testing.T) {
	var a Adjuster = Identity{}
	v := [3]float64{0.1, 0.2, 0.3}
	assert.Equal(t, v, a.ToDisplay(v))
	assert.Equal(t, v, a.ToScene(v))
}
