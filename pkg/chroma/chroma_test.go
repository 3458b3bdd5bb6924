package chroma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const step = 1.0 / 65535

func TestEncodeDecode(t *testing.T) {
	for _, c := range []float64{-0.5, -0.25, 0, 0.1234, 0.5} {
		assert.InDelta(t, c, decode(encode(c)), step)
	}
	assert.Equal(t, uint16(0), encode(-3))
	assert.Equal(t, uint16(65535), encode(3))
}

func TestConstantPlane(t *testing.T) {
	r := NewResize()
	w, h := 8, 6
	src := make([]float64, w*h)
	for i := range src {
		src[i] = 0.2
	}
	cw, ch := HalfSize(w, h)
	half := make([]float64, cw*ch)
	r.Down(half, src, w, h)
	for _, v := range half {
		assert.InDelta(t, 0.2, v, 2*step)
	}

	full := make([]float64, w*h)
	r.Up(full, half, w, h)
	for _, v := range full {
		assert.InDelta(t, 0.2, v, 4*step)
	}
}

func TestOddSize(t *testing.T) {
	r := NewResize()
	w, h := 5, 3
	cw, ch := HalfSize(w, h)
	assert.Equal(t, 3, cw)
	assert.Equal(t, 2, ch)

	src := make([]float64, w*h)
	for i := range src {
		src[i] = -0.1
	}
	half := make([]float64, cw*ch)
	r.Down(half, src, w, h)
	full := make([]float64, w*h)
	r.Up(full, half, w, h)
	for _, v := range full {
		assert.InDelta(t, -0.1, v, 4*step)
	}
}

func TestDownAverages(t *testing.T) {
	r := NewResize()
	// left half -0.2, right half 0.2: decimated values stay within the input span
	w, h := 8, 4
	src := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				src[y*w+x] = -0.2
			} else {
				src[y*w+x] = 0.2
			}
		}
	}
	half := make([]float64, 4*2)
	r.Down(half, src, w, h)
	for _, v := range half {
		assert.GreaterOrEqual(t, v, -0.2-2*step)
		assert.LessOrEqual(t, v, 0.2+2*step)
	}
	assert.Less(t, half[0], 0.0)
	assert.Greater(t, half[3], 0.0)
}
