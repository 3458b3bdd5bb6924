package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaneSizes(t *testing.T) {
	tests := []struct {
		name          string
		w, h          int
		format        Format
		luma, chroma  int
		chromaW, chrH int
	}{
		{"444", 4, 3, Format444, 12, 12, 4, 3},
		{"420 even", 4, 2, Format420, 8, 2, 2, 1},
		{"420 odd", 5, 3, Format420, 15, 6, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFloat(tt.w, tt.h, tt.format)
			assert.Equal(t, tt.luma, f.PlaneSize(0))
			assert.Equal(t, tt.chroma, f.PlaneSize(1))
			cw, ch := f.ChromaSize()
			assert.Equal(t, tt.chromaW, cw)
			assert.Equal(t, tt.chrH, ch)
			assert.NoError(t, f.Validate())
		})
	}
}

func TestValidate(t *testing.T) {
	f := NewInt(4, 4, 10, Format444)
	require.NoError(t, f.Validate())
	assert.False(t, f.IsFloat)

	f.Int[2] = f.Int[2][:3]
	err := f.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))

	empty := &Frame{}
	assert.Error(t, empty.Validate())

	for _, depth := range []int{0, 17} {
		g := NewInt(2, 2, depth, Format444)
		assert.ErrorIs(t, g.Validate(), ErrShape, "depth %d", depth)
	}
	assert.NoError(t, NewFloat(2, 2, Format444).Validate(), "float frames carry no bit depth")
}

func TestFormatText(t *testing.T) {
	var f Format
	require.NoError(t, f.UnmarshalText([]byte("4:2:0")))
	assert.Equal(t, Format420, f)
	b, _ := f.MarshalText()
	assert.Equal(t, "420", string(b))
	assert.Error(t, f.UnmarshalText([]byte("422")))
	assert.True(t, SameLayout(NewFloat(2, 2, Format420), NewInt(2, 2, 10, Format420)))
	assert.False(t, SameLayout(NewFloat(2, 2, Format444), NewInt(2, 2, 10, Format420)))
}

func TestArenaReuse(t *testing.T) {
	a := NewArena()
	p1, err := a.Ensure(3, 16)
	require.NoError(t, err)
	require.Len(t, p1, 3)
	p1[2][15] = 42

	p2, err := a.Ensure(3, 16)
	require.NoError(t, err)
	assert.Equal(t, 42.0, p2[2][15], "same geometry returns the same storage")
	assert.Same(t, &p1[0][0], &p2[0][0])

	p3, err := a.Ensure(3, 8)
	require.NoError(t, err)
	assert.Len(t, p3[0], 8)
	assert.Equal(t, 48, a.Allocated(), "shrinking keeps the larger backing store")

	p4, err := a.Ensure(2, 64)
	require.NoError(t, err)
	assert.Len(t, p4, 2)
	assert.Len(t, p4[1], 64)
	assert.Equal(t, 128, a.Allocated())
}

func TestArenaExhausted(t *testing.T) {
	a := &Arena{MaxSamples: 100}
	_, err := a.Ensure(3, 40)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResourceExhausted))

	_, err = a.Ensure(0, 10)
	assert.True(t, errors.Is(err, ErrShape))
}
