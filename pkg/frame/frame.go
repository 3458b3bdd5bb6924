// Package frame holds planar pixel buffers passed between the pipeline driver and the converters
package frame

import (
	"errors"
	"fmt"
)

// ErrShape is returned when plane sizes do not match the declared geometry
var ErrShape = errors.New("frame shape mismatch")

// Format is the chroma sampling of the second and third planes
type Format int

const (
	Format444 Format = iota
	Format420
)

func (f Format) String() string {
	switch f {
	case Format444:
		return "444"
	case Format420:
		return "420"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Format) UnmarshalText(b []byte) error {
	switch string(b) {
	case "444", "4:4:4":
		*f = Format444
	case "420", "4:2:0":
		*f = Format420
	default:
		return fmt.Errorf("unknown chroma format %q", string(b))
	}
	return nil
}

// Frame is a three component planar image. Float frames keep samples in
// Float, integer frames in Int; the other set is nil.
type Frame struct {
	Width    int
	Height   int
	BitDepth int
	Format   Format
	IsFloat  bool

	Float [3][]float32
	Int   [3][]uint16
}

// NewFloat allocates a floating point frame
func NewFloat(width, height int, format Format) *Frame {
	f := &Frame{Width: width, Height: height, Format: format, IsFloat: true}
	for c := 0; c < 3; c++ {
		f.Float[c] = make([]float32, f.PlaneSize(c))
	}
	return f
}

// NewInt allocates an integer frame for bitDepth samples
func NewInt(width, height, bitDepth int, format Format) *Frame {
	f := &Frame{Width: width, Height: height, BitDepth: bitDepth, Format: format}
	for c := 0; c < 3; c++ {
		f.Int[c] = make([]uint16, f.PlaneSize(c))
	}
	return f
}

// ChromaSize returns the chroma plane dimensions
func (f *Frame) ChromaSize() (w, h int) {
	if f.Format == Format420 {
		return (f.Width + 1) / 2, (f.Height + 1) / 2
	}
	return f.Width, f.Height
}

// PlaneSize returns the number of samples in component c
func (f *Frame) PlaneSize(c int) int {
	if c == 0 {
		return f.Width * f.Height
	}
	w, h := f.ChromaSize()
	return w * h
}

// Pixels is the luma sample count
func (f *Frame) Pixels() int { return f.Width * f.Height }

// Validate checks that every plane has the declared size
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrShape, f.Width, f.Height)
	}
	if !f.IsFloat && (f.BitDepth < 1 || f.BitDepth > 16) {
		return fmt.Errorf("%w: integer frame bit depth %d outside [1,16]", ErrShape, f.BitDepth)
	}
	for c := 0; c < 3; c++ {
		n := len(f.Int[c])
		if f.IsFloat {
			n = len(f.Float[c])
		}
		if n != f.PlaneSize(c) {
			return fmt.Errorf("%w: component %d has %d samples, want %d", ErrShape, c, n, f.PlaneSize(c))
		}
	}
	return nil
}

// SameLayout reports whether both frames have the same luma size and chroma format
func SameLayout(a, b *Frame) bool {
	return a.Width == b.Width && a.Height == b.Height && a.Format == b.Format
}
