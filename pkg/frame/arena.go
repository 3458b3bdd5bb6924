package frame

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrResourceExhausted is returned when scratch storage cannot be provided
var ErrResourceExhausted = errors.New("resource exhausted")

// DefaultMaxSamples caps a single arena at 8K 4:4:4 with a few extra planes
const DefaultMaxSamples = 7680 * 4320 * 8

// Arena is resize-on-demand scratch storage for per-frame intermediate planes.
// It is owned by one converter and is not safe for concurrent use.
type Arena struct {
	MaxSamples int

	buf    []float64
	planes [][]float64
	size   int
}

// NewArena returns an empty arena with the default cap
func NewArena() *Arena {
	return &Arena{MaxSamples: DefaultMaxSamples}
}

// Ensure returns count planes of size samples each. Storage is reused while
// the requested geometry stays the same and reallocated when it changes.
func (a *Arena) Ensure(count, size int) ([][]float64, error) {
	if count <= 0 || size <= 0 {
		return nil, fmt.Errorf("%w: invalid arena request %d x %d", ErrShape, count, size)
	}
	limit := a.MaxSamples
	if limit <= 0 {
		limit = DefaultMaxSamples
	}
	if size > limit/count {
		return nil, fmt.Errorf("%w: %d planes of %d samples exceeds %d", ErrResourceExhausted, count, size, limit)
	}
	if len(a.planes) == count && a.size == size {
		return a.planes, nil
	}
	total := count * size
	if cap(a.buf) < total {
		slog.Debug("arena allocate", slog.Int("planes", count), slog.Int("size", size))
		a.buf = make([]float64, total)
	}
	a.buf = a.buf[:total]
	a.planes = make([][]float64, count)
	for i := range a.planes {
		a.planes[i] = a.buf[i*size : (i+1)*size : (i+1)*size]
	}
	a.size = size
	return a.planes, nil
}

// Allocated reports the number of samples currently backed by the arena
func (a *Arena) Allocated() int { return cap(a.buf) }
