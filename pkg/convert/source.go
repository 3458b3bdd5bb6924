package convert

import "github.com/jpfielding/hdrtools.go/pkg/frame"

// Source decides where the closed-loop luminance target comes from
type Source interface {
	isSource()
}

// DirectSource takes the target from the frame being converted
type DirectSource struct{}

// AlternateSource takes the target from a second, higher precision frame of
// the same size, scaled by NormScale.
type AlternateSource struct {
	Frame     *frame.Frame
	NormScale float64
}

func (DirectSource) isSource()    {}
func (AlternateSource) isSource() {}

type options struct {
	source Source
}

// Option adjusts converter construction
type Option func(*options)

// WithSource sets the luminance target source; only the tele variant accepts an AlternateSource
func WithSource(s Source) Option {
	return func(o *options) { o.source = s }
}
