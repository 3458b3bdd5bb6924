package convert

import (
	"fmt"

	"github.com/jpfielding/hdrtools.go/pkg/closedloop"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
)

// tele precomputes each pixel's colour impact once so the search only adds
// luma. The target may come from an alternate, higher precision frame.
type tele struct {
	*base
	source Source
}

func (t *tele) Process(out, in *frame.Frame) error {
	if done, err := t.run(out, in, false); done {
		return err
	}
	planes, err := t.prepare(in, 0, nil)
	if err != nil {
		return err
	}
	switch src := t.source.(type) {
	case AlternateSource:
		if err := t.alternateTarget(planes, in, src); err != nil {
			return err
		}
	case DirectSource, nil:
	default:
		return fmt.Errorf("unknown source %T", src)
	}

	solve := t.engine.SolveBaseFast
	if t.params.ClosedLoop == closedloop.ModeNull || t.openOnly {
		solve = t.engine.SolveNull
	}
	for i := 0; i < in.Pixels(); i++ {
		s := solve(pixelAt(planes, i))
		t.stats.add(s.Result)
		t.put(out, i, s)
	}
	t.done()
	return nil
}

// alternateTarget replaces the luminance target with that of the alternate frame
func (t *tele) alternateTarget(planes [][]float64, in *frame.Frame, src AlternateSource) error {
	alt := src.Frame
	if alt == nil || !alt.IsFloat || alt.Width != in.Width || alt.Height != in.Height || alt.Format != frame.Format444 {
		return fmt.Errorf("%w: alternate source must be a float 4:4:4 frame of the input size", frame.ErrShape)
	}
	if err := alt.Validate(); err != nil {
		return fmt.Errorf("alternate source: %w", err)
	}
	w := t.modes.Weights
	for i := 0; i < in.Pixels(); i++ {
		rgb := [3]float64{float64(alt.Float[0][i]), float64(alt.Float[1][i]), float64(alt.Float[2][i])}
		if t.modes.HasGamut {
			rgb = t.modes.Gamut.Apply(rgb)
		}
		y := (w[0]*rgb[0] + w[1]*rgb[1] + w[2]*rgb[2]) * src.NormScale
		planes[planeTarget][i] = y
		planes[planeScene][i] = y
	}
	return nil
}
