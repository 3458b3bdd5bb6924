package convert

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jpfielding/hdrtools.go/pkg/colorspace"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
)

// fixed converts integer R'G'B' codes with the forward matrix alone; there is
// no closed loop at fixed precision.
func (b *base) fixed(out, in *frame.Frame) error {
	switch {
	case b.modes.Forward == colorspace.ModeRCT:
		return b.fixedRCT(out, in)
	case b.modes.Forward.IsYCbCr():
	default:
		err := fmt.Errorf("%w: %s has no fixed-point path", colorspace.ErrUnsupportedColorTransform, b.modes.Forward)
		if b.params.Strict {
			return err
		}
		slog.Warn("passing samples through", "error", err)
		return passThrough(out, in)
	}

	m := b.fwd.Forward
	q := b.quant
	norm := float64(int(1)<<in.BitDepth - 1)
	yLo, yHi := q.PelRange(false)
	cLo, cHi := q.PelRange(true)
	for i := 0; i < in.Pixels(); i++ {
		rgb := [3]float64{
			float64(in.Int[0][i]) / norm,
			float64(in.Int[1][i]) / norm,
			float64(in.Int[2][i]) / norm,
		}
		ycc := m.Apply(rgb)
		out.Int[0][i] = uint16(clampPel(math.Round(q.LumaWeight*ycc[0]+q.LumaOffset), yLo, yHi))
		out.Int[1][i] = uint16(clampPel(math.Round(q.ChromaWeight*ycc[1]+q.ChromaOffset), cLo, cHi))
		out.Int[2][i] = uint16(clampPel(math.Round(q.ChromaWeight*ycc[2]+q.ChromaOffset), cLo, cHi))
	}
	b.stats.Pixels = in.Pixels()
	b.done()
	return nil
}

// fixedRCT applies the integer reversible colour transform (ITU-T T.800
// annex G). Chroma differences are offset by 2^inBitDepth so they stay unsigned.
func (b *base) fixedRCT(out, in *frame.Frame) error {
	offset := 1 << in.BitDepth
	hi := 1<<out.BitDepth - 1
	for i := 0; i < in.Pixels(); i++ {
		y, cb, cr := rct(int(in.Int[0][i]), int(in.Int[1][i]), int(in.Int[2][i]))
		out.Int[0][i] = uint16(clampPel(float64(y), 0, hi))
		out.Int[1][i] = uint16(clampPel(float64(cb+offset), 0, hi))
		out.Int[2][i] = uint16(clampPel(float64(cr+offset), 0, hi))
	}
	b.stats.Pixels = in.Pixels()
	b.done()
	return nil
}

func clampPel(v float64, lo, hi int) int {
	if v < float64(lo) || math.IsNaN(v) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

// rct is lossless: g = y - floor((cb+cr)/4), r = cr + g, b = cb + g
func rct(r, g, b int) (y, cb, cr int) {
	return (r + 2*g + b) >> 2, b - g, r - g
}
