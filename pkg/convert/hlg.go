package convert

import (
	"github.com/jpfielding/hdrtools.go/pkg/chroma"
	"github.com/jpfielding/hdrtools.go/pkg/closedloop"
	"github.com/jpfielding/hdrtools.go/pkg/displaygamma"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
)

// hlg takes display light in, codes scene light and matches display
// luminance. 4:2:0 output is resampled here since the correction has to see
// the chroma a decoder will reconstruct.
type hlg struct {
	*base
	ootf      displaygamma.HLG
	resampler chroma.Resampler
}

func newHLG(b *base) *hlg {
	return &hlg{
		base:      b,
		ootf:      displaygamma.NewHLG(b.params.DisplayPeakNits, b.modes.Weights),
		resampler: chroma.NewResize(),
	}
}

// extra arena planes for 4:2:0 output
const (
	planeCbFull = planeCount + iota
	planeCrFull
	planeCbHalf
	planeCrHalf
	hlgExtra = 4
)

func (h *hlg) Process(out, in *frame.Frame) error {
	if done, err := h.run(out, in, true); done {
		return err
	}
	planes, err := h.prepare(in, hlgExtra, h.ootf.ToScene)
	if err != nil {
		return err
	}
	mode := h.params.ClosedLoop
	if h.openOnly {
		mode = closedloop.ModeNull
	}
	if out.Format == frame.Format420 {
		h.process420(out, in, planes, mode)
	} else {
		solve := h.engine.Solver(mode)
		for i := 0; i < in.Pixels(); i++ {
			s := solve(pixelAt(planes, i))
			h.stats.add(s.Result)
			h.put(out, i, s)
		}
	}
	h.done()
	return nil
}

// process420 decimates open-loop chroma, stores its codes, then searches luma
// against the upsampled decoded chroma.
func (h *hlg) process420(out, in *frame.Frame, planes [][]float64, mode closedloop.Mode) {
	w, ht := in.Width, in.Height
	n := in.Pixels()
	cw, ch := chroma.HalfSize(w, ht)
	cbFull, crFull := planes[planeCbFull], planes[planeCrFull]
	cbHalf, crHalf := planes[planeCbHalf][:cw*ch], planes[planeCrHalf][:cw*ch]

	for i := 0; i < n; i++ {
		ycc := h.engine.OpenLoop(pixelAt(planes, i))
		cbFull[i], crFull[i] = ycc[1], ycc[2]
	}
	h.resampler.Down(cbHalf, cbFull, w, ht)
	h.resampler.Down(crHalf, crFull, w, ht)

	q := h.quant
	for j := range cbHalf {
		cb, cr := q.QuantizeChroma(cbHalf[j]), q.QuantizeChroma(crHalf[j])
		h.putChroma(out, j, cb, cr)
		cbHalf[j], crHalf[j] = q.DequantizeChroma(cb), q.DequantizeChroma(cr)
	}
	h.resampler.Up(cbFull, cbHalf, w, ht)
	h.resampler.Up(crFull, crHalf, w, ht)

	for i := 0; i < n; i++ {
		px := pixelAt(planes, i)
		if mode == closedloop.ModeNull {
			k := q.LumaIndex(h.engine.OpenLoop(px)[0])
			h.stats.add(closedloop.Result{Code: k})
			h.putLuma(out, i, k)
			continue
		}
		p := h.engine.NewPixel(px.YLinear, cbFull[i], crFull[i])
		p.YScene = px.YScene
		r := h.engine.SolveLuma(&p)
		h.stats.add(r)
		h.putLuma(out, i, r.Code)
	}
}
