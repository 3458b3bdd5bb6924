package closedloop

import (
	"fmt"
	"strings"
)

// Mode selects which component(s) the closed loop treats as free
type Mode int

const (
	ModeNull  Mode = iota // open loop
	ModeBase              // luma free
	ModeBase2             // luma free, keep the open-loop code when it is closer
	ModeBase3             // Cb against linear B, then luma
	ModeBase4             // Cr against linear R, Cb against linear B, then luma
)

var modeNames = [...]string{"NULL", "BASE", "BASE2", "BASE3", "BASE4"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	if s == "" || s == "NONE" {
		return ModeNull, nil
	}
	return ModeNull, fmt.Errorf("unknown closed loop mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) (err error) {
	*m, err = ParseMode(string(b))
	return err
}

// Pixel is one input sample handed to a Solver
type Pixel struct {
	Linear  [3]float64 // linear RGB in output primaries, the light the transfer function codes
	YLinear float64    // luminance target
	YScene  float64    // bound target
}

// Solution is a full set of codes for a pixel
type Solution struct {
	Luma   int // luma index, stored code is Luma + round(LumaOffset)
	Cb, Cr int // chroma codes
	Result
}

// Solver picks codes for one pixel
type Solver func(px Pixel) Solution

// Solver returns the pure function implementing m
func (e *Engine) Solver(m Mode) Solver {
	switch m {
	case ModeBase:
		return e.SolveBase
	case ModeBase2:
		return e.SolveBase2
	case ModeBase3:
		return e.SolveBase3
	case ModeBase4:
		return e.SolveBase4
	}
	return e.SolveNull
}

type openLoop struct {
	y      float64 // unquantized normalized luma
	k      int
	cb, cr int
}

// OpenLoop is the unquantized Y'CbCr of the plain matrix transform
func (e *Engine) OpenLoop(px Pixel) [3]float64 {
	var coded [3]float64
	for c := range coded {
		coded[c] = e.cfg.TF.FromLinear(px.Linear[c])
	}
	return e.cfg.Forward.Apply(coded)
}

func (e *Engine) openLoop(px Pixel) openLoop {
	ycc := e.OpenLoop(px)
	q := e.cfg.Quant
	return openLoop{
		y:  ycc[0],
		k:  q.LumaIndex(ycc[0]),
		cb: q.QuantizeChroma(ycc[1]),
		cr: q.QuantizeChroma(ycc[2]),
	}
}

func (e *Engine) lumaFor(px Pixel, cb, cr int) Result {
	q := e.cfg.Quant
	p := e.NewPixel(px.YLinear, q.DequantizeChroma(cb), q.DequantizeChroma(cr))
	p.YScene = px.YScene
	return e.SolveLuma(&p)
}

// SolveNull is the plain matrix transform
func (e *Engine) SolveNull(px Pixel) Solution {
	ol := e.openLoop(px)
	return Solution{Luma: ol.k, Cb: ol.cb, Cr: ol.cr, Result: Result{Code: ol.k}}
}

// SolveBase keeps open-loop chroma and searches luma
func (e *Engine) SolveBase(px Pixel) Solution {
	ol := e.openLoop(px)
	r := e.lumaFor(px, ol.cb, ol.cr)
	return Solution{Luma: r.Code, Cb: ol.cb, Cr: ol.cr, Result: r}
}

// SolveBase2 searches luma, then keeps whichever of the closed-loop and
// open-loop codes reconstructs closer to the target.
func (e *Engine) SolveBase2(px Pixel) Solution {
	ol := e.openLoop(px)
	r := e.lumaFor(px, ol.cb, ol.cr)
	q := e.cfg.Quant
	color := e.Color(q.DequantizeChroma(ol.cb), q.DequantizeChroma(ol.cr))
	closed := e.Distance(e.YConv(r.Code, color), px.YLinear)
	open := e.Distance(e.YConv(ol.k, color), px.YLinear)
	if open < closed {
		r.Code = ol.k
	}
	return Solution{Luma: r.Code, Cb: ol.cb, Cr: ol.cr, Result: r}
}

// SolveBase3 picks Cb so linear blue matches at the open-loop luma, then searches luma
func (e *Engine) SolveBase3(px Pixel) Solution {
	ol := e.openLoop(px)
	q := e.cfg.Quant
	cb, rc, ok := e.freeChroma(2, 1, ol.y, q.DequantizeChroma(ol.cr), px.Linear[2])
	if !ok {
		return e.SolveBase(px)
	}
	r := e.lumaFor(px, cb, ol.cr)
	return Solution{Luma: r.Code, Cb: cb, Cr: ol.cr, Result: merge(r, rc)}
}

// SolveBase4 picks Cr against linear red, then Cb against linear blue, then searches luma
func (e *Engine) SolveBase4(px Pixel) Solution {
	ol := e.openLoop(px)
	q := e.cfg.Quant
	cr, rr, ok := e.freeChroma(0, 2, ol.y, q.DequantizeChroma(ol.cb), px.Linear[0])
	if !ok {
		return e.SolveBase(px)
	}
	cb, rb, ok := e.freeChroma(2, 1, ol.y, q.DequantizeChroma(cr), px.Linear[2])
	if !ok {
		return e.SolveBase(px)
	}
	r := e.lumaFor(px, cb, cr)
	return Solution{Luma: r.Code, Cb: cb, Cr: cr, Result: merge(r, rr, rb)}
}

// freeChroma searches the code of chroma column col (1 Cb, 2 Cr) that brings
// channel ch closest to target with luma held at yp and the other chroma
// fixed. It fails when the channel does not increase with that chroma.
func (e *Engine) freeChroma(ch, col int, yp, other, target float64) (int, Result, bool) {
	m := e.cfg.Inverse
	if m[ch][col] <= 0 {
		return 0, Result{}, false
	}
	q := e.cfg.Quant
	base := m[ch][0]*yp + m[ch][3-col]*other
	p := PixelContext{Low: q.QuantizeChroma(-0.5), High: q.QuantizeChroma(0.5)}
	r := e.bisect(&p, target, func(code int) float64 {
		return e.cfg.TF.ToLinear(base + m[ch][col]*q.DequantizeChroma(code))
	})
	return r.Code, r, true
}

// merge folds chroma search counters into the luma result
func merge(r Result, others ...Result) Result {
	for _, o := range others {
		r.Iterations += o.Iterations
		r.Exhausted = r.Exhausted || o.Exhausted
	}
	return r
}

// SolveBaseFast is SolveBase with the colour impact precomputed once per pixel
func (e *Engine) SolveBaseFast(px Pixel) Solution {
	ol := e.openLoop(px)
	q := e.cfg.Quant
	p := e.NewPixel(px.YLinear, q.DequantizeChroma(ol.cb), q.DequantizeChroma(ol.cr))
	p.YScene = px.YScene
	r := e.SolveLumaFast(&p)
	return Solution{Luma: r.Code, Cb: ol.cb, Cr: ol.cr, Result: r}
}
