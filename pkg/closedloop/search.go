package closedloop

import "math"

// PixelContext is the per-pixel search state
type PixelContext struct {
	YLinear float64 // search target
	YScene  float64 // bound target, equal to YLinear unless display light differs from scene light
	U, V    float64 // dequantized chroma

	// chroma-only contribution to each reconstructed channel
	RColor, GColor, BColor float64

	Low, High          int
	YConvMin, YConvMax float64
	HasMin, HasMax     bool
}

// NewPixel prepares a context for target yLinear and dequantized chroma
func (e *Engine) NewPixel(yLinear, u, v float64) PixelContext {
	c := e.Color(u, v)
	return PixelContext{
		YLinear: yLinear,
		YScene:  yLinear,
		U:       u,
		V:       v,
		RColor:  c[0],
		GColor:  c[1],
		BColor:  c[2],
	}
}

func (p *PixelContext) color() [3]float64 {
	return [3]float64{p.RColor, p.GColor, p.BColor}
}

// Result describes how a code was found
type Result struct {
	Code       int
	Iterations int
	Shortcut   bool // all-agree shortcut, no search
	Exhausted  bool // iteration budget spent before the bracket closed
	Overflow   bool
}

// SolveLuma finds the luma index for p, evaluating the full inverse matrix at every step
func (e *Engine) SolveLuma(p *PixelContext) Result {
	return e.solve(p, func(k int) float64 {
		return e.YConv(k, e.Color(p.U, p.V))
	})
}

// SolveLumaFast is SolveLuma using the colour impact precomputed in p
func (e *Engine) SolveLumaFast(p *PixelContext) Result {
	color := p.color()
	return e.solve(p, func(k int) float64 {
		return e.YConv(k, color)
	})
}

func (e *Engine) solve(p *PixelContext, eval func(int) float64) Result {
	var overflow bool
	if e.cfg.NoBounds {
		p.Low, p.High = 0, e.maxK
	} else {
		color := p.color()
		t := e.cfg.TF.FromLinear(p.YScene)
		b := e.channelBounds(t, color)
		if k, ok := e.allAgree(b); ok {
			return Result{Code: k, Shortcut: true}
		}
		bd := e.bounds(t, b, color)
		p.Low, p.High, overflow = bd.Low, bd.High, bd.Overflow
	}
	r := e.bisect(p, p.YLinear, eval)
	r.Overflow = overflow
	return r
}

// Search bisects the bracket already set in p without the all-agree shortcut
func (e *Engine) Search(p *PixelContext) Result {
	color := p.color()
	return e.bisect(p, p.YLinear, func(k int) float64 {
		return e.YConv(k, color)
	})
}

// bisect narrows [p.Low, p.High] around target for a non-decreasing eval and
// returns whichever endpoint of the final bracket is closer.
func (e *Engine) bisect(p *PixelContext, target float64, eval func(int) float64) Result {
	if p.Low > p.High {
		p.Low, p.High = p.High, p.Low
	}
	p.HasMin, p.HasMax = false, false
	var r Result
	for p.High-p.Low > 1 && r.Iterations < e.cfg.MaxIterations {
		mid := (p.Low + p.High) / 2
		y := eval(mid)
		r.Iterations++
		if y < target {
			p.Low, p.YConvMin, p.HasMin = mid, y, true
		} else {
			p.High, p.YConvMax, p.HasMax = mid, y, true
		}
	}
	r.Exhausted = p.High-p.Low > 1
	if p.Low == p.High {
		r.Code = p.Low
		return r
	}
	if !p.HasMin {
		p.YConvMin, p.HasMin = eval(p.Low), true
	}
	if !p.HasMax {
		p.YConvMax, p.HasMax = eval(p.High), true
	}
	ref := e.domain(target)
	dMin := math.Abs(e.domain(p.YConvMin) - ref)
	dMax := math.Abs(e.domain(p.YConvMax) - ref)
	if dMin <= dMax {
		r.Code = p.Low
	} else {
		r.Code = p.High
	}
	return r
}
