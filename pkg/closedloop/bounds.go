package closedloop

import "math"

// Bounds is a luma index interval known to contain the best code
type Bounds struct {
	Low, High int
	// Overflow is set when the naive upper bound pushed a channel past 1.0
	Overflow bool
}

// EstimateBounds computes the feasible luma interval for a target linear
// luminance and dequantized chroma.
func (e *Engine) EstimateBounds(yLinear, u, v float64) Bounds {
	if e.cfg.NoBounds {
		return Bounds{Low: 0, High: e.maxK}
	}
	color := e.Color(u, v)
	t := e.cfg.TF.FromLinear(yLinear)
	return e.bounds(t, e.channelBounds(t, color), color)
}

// channelBounds is, per channel, the normalized luma at which that channel
// alone reconstructs to the target
func (e *Engine) channelBounds(tfOfYo float64, color [3]float64) [3]float64 {
	var b [3]float64
	for c := range b {
		b[c] = e.cfg.Inverse[c][0]*tfOfYo - color[c]
	}
	return b
}

func (e *Engine) bounds(tfOfYo float64, b [3]float64, color [3]float64) Bounds {
	lw := e.cfg.Quant.LumaWeight
	lo := math.Min(b[0], math.Min(b[1], b[2]))
	hi := math.Max(b[0], math.Max(b[1], b[2]))

	bd := Bounds{
		Low: e.index(math.Floor(clip(lw*lo, 0, lw))),
		// a convex decode curve puts the luminance at Y'=tf(Yo) at or above the target
		High: e.index(math.Ceil(clip(lw*tfOfYo, 0, lw))),
	}
	yp := e.cfg.Quant.LumaNorm(bd.High)
	for c := 0; c < 3; c++ {
		if e.cfg.Inverse[c][0]*yp+color[c] > 1 {
			bd.Overflow = true
			break
		}
	}
	if bd.Overflow {
		// clipping breaks the convexity argument; every channel at or above its bound is safe
		bd.High = e.index(math.Ceil(clip(lw*hi, 0, lw)))
	}
	if bd.Low > bd.High {
		bd.Low, bd.High = bd.High, bd.Low
	}
	return bd
}

// index clamps a float code to a valid luma index
func (e *Engine) index(v float64) int {
	k := int(v)
	if k < 0 {
		return 0
	}
	if k > e.maxK {
		return e.maxK
	}
	return k
}

// allAgree returns the common rounded code when the three channel bounds land on it
func (e *Engine) allAgree(b [3]float64) (int, bool) {
	lw := e.cfg.Quant.LumaWeight
	k := e.index(math.Round(lw * b[0]))
	for c := 1; c < 3; c++ {
		if e.index(math.Round(lw*b[c])) != k {
			return 0, false
		}
	}
	return k, true
}
