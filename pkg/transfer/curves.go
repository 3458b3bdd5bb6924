package transfer

import "math"

// PQ constants from SMPTE ST 2084
const (
	pqM1 = 2610.0 / 16384.0
	pqM2 = 2523.0 / 4096.0 * 128.0
	pqC1 = 3424.0 / 4096.0
	pqC2 = 2413.0 / 4096.0 * 32.0
	pqC3 = 2392.0 / 4096.0 * 32.0
)

// PQ is the perceptual quantizer; linear 1.0 is 10000 cd/m2
type PQ struct{}

func (PQ) ToLinear(v float64) float64 {
	v = clamp01(v)
	p := math.Pow(v, 1/pqM2)
	num := p - pqC1
	if num < 0 {
		num = 0
	}
	return math.Pow(num/(pqC2-pqC3*p), 1/pqM1)
}

func (PQ) FromLinear(v float64) float64 {
	v = clamp01(v)
	p := math.Pow(v, pqM1)
	return math.Pow((pqC1+pqC2*p)/(1+pqC3*p), pqM2)
}

// HLG constants from ITU-R BT.2100
const (
	hlgA = 0.17883277
	hlgB = 1 - 4*hlgA
)

var hlgC = 0.5 - hlgA*math.Log(4*hlgA)

// HLG is the hybrid log-gamma OETF and its inverse (scene light)
type HLG struct{}

func (HLG) ToLinear(v float64) float64 {
	v = clamp01(v)
	if v <= 0.5 {
		return v * v / 3
	}
	return (math.Exp((v-hlgC)/hlgA) + hlgB) / 12
}

func (HLG) FromLinear(v float64) float64 {
	v = clamp01(v)
	if v <= 1.0/12.0 {
		return math.Sqrt(3 * v)
	}
	return hlgA*math.Log(12*v-hlgB) + hlgC
}

// BT709 is the Rec. 709 camera OETF and its inverse
type BT709 struct{}

func (BT709) ToLinear(v float64) float64 {
	v = clamp01(v)
	if v < 4.5*0.018053968510807 {
		return v / 4.5
	}
	return math.Pow((v+0.09929682680944)/1.09929682680944, 1/0.45)
}

func (BT709) FromLinear(v float64) float64 {
	v = clamp01(v)
	if v < 0.018053968510807 {
		return 4.5 * v
	}
	return 1.09929682680944*math.Pow(v, 0.45) - 0.09929682680944
}

// SRGB is the IEC 61966-2-1 curve
type SRGB struct{}

func (SRGB) ToLinear(v float64) float64 {
	v = clamp01(v)
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func (SRGB) FromLinear(v float64) float64 {
	v = clamp01(v)
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

// Power is a pure power-law gamma
type Power struct {
	Gamma float64
}

func (p Power) ToLinear(v float64) float64 {
	return math.Pow(clamp01(v), p.Gamma)
}

func (p Power) FromLinear(v float64) float64 {
	return math.Pow(clamp01(v), 1/p.Gamma)
}

// Linear passes values through
type Linear struct{}

func (Linear) ToLinear(v float64) float64   { return clamp01(v) }
func (Linear) FromLinear(v float64) float64 { return clamp01(v) }
