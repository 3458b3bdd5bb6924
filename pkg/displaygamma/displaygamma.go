// Package displaygamma adjusts linear light between scene and display referred
// domains, as HLG requires around its transfer function.
package displaygamma

import "math"

// Adjuster converts linear RGB between scene light and display light
type Adjuster interface {
	ToDisplay(rgb [3]float64) [3]float64
	ToScene(rgb [3]float64) [3]float64
}

// Identity leaves samples untouched
type Identity struct{}

func (Identity) ToDisplay(rgb [3]float64) [3]float64 { return rgb }
func (Identity) ToScene(rgb [3]float64) [3]float64   { return rgb }

// HLG applies the BT.2100 HLG OOTF with a luminance-driven system gamma
type HLG struct {
	Gamma   float64
	Weights [3]float64
}

// NominalPeak is the display peak for which the HLG system gamma is 1.2
const NominalPeak = 1000.0

// NewHLG returns the OOTF for a display of peakNits using weights for luminance
func NewHLG(peakNits float64, weights [3]float64) HLG {
	if peakNits <= 0 {
		peakNits = NominalPeak
	}
	return HLG{Gamma: SystemGamma(peakNits), Weights: weights}
}

// SystemGamma is 1.2 + 0.42*log10(Lw/1000)
func SystemGamma(peakNits float64) float64 {
	return 1.2 + 0.42*math.Log10(peakNits/NominalPeak)
}

func (h HLG) luma(rgb [3]float64) float64 {
	return h.Weights[0]*rgb[0] + h.Weights[1]*rgb[1] + h.Weights[2]*rgb[2]
}

func scale(rgb [3]float64, s float64) [3]float64 {
	return [3]float64{rgb[0] * s, rgb[1] * s, rgb[2] * s}
}

func (h HLG) ToDisplay(rgb [3]float64) [3]float64 {
	y := h.luma(rgb)
	if y <= 0 {
		return [3]float64{}
	}
	return scale(rgb, math.Pow(y, h.Gamma-1))
}

func (h HLG) ToScene(rgb [3]float64) [3]float64 {
	y := h.luma(rgb)
	if y <= 0 {
		return [3]float64{}
	}
	ys := math.Pow(y, 1/h.Gamma)
	return scale(rgb, math.Pow(ys, 1-h.Gamma))
}
