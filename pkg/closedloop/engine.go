// Package closedloop picks integer luma codes by modelling the decoder.
//
// Given a target linear luminance and chroma that has already been quantized,
// the engine bounds the feasible luma codes analytically and bisects that
// interval, reconstructing every candidate through the inverse matrix and the
// transfer function exactly as a decoder would.
package closedloop

import (
	"errors"
	"fmt"
	"math"

	"github.com/jpfielding/hdrtools.go/pkg/colorspace"
	"github.com/jpfielding/hdrtools.go/pkg/displaygamma"
	"github.com/jpfielding/hdrtools.go/pkg/transfer"
)

// DefaultMaxIterations covers a full 16 bit luma range
const DefaultMaxIterations = 16

// recon values below this are treated as black by the multiplicative shortcut
const minRecon = 1e-10

// Config holds the per-converter constants the engine needs
type Config struct {
	Forward colorspace.Matrix3 // R'G'B' -> Y'CbCr, used for open-loop estimates
	Inverse colorspace.Matrix3 // Y'CbCr -> R'G'B'
	Weights [3]float64         // luminance weights of the reconstructed RGB
	Quant   colorspace.Quantization
	TF      transfer.Function

	TFDistance    bool
	MaxIterations int
	NoBounds      bool

	// Display adjusts reconstructed linear light before luminance is taken; nil is identity
	Display displaygamma.Adjuster
	// ICtCp reconstructs through L'M'S' -> LMS -> RGB
	ICtCp bool
}

// Engine evaluates candidates and runs the searches. It is immutable and safe to share.
type Engine struct {
	cfg  Config
	maxK int
}

// New validates cfg and fills in defaults
func New(cfg Config) (*Engine, error) {
	if cfg.TF == nil {
		return nil, errors.New("closed loop: no transfer function")
	}
	if !(cfg.Quant.LumaWeight > 0) {
		return nil, fmt.Errorf("closed loop: luma weight %v must be positive", cfg.Quant.LumaWeight)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Display == nil {
		cfg.Display = displaygamma.Identity{}
	}
	return &Engine{cfg: cfg, maxK: cfg.Quant.MaxLumaIndex()}, nil
}

// Config returns the effective configuration
func (e *Engine) Config() Config { return e.cfg }

// MaxIndex is the largest luma code index
func (e *Engine) MaxIndex() int { return e.maxK }

// Color is the chroma-only contribution of (u, v) to each reconstructed channel
func (e *Engine) Color(u, v float64) [3]float64 {
	m := e.cfg.Inverse
	return [3]float64{
		m[0][1]*u + m[0][2]*v,
		m[1][1]*u + m[1][2]*v,
		m[2][1]*u + m[2][2]*v,
	}
}

// LinearRGB reconstructs linear light for normalized luma yp and a chroma contribution
func (e *Engine) LinearRGB(yp float64, color [3]float64) [3]float64 {
	var rgb [3]float64
	for c := range rgb {
		// transfer functions clip their input to [0,1]
		rgb[c] = e.cfg.TF.ToLinear(e.cfg.Inverse[c][0]*yp + color[c])
	}
	if e.cfg.ICtCp {
		rgb = colorspace.LMSToRGB.Apply(rgb)
		for c := range rgb {
			rgb[c] = math.Max(rgb[c], 0)
		}
	}
	return e.cfg.Display.ToDisplay(rgb)
}

// Luminance reconstructs the linear luminance seen for normalized luma yp
func (e *Engine) Luminance(yp float64, color [3]float64) float64 {
	rgb := e.LinearRGB(yp, color)
	w := e.cfg.Weights
	return w[0]*rgb[0] + w[1]*rgb[1] + w[2]*rgb[2]
}

// YConv reconstructs the linear luminance of luma index k
func (e *Engine) YConv(k int, color [3]float64) float64 {
	return e.Luminance(e.cfg.Quant.LumaNorm(k), color)
}

// domain maps a linear value into the space distances are measured in
func (e *Engine) domain(y float64) float64 {
	if e.cfg.TFDistance {
		return e.cfg.TF.FromLinear(y)
	}
	return y
}

// Distance is the error between a reconstruction and its target
func (e *Engine) Distance(yConv, target float64) float64 {
	return math.Abs(e.domain(yConv) - e.domain(target))
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
