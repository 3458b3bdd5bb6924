// Package convert turns linear-light RGB frames into quantized Y'CbCr (or
// ICtCp) frames, choosing luma codes with the closed loop.
package convert

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jpfielding/hdrtools.go/pkg/closedloop"
	"github.com/jpfielding/hdrtools.go/pkg/colorspace"
	"github.com/jpfielding/hdrtools.go/pkg/displaygamma"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
	"github.com/jpfielding/hdrtools.go/pkg/transfer"
)

// Converter processes one frame at a time; implementations are not safe for concurrent use
type Converter interface {
	Process(out, in *frame.Frame) error
	Stats() Stats
}

// New builds the converter selected by p.Variant
func New(p Params, opts ...Option) (Converter, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	o := options{source: DirectSource{}}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := o.source.(AlternateSource); ok && p.Variant != VariantTele {
		return nil, fmt.Errorf("%w: alternate source requires the tele variant, got %s", ErrInvalidParams, p.Variant)
	}
	b, err := newBase(p)
	if err != nil {
		return nil, err
	}
	switch p.Variant {
	case VariantTele:
		return &tele{base: b, source: o.source}, nil
	case VariantHLG:
		return newHLG(b), nil
	case VariantMultiply:
		return &multiply{base: b}, nil
	}
	return &generic{base: b}, nil
}

// planes held in the arena for every float frame
const (
	planeTarget = iota // luminance target
	planeScene         // bound target
	planeR             // linear light coded by the transfer function
	planeG
	planeB
	planeCount
)

// base carries everything the variants share
type base struct {
	params Params
	modes  colorspace.Modes
	fwd    colorspace.Transform
	inv    colorspace.Transform
	quant  colorspace.Quantization
	tf     transfer.Function
	engine *closedloop.Engine
	arena  *frame.Arena
	stats  Stats

	unsupported error // set when the resolver fell back to identity
	ictcp       bool
	openOnly    bool // closed loop unavailable for this transform
}

func newBase(p Params) (*base, error) {
	b := &base{params: p, arena: frame.NewArena()}

	modes, err := colorspace.Resolve(colorspace.ResolveRequest{
		InSpace:           p.InSpace,
		InPrimaries:       p.InPrimaries,
		OutSpace:          p.OutSpace,
		OutPrimaries:      p.OutPrimaries,
		ConstantLuminance: p.ConstantLuminance,
		HighPrecision:     p.HighPrecision,
	})
	if err != nil {
		if p.Strict {
			return nil, err
		}
		slog.Warn("color transform unsupported, passing samples through", "error", err)
		b.unsupported = err
	}
	b.modes = modes

	if b.fwd, err = colorspace.Lookup(modes.Forward); err != nil {
		return nil, err
	}
	if b.inv, err = colorspace.Lookup(modes.Inverse); err != nil {
		return nil, err
	}
	if b.quant, err = colorspace.NewQuantization(p.BitDepth, p.Range); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if b.tf, err = transfer.New(p.Transfer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	b.ictcp = modes.Forward == colorspace.ModeICtCp
	if b.ictcp && p.Variant != VariantMultiply {
		err := fmt.Errorf("%w: ictcp closed loop is only available to the multiply variant", colorspace.ErrUnsupportedColorTransform)
		if p.Strict {
			return nil, err
		}
		slog.Warn("falling back to open loop", "variant", p.Variant, "error", err)
		b.openOnly = true
	}

	if modes.Forward.IsYCbCr() || b.ictcp {
		cfg := closedloop.Config{
			Forward:       b.fwd.Forward,
			Inverse:       b.inv.Inverse,
			Weights:       modes.Weights,
			Quant:         b.quant,
			TF:            b.tf,
			TFDistance:    p.TFDistance,
			MaxIterations: p.MaxIterations,
			NoBounds:      p.UseNoBounds || b.ictcp,
			ICtCp:         b.ictcp,
		}
		if p.Variant == VariantHLG {
			cfg.Display = displaygamma.NewHLG(p.DisplayPeakNits, modes.Weights)
		}
		if b.engine, err = closedloop.New(cfg); err != nil {
			return nil, err
		}
	}
	slog.Debug("converter ready",
		slog.String("variant", p.Variant.String()),
		slog.String("forward", modes.Forward.String()),
		slog.String("inverse", modes.Inverse.String()),
		slog.Bool("gamut", modes.HasGamut),
		slog.Float64("luma_weight", b.quant.LumaWeight),
		slog.Float64("luma_offset", b.quant.LumaOffset),
		slog.String("closed_loop", p.ClosedLoop.String()),
	)
	return b, nil
}

func (b *base) Stats() Stats { return b.stats }

// route is what Process does with a pair of frames
type route int

const (
	routeSkip route = iota
	routeIdentity
	routeFixed
	routeFloat
)

// begin checks the frames and picks the processing route. allow420 lets the
// output carry 4:2:0 chroma.
func (b *base) begin(out, in *frame.Frame, allow420 bool) (route, error) {
	b.stats = Stats{}
	if err := in.Validate(); err != nil {
		return routeSkip, fmt.Errorf("input: %w", err)
	}
	if err := out.Validate(); err != nil {
		return routeSkip, fmt.Errorf("output: %w", err)
	}
	if in.Width != out.Width || in.Height != out.Height || in.Format != frame.Format444 ||
		(out.Format != frame.Format444 && !(allow420 && out.Format == frame.Format420)) {
		slog.Debug("frame layout not handled, leaving output untouched",
			"variant", b.params.Variant, "in", fmt.Sprintf("%dx%d %s", in.Width, in.Height, in.Format),
			"out", fmt.Sprintf("%dx%d %s", out.Width, out.Height, out.Format))
		return routeSkip, nil
	}
	if !out.IsFloat && out.BitDepth != b.quant.BitDepth {
		return routeSkip, fmt.Errorf("%w: output bit depth %d, converter quantizes to %d", frame.ErrShape, out.BitDepth, b.quant.BitDepth)
	}
	if b.unsupported != nil || b.modes.Forward == colorspace.ModeIdentity {
		return routeIdentity, nil
	}
	if !in.IsFloat {
		if out.IsFloat {
			return routeSkip, fmt.Errorf("%w: fixed-point input needs integer output", frame.ErrShape)
		}
		if out.Format != frame.Format444 {
			return routeSkip, fmt.Errorf("%w: fixed-point path writes 4:4:4 only, got %s", frame.ErrShape, out.Format)
		}
		return routeFixed, nil
	}
	if b.engine == nil {
		// RCT and similar integer-only transforms
		err := fmt.Errorf("%w: %s has no floating point path", colorspace.ErrUnsupportedColorTransform, b.modes.Forward)
		if b.params.Strict {
			return routeSkip, err
		}
		slog.Warn("passing samples through", "error", err)
		return routeIdentity, nil
	}
	return routeFloat, nil
}

// run dispatches the non-variant routes and returns true when the frame is done
func (b *base) run(out, in *frame.Frame, allow420 bool) (bool, error) {
	r, err := b.begin(out, in, allow420)
	if err != nil {
		return true, err
	}
	switch r {
	case routeSkip:
		return true, nil
	case routeIdentity:
		return true, passThrough(out, in)
	case routeFixed:
		return true, b.fixed(out, in)
	}
	return false, nil
}

// prepare fills the arena planes for a float frame. scene converts display
// light into the light the transfer function codes; nil leaves it as is.
func (b *base) prepare(in *frame.Frame, extra int, scene func([3]float64) [3]float64) ([][]float64, error) {
	n := in.Pixels()
	planes, err := b.arena.Ensure(planeCount+extra, n)
	if err != nil {
		return nil, err
	}
	w := b.modes.Weights
	lum := func(v [3]float64) float64 { return w[0]*v[0] + w[1]*v[1] + w[2]*v[2] }
	for i := 0; i < n; i++ {
		rgb := [3]float64{float64(in.Float[0][i]), float64(in.Float[1][i]), float64(in.Float[2][i])}
		if b.modes.HasGamut {
			rgb = b.modes.Gamut.Apply(rgb)
		}
		for c := range rgb {
			rgb[c] = clamp01(rgb[c])
		}
		planes[planeTarget][i] = lum(rgb)
		coded := rgb
		if scene != nil {
			coded = scene(rgb)
		}
		planes[planeScene][i] = lum(coded)
		if b.ictcp {
			coded = colorspace.RGBToLMS.Apply(coded)
		}
		planes[planeR][i], planes[planeG][i], planes[planeB][i] = coded[0], coded[1], coded[2]
	}
	return planes, nil
}

func pixelAt(planes [][]float64, i int) closedloop.Pixel {
	return closedloop.Pixel{
		Linear:  [3]float64{planes[planeR][i], planes[planeG][i], planes[planeB][i]},
		YLinear: planes[planeTarget][i],
		YScene:  planes[planeScene][i],
	}
}

func (b *base) putLuma(out *frame.Frame, i, k int) {
	if out.IsFloat {
		out.Float[0][i] = float32(b.quant.LumaNorm(k))
		return
	}
	out.Int[0][i] = uint16(b.quant.LumaCode(k))
}

func (b *base) putChroma(out *frame.Frame, i, cb, cr int) {
	if out.IsFloat {
		out.Float[1][i] = float32(b.quant.DequantizeChroma(cb))
		out.Float[2][i] = float32(b.quant.DequantizeChroma(cr))
		return
	}
	out.Int[1][i], out.Int[2][i] = uint16(cb), uint16(cr)
}

func (b *base) put(out *frame.Frame, i int, s closedloop.Solution) {
	b.putLuma(out, i, s.Luma)
	b.putChroma(out, i, s.Cb, s.Cr)
}

func (b *base) done() {
	slog.Debug("frame converted", slog.String("variant", b.params.Variant.String()), slog.Any("stats", b.stats))
}

// passThrough copies samples unchanged, rescaling between float and integer storage
func passThrough(out, in *frame.Frame) error {
	if !frame.SameLayout(out, in) {
		return fmt.Errorf("%w: pass-through needs matching layouts", frame.ErrShape)
	}
	for c := 0; c < 3; c++ {
		n := in.PlaneSize(c)
		switch {
		case in.IsFloat && out.IsFloat:
			copy(out.Float[c], in.Float[c])
		case !in.IsFloat && !out.IsFloat:
			shift := out.BitDepth - in.BitDepth
			for i := 0; i < n; i++ {
				out.Int[c][i] = rescale(in.Int[c][i], shift)
			}
		case in.IsFloat:
			top := float64(int(1)<<out.BitDepth - 1)
			for i := 0; i < n; i++ {
				out.Int[c][i] = uint16(math.Round(clamp01(float64(in.Float[c][i])) * top))
			}
		default:
			top := float32(int(1)<<in.BitDepth - 1)
			for i := 0; i < n; i++ {
				out.Float[c][i] = float32(in.Int[c][i]) / top
			}
		}
	}
	return nil
}

func rescale(v uint16, shift int) uint16 {
	if shift >= 0 {
		return v << shift
	}
	return v >> -shift
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
