// Package colorspace holds the colour matrix coefficient tables, the mode
// resolver and the quantization parameters shared by every converter.
package colorspace

import (
	"errors"
	"fmt"
)

// ErrUnsupportedColorTransform is returned when no coefficient set matches a
// requested conversion. The returned Modes still describe a usable identity
// pass-through so lenient callers may ignore it.
var ErrUnsupportedColorTransform = errors.New("unsupported color transform")

// ResolveRequest describes both sides of a conversion
type ResolveRequest struct {
	InSpace           ColorSpace
	InPrimaries       Primaries
	OutSpace          ColorSpace
	OutPrimaries      Primaries
	ConstantLuminance bool
	HighPrecision     bool
}

// Modes is the outcome of resolving a request
type Modes struct {
	Forward   TransformMode
	Inverse   TransformMode
	Gamut     Matrix3 // linear RGB primaries conversion applied before the transfer function
	HasGamut  bool
	Weights   [3]float64
	Supported bool
}

var exactModes = map[Primaries][2]TransformMode{
	PrimariesBT709:  {ModeYCbCr709, ModeYCbCr709Legacy},
	PrimariesBT2020: {ModeYCbCr2020, ModeYCbCr2020Legacy},
	PrimariesP3D65:  {ModeYCbCrP3D65, ModeYCbCrP3D65Legacy},
	PrimariesP3D60:  {ModeYCbCrP3D60, ModeYCbCrP3D60Legacy},
	PrimariesBT601:  {ModeYCbCr601, ModeYCbCr601Legacy},
}

func identity(req ResolveRequest) Modes {
	w, ok := Weights(req.OutPrimaries)
	if !ok {
		w, _ = Weights(PrimariesBT709)
	}
	return Modes{Forward: ModeIdentity, Inverse: ModeIdentity, Gamut: Identity3, Weights: w}
}

// Resolve selects the forward and inverse transform modes for a request.
// Unsupported combinations resolve to identity together with a wrapped
// ErrUnsupportedColorTransform.
func Resolve(req ResolveRequest) (Modes, error) {
	unsupported := func(why string) (Modes, error) {
		return identity(req), fmt.Errorf("%w: %s %s -> %s %s: %s",
			ErrUnsupportedColorTransform, req.InSpace, req.InPrimaries, req.OutSpace, req.OutPrimaries, why)
	}

	if req.InSpace == req.OutSpace && req.InPrimaries == req.OutPrimaries && !req.ConstantLuminance {
		m := identity(req)
		m.Supported = true
		return m, nil
	}
	if req.InSpace != SpaceRGB {
		return unsupported("input must be RGB")
	}

	switch req.OutSpace {
	case SpaceYCbCr:
		if req.ConstantLuminance {
			return unsupported("constant luminance has no matrix form")
		}
		pair, ok := exactModes[req.OutPrimaries]
		if !ok {
			return unsupported("no coefficients for output primaries")
		}
		m := Modes{Forward: pair[0], Inverse: pair[1], Supported: true}
		if req.HighPrecision {
			m.Inverse = pair[0]
		}
		m.Weights, _ = Weights(req.OutPrimaries)
		m.Gamut, m.HasGamut = Identity3, false
		if req.InPrimaries != req.OutPrimaries && req.InPrimaries != PrimariesUnspecified {
			g, ok := GamutMatrix(req.InPrimaries, req.OutPrimaries)
			if !ok {
				return unsupported("no gamut conversion between primaries")
			}
			m.Gamut, m.HasGamut = g, true
		}
		return m, nil
	case SpaceICtCp:
		m := Modes{Forward: ModeICtCp, Inverse: ModeICtCp, Supported: true}
		m.Weights, _ = Weights(PrimariesBT2020)
		m.Gamut = Identity3
		if req.InPrimaries != PrimariesBT2020 && req.InPrimaries != PrimariesUnspecified {
			g, ok := GamutMatrix(req.InPrimaries, PrimariesBT2020)
			if !ok {
				return unsupported("no gamut conversion to BT.2020")
			}
			m.Gamut, m.HasGamut = g, true
		}
		return m, nil
	case SpaceRCT:
		m := Modes{Forward: ModeRCT, Inverse: ModeRCT, Gamut: Identity3, Supported: true}
		m.Weights = [3]float64{0.25, 0.5, 0.25}
		return m, nil
	}
	return unsupported("no matching transform")
}
