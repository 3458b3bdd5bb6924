package colorspace

import "fmt"

// TransformMode selects one forward/inverse matrix pair of the coefficient table
type TransformMode int

const (
	ModeIdentity TransformMode = iota
	ModeYCbCr709
	ModeYCbCr2020
	ModeYCbCrP3D65
	ModeYCbCrP3D60
	ModeYCbCr601
	// Legacy modes carry the 4-decimal coefficients published in the ITU documents
	ModeYCbCr709Legacy
	ModeYCbCr2020Legacy
	ModeYCbCrP3D65Legacy
	ModeYCbCrP3D60Legacy
	ModeYCbCr601Legacy
	ModeICtCp
	ModeRCT
)

var modeNames = map[TransformMode]string{
	ModeIdentity:         "identity",
	ModeYCbCr709:         "ycbcr-bt709",
	ModeYCbCr2020:        "ycbcr-bt2020",
	ModeYCbCrP3D65:       "ycbcr-p3d65",
	ModeYCbCrP3D60:       "ycbcr-p3d60",
	ModeYCbCr601:         "ycbcr-bt601",
	ModeYCbCr709Legacy:   "ycbcr-bt709-legacy",
	ModeYCbCr2020Legacy:  "ycbcr-bt2020-legacy",
	ModeYCbCrP3D65Legacy: "ycbcr-p3d65-legacy",
	ModeYCbCrP3D60Legacy: "ycbcr-p3d60-legacy",
	ModeYCbCr601Legacy:   "ycbcr-bt601-legacy",
	ModeICtCp:            "ictcp",
	ModeRCT:              "rct",
}

func (m TransformMode) String() string { return nameOf(modeNames, m) }

func (m TransformMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *TransformMode) UnmarshalText(b []byte) (err error) {
	*m, err = parseName(modeNames, "transform mode", string(b))
	return err
}

// IsYCbCr reports whether the mode is a Y'CbCr matrix whose inverse luma column is all ones
func (m TransformMode) IsYCbCr() bool {
	return m >= ModeYCbCr709 && m <= ModeYCbCr601Legacy
}

// Transform is one entry of the coefficient table
type Transform struct {
	Mode    TransformMode
	Forward Matrix3    // R'G'B' -> Y'CbCr (or L'M'S' -> ICtCp)
	Inverse Matrix3    // Y'CbCr -> R'G'B'
	Weights [3]float64 // linear-light luminance weights of the primaries
}

// luma weights (Kr, Kb) per primaries
var lumaWeights = map[Primaries][2]float64{
	PrimariesBT709:  {0.2126, 0.0722},
	PrimariesBT2020: {0.2627, 0.0593},
	PrimariesP3D65:  {0.22897457, 0.07928691},
	PrimariesP3D60:  {0.2095, 0.0689},
	PrimariesBT601:  {0.299, 0.114},
}

// Weights returns the linear luminance weights (R, G, B) for the primaries
func Weights(p Primaries) ([3]float64, bool) {
	k, ok := lumaWeights[p]
	if !ok {
		return [3]float64{}, false
	}
	return [3]float64{k[0], 1 - k[0] - k[1], k[1]}, true
}

func ycbcrForward(kr, kb float64) Matrix3 {
	kg := 1 - kr - kb
	return Matrix3{
		{kr, kg, kb},
		{-kr / (2 * (1 - kb)), -kg / (2 * (1 - kb)), 0.5},
		{0.5, -kg / (2 * (1 - kr)), -kb / (2 * (1 - kr))},
	}
}

func ycbcrInverse(kr, kb float64) Matrix3 {
	kg := 1 - kr - kb
	return Matrix3{
		{1, 0, 2 * (1 - kr)},
		{1, -2 * kb * (1 - kb) / kg, -2 * kr * (1 - kr) / kg},
		{1, 2 * (1 - kb), 0},
	}
}

// BT.2100 ICtCp: linear RGB (BT.2020) -> LMS, and PQ L'M'S' -> ICtCp
var (
	RGBToLMS = Matrix3{
		{1688.0 / 4096, 2146.0 / 4096, 262.0 / 4096},
		{683.0 / 4096, 2951.0 / 4096, 462.0 / 4096},
		{99.0 / 4096, 309.0 / 4096, 3688.0 / 4096},
	}
	LMSToRGB = mustInverse(RGBToLMS)

	lmsToICtCp = Matrix3{
		{0.5, 0.5, 0},
		{6610.0 / 4096, -13613.0 / 4096, 7003.0 / 4096},
		{17933.0 / 4096, -17390.0 / 4096, -543.0 / 4096},
	}
)

// the RCT is integer-only; these are its real-valued equivalents for reference
var (
	rctForward = Matrix3{{0.25, 0.5, 0.25}, {0, -1, 1}, {1, -1, 0}}
)

var transformTable = buildTable()

func buildTable() map[TransformMode]Transform {
	t := map[TransformMode]Transform{
		ModeIdentity: {Mode: ModeIdentity, Forward: Identity3, Inverse: Identity3},
	}
	exact := []struct {
		mode, legacy TransformMode
		prim         Primaries
	}{
		{ModeYCbCr709, ModeYCbCr709Legacy, PrimariesBT709},
		{ModeYCbCr2020, ModeYCbCr2020Legacy, PrimariesBT2020},
		{ModeYCbCrP3D65, ModeYCbCrP3D65Legacy, PrimariesP3D65},
		{ModeYCbCrP3D60, ModeYCbCrP3D60Legacy, PrimariesP3D60},
		{ModeYCbCr601, ModeYCbCr601Legacy, PrimariesBT601},
	}
	for _, e := range exact {
		k := lumaWeights[e.prim]
		w, _ := Weights(e.prim)
		fwd, inv := ycbcrForward(k[0], k[1]), ycbcrInverse(k[0], k[1])
		t[e.mode] = Transform{Mode: e.mode, Forward: fwd, Inverse: inv, Weights: w}
		t[e.legacy] = Transform{Mode: e.legacy, Forward: fwd.rounded(4), Inverse: inv.rounded(4), Weights: w}
	}
	w2020, _ := Weights(PrimariesBT2020)
	t[ModeICtCp] = Transform{Mode: ModeICtCp, Forward: lmsToICtCp, Inverse: mustInverse(lmsToICtCp), Weights: w2020}
	t[ModeRCT] = Transform{Mode: ModeRCT, Forward: rctForward, Inverse: mustInverse(rctForward), Weights: [3]float64{0.25, 0.5, 0.25}}
	return t
}

// Lookup returns the table entry for mode
func Lookup(mode TransformMode) (Transform, error) {
	tr, ok := transformTable[mode]
	if !ok {
		return Transform{}, fmt.Errorf("no coefficients for mode %s", mode)
	}
	return tr, nil
}
