package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jpfielding/hdrtools.go/pkg/closedloop"
	"github.com/jpfielding/hdrtools.go/pkg/colorspace"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
	"github.com/jpfielding/hdrtools.go/pkg/transfer"
	"gopkg.in/yaml.v3"
)

// ErrInvalidParams wraps every Params validation failure
var ErrInvalidParams = errors.New("invalid conversion parameters")

// Variant selects a converter implementation
type Variant int

const (
	VariantGeneric Variant = iota
	VariantTele
	VariantHLG
	VariantMultiply
)

var variantNames = [...]string{"generic", "tele", "hlg", "multiply"}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range variantNames {
		if n == s {
			return Variant(i), nil
		}
	}
	return VariantGeneric, fmt.Errorf("unknown variant %q", s)
}

func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Variant) UnmarshalText(b []byte) (err error) {
	*v, err = ParseVariant(string(b))
	return err
}

// Params is the conversion configuration, loadable from YAML
type Params struct {
	Variant           Variant                `yaml:"variant" json:"variant"`
	ClosedLoop        closedloop.Mode        `yaml:"closed_loop" json:"closed_loop"`
	TFDistance        bool                   `yaml:"tf_distance" json:"tf_distance"`
	MaxIterations     int                    `yaml:"max_iterations" json:"max_iterations"`
	UseNoBounds       bool                   `yaml:"use_no_bounds" json:"use_no_bounds"`
	Transfer          transfer.Kind          `yaml:"transfer" json:"transfer"`
	BitDepth          int                    `yaml:"bit_depth" json:"bit_depth"`
	Range             colorspace.SampleRange `yaml:"range" json:"range"`
	InSpace           colorspace.ColorSpace  `yaml:"in_space" json:"in_space"`
	InPrimaries       colorspace.Primaries   `yaml:"in_primaries" json:"in_primaries"`
	OutSpace          colorspace.ColorSpace  `yaml:"out_space" json:"out_space"`
	OutPrimaries      colorspace.Primaries   `yaml:"out_primaries" json:"out_primaries"`
	ConstantLuminance bool                   `yaml:"constant_luminance" json:"constant_luminance"`
	HighPrecision     bool                   `yaml:"high_precision" json:"high_precision"`
	Strict            bool                   `yaml:"strict" json:"strict"`
	MultiplyDomain    closedloop.Domain      `yaml:"multiply_domain" json:"multiply_domain"`
	DisplayPeakNits   float64                `yaml:"display_peak_nits" json:"display_peak_nits"`
	ChromaFormat      frame.Format           `yaml:"chroma_format" json:"chroma_format"`
}

// Defaults is a BT.2020 PQ 10 bit standard range closed-loop conversion
func Defaults() Params {
	return Params{
		Variant:         VariantGeneric,
		ClosedLoop:      closedloop.ModeBase,
		TFDistance:      true,
		MaxIterations:   closedloop.DefaultMaxIterations,
		Transfer:        transfer.KindPQ,
		BitDepth:        10,
		Range:           colorspace.RangeStandard,
		InSpace:         colorspace.SpaceRGB,
		InPrimaries:     colorspace.PrimariesBT2020,
		OutSpace:        colorspace.SpaceYCbCr,
		OutPrimaries:    colorspace.PrimariesBT2020,
		MultiplyDomain:  closedloop.DomainLinear,
		DisplayPeakNits: 1000,
		ChromaFormat:    frame.Format444,
	}
}

// ParamError describes one invalid field
type ParamError struct {
	Field   string
	Message string
}

func (e ParamError) Error() string { return e.Field + ": " + e.Message }

// Validate reports every problem at once, wrapped in ErrInvalidParams
func (p Params) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, ParamError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	if p.Variant < VariantGeneric || p.Variant > VariantMultiply {
		bad("variant", "unknown variant %d", int(p.Variant))
	}
	if p.ClosedLoop < closedloop.ModeNull || p.ClosedLoop > closedloop.ModeBase4 {
		bad("closed_loop", "unknown mode %d", int(p.ClosedLoop))
	}
	if p.MaxIterations < 0 || p.MaxIterations > 64 {
		bad("max_iterations", "%d outside [0,64]", p.MaxIterations)
	}
	if p.BitDepth < colorspace.MinBitDepth || p.BitDepth > colorspace.MaxBitDepth {
		bad("bit_depth", "%d outside [%d,%d]", p.BitDepth, colorspace.MinBitDepth, colorspace.MaxBitDepth)
	}
	if _, err := transfer.New(p.Transfer); err != nil {
		bad("transfer", "%v", err)
	}
	if p.Variant == VariantHLG {
		if p.Transfer != transfer.KindHLG {
			bad("transfer", "hlg variant needs the hlg transfer function, got %s", p.Transfer)
		}
		if p.DisplayPeakNits < 0 {
			bad("display_peak_nits", "%v must not be negative", p.DisplayPeakNits)
		}
	}
	if p.Variant == VariantTele && p.ClosedLoop > closedloop.ModeBase {
		bad("closed_loop", "tele only searches luma (NULL or BASE), got %s", p.ClosedLoop)
	}
	if p.ChromaFormat == frame.Format420 && p.Variant != VariantHLG {
		bad("chroma_format", "4:2:0 output is only produced by the hlg variant")
	}
	if p.OutSpace == colorspace.SpaceICtCp && p.Transfer != transfer.KindPQ {
		bad("transfer", "ictcp is defined on pq, got %s", p.Transfer)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
}

// LoadParams decodes YAML over Defaults and validates the result
func LoadParams(r io.Reader) (Params, error) {
	p := Defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return p, p.Validate()
}

// LoadParamsFile reads params from a YAML file
func LoadParamsFile(path string) (Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return Params{}, err
	}
	defer f.Close()
	return LoadParams(f)
}

// WriteParams encodes p as YAML
func WriteParams(w io.Writer, p Params) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}
