package colorspace

import (
	"fmt"
	"strings"
)

// ColorSpace identifies the sample representation on one side of a conversion
type ColorSpace int

const (
	SpaceRGB ColorSpace = iota
	SpaceYCbCr
	SpaceICtCp
	SpaceXYZ
	SpaceRCT // JPEG 2000 reversible colour transform, integer samples only
)

// Primaries identifies the RGB colour primaries and therefore the luma weights
type Primaries int

const (
	PrimariesUnspecified Primaries = iota
	PrimariesBT709
	PrimariesBT2020
	PrimariesP3D65
	PrimariesP3D60
	PrimariesBT601
)

// SampleRange selects how normalized values map onto integer codes
type SampleRange int

const (
	RangeFull SampleRange = iota
	RangeStandard
	RangeSDI
)

var spaceNames = map[ColorSpace]string{
	SpaceRGB:   "rgb",
	SpaceYCbCr: "ycbcr",
	SpaceICtCp: "ictcp",
	SpaceXYZ:   "xyz",
	SpaceRCT:   "rct",
}

var primariesNames = map[Primaries]string{
	PrimariesUnspecified: "unspecified",
	PrimariesBT709:       "bt709",
	PrimariesBT2020:      "bt2020",
	PrimariesP3D65:       "p3d65",
	PrimariesP3D60:       "p3d60",
	PrimariesBT601:       "bt601",
}

var rangeNames = map[SampleRange]string{
	RangeFull:     "full",
	RangeStandard: "standard",
	RangeSDI:      "sdi",
}

func (c ColorSpace) String() string  { return nameOf(spaceNames, c) }
func (p Primaries) String() string   { return nameOf(primariesNames, p) }
func (r SampleRange) String() string { return nameOf(rangeNames, r) }

func nameOf[K ~int](names map[K]string, k K) string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("%T(%d)", k, int(k))
}

func parseName[K ~int](names map[K]string, kind, s string) (K, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range names {
		if n == s {
			return k, nil
		}
	}
	var zero K
	return zero, fmt.Errorf("unknown %s %q", kind, s)
}

// ParseColorSpace resolves a colour space name
func ParseColorSpace(s string) (ColorSpace, error) { return parseName(spaceNames, "color space", s) }

// ParsePrimaries resolves a primaries name; "rec709" and "rec2020" are accepted aliases
func ParsePrimaries(s string) (Primaries, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rec709", "srgb":
		return PrimariesBT709, nil
	case "rec2020", "bt2100":
		return PrimariesBT2020, nil
	case "displayp3", "p3":
		return PrimariesP3D65, nil
	}
	return parseName(primariesNames, "primaries", s)
}

// ParseSampleRange resolves a sample range name; "limited" and "video" alias standard
func ParseSampleRange(s string) (SampleRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "limited", "video", "tv":
		return RangeStandard, nil
	case "pc":
		return RangeFull, nil
	}
	return parseName(rangeNames, "sample range", s)
}

func (c ColorSpace) MarshalText() ([]byte, error)  { return []byte(c.String()), nil }
func (p Primaries) MarshalText() ([]byte, error)   { return []byte(p.String()), nil }
func (r SampleRange) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (c *ColorSpace) UnmarshalText(b []byte) (err error) {
	*c, err = ParseColorSpace(string(b))
	return err
}

func (p *Primaries) UnmarshalText(b []byte) (err error) {
	*p, err = ParsePrimaries(string(b))
	return err
}

func (r *SampleRange) UnmarshalText(b []byte) (err error) {
	*r, err = ParseSampleRange(string(b))
	return err
}
