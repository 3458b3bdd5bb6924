// Package transfer defines the non-linear transfer functions used to code HDR samples
package transfer

import (
	"fmt"
	"math"
	"strings"
)

// Function maps between linear light and coded (non-linear) sample values.
// Both directions operate on normalized values in [0,1]; inputs outside that
// range are clamped.
type Function interface {
	// ToLinear converts a coded value to linear light
	ToLinear(v float64) float64
	// FromLinear converts linear light to a coded value
	FromLinear(v float64) float64
}

// Kind identifies a transfer function, numbered as in ITU-T H.273
type Kind int

const (
	KindUnspecified Kind = 0
	KindBT709       Kind = 1
	KindLinear      Kind = 8
	KindSRGB        Kind = 13
	KindPQ          Kind = 16 // SMPTE ST 2084
	KindHLG         Kind = 18 // ARIB STD-B67
	KindGamma22     Kind = 100
	KindGamma24     Kind = 101
)

var kindNames = map[Kind]string{
	KindUnspecified: "unspecified",
	KindBT709:       "bt709",
	KindLinear:      "linear",
	KindSRGB:        "srgb",
	KindPQ:          "pq",
	KindHLG:         "hlg",
	KindGamma22:     "gamma22",
	KindGamma24:     "gamma24",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a transfer function name (case insensitive)
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	switch s {
	case "st2084", "smpte2084":
		return KindPQ, nil
	case "aribstdb67", "arib-std-b67":
		return KindHLG, nil
	}
	return KindUnspecified, fmt.Errorf("unknown transfer function %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// New returns the transfer function for kind
func New(kind Kind) (Function, error) {
	switch kind {
	case KindPQ:
		return PQ{}, nil
	case KindHLG:
		return HLG{}, nil
	case KindBT709:
		return BT709{}, nil
	case KindSRGB:
		return SRGB{}, nil
	case KindLinear:
		return Linear{}, nil
	case KindGamma22:
		return Power{Gamma: 2.2}, nil
	case KindGamma24:
		return Power{Gamma: 2.4}, nil
	}
	return nil, fmt.Errorf("unsupported transfer function %s", kind)
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
