package colorspace

import (
	"fmt"
	"math"
)

// Quantization maps normalized samples onto integer codes for a bit depth and range.
// Luma: code = k + LumaOffset with k in [0, round(LumaWeight)] and Y' = k/LumaWeight.
// Chroma: code = round(ChromaWeight*c + ChromaOffset).
type Quantization struct {
	BitDepth     int
	Range        SampleRange
	LumaWeight   float64
	LumaOffset   float64
	ChromaWeight float64
	ChromaOffset float64
}

const (
	MinBitDepth = 8
	MaxBitDepth = 16
)

// NewQuantization derives the weights and offsets from bit depth and range
func NewQuantization(bitDepth int, r SampleRange) (Quantization, error) {
	if bitDepth < MinBitDepth || bitDepth > MaxBitDepth {
		return Quantization{}, fmt.Errorf("bit depth %d outside [%d,%d]", bitDepth, MinBitDepth, MaxBitDepth)
	}
	q := Quantization{BitDepth: bitDepth, Range: r}
	switch r {
	case RangeFull:
		q.LumaWeight = float64(int(1)<<bitDepth - 1)
		q.LumaOffset = 0
		q.ChromaWeight = q.LumaWeight
		q.ChromaOffset = float64(int(1) << (bitDepth - 1))
	case RangeStandard:
		s := math.Ldexp(1, bitDepth-8)
		q.LumaWeight = 219 * s
		q.LumaOffset = 16 * s
		q.ChromaWeight = 224 * s
		q.ChromaOffset = 128 * s
	case RangeSDI:
		// 10 bit SDI reserves codes 0-3 and 1020-1023; 8 bit ends up with a fractional weight
		s := math.Ldexp(1, bitDepth-10)
		q.LumaWeight = 1015 * s
		q.LumaOffset = 4 * s
		q.ChromaWeight = 1015 * s
		q.ChromaOffset = 512 * s
	default:
		return Quantization{}, fmt.Errorf("unknown sample range %s", r)
	}
	return q, nil
}

// MaxCode is the largest integer sample value for the bit depth
func (q Quantization) MaxCode() int { return 1<<q.BitDepth - 1 }

// MaxLumaIndex is the largest luma code index k
func (q Quantization) MaxLumaIndex() int { return int(math.Round(q.LumaWeight)) }

// LumaNorm converts a luma index to normalized Y'
func (q Quantization) LumaNorm(k int) float64 { return float64(k) / q.LumaWeight }

// LumaIndex quantizes a normalized Y' to the nearest luma index
func (q Quantization) LumaIndex(y float64) int {
	return clampInt(int(math.Round(y*q.LumaWeight)), 0, q.MaxLumaIndex())
}

// LumaCode converts a luma index to the stored integer sample
func (q Quantization) LumaCode(k int) int {
	return clampInt(k+int(math.Round(q.LumaOffset)), 0, q.MaxCode())
}

// QuantizeChroma converts a normalized chroma value in [-0.5,0.5] to its code
func (q Quantization) QuantizeChroma(c float64) int {
	return clampInt(int(math.Round(q.ChromaWeight*c+q.ChromaOffset)), 0, q.MaxCode())
}

// DequantizeChroma converts a chroma code back to a normalized value
func (q Quantization) DequantizeChroma(code int) float64 {
	return (float64(code) - q.ChromaOffset) / q.ChromaWeight
}

// PelRange is the legal sample range used when clipping fixed-point output
func (q Quantization) PelRange(chroma bool) (lo, hi int) {
	switch q.Range {
	case RangeStandard:
		s := 1 << (q.BitDepth - 8)
		if chroma {
			return 16 * s, 240 * s
		}
		return 16 * s, 235 * s
	case RangeSDI:
		r := int(math.Round(math.Ldexp(4, q.BitDepth-10)))
		return r, q.MaxCode() - r
	}
	return 0, q.MaxCode()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
