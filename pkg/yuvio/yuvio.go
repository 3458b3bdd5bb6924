// Package yuvio reads source frames and writes planar converter output.
// Files ending in .zst are transparently zstd (de)compressed.
package yuvio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jpfielding/hdrtools.go/pkg/frame"
	"github.com/jpfielding/hdrtools.go/pkg/transfer"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/tiff"
)

// ReadRGBFloat reads one frame of planar little-endian float32 R, G and B planes
func ReadRGBFloat(r io.Reader, width, height int) (*frame.Frame, error) {
	f := frame.NewFloat(width, height, frame.Format444)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	for c := 0; c < 3; c++ {
		if err := binary.Read(r, binary.LittleEndian, f.Float[c]); err != nil {
			return nil, fmt.Errorf("plane %d: %w", c, err)
		}
	}
	return f, nil
}

// ReadTIFF decodes a TIFF into a float frame with samples normalized to
// [0,1]. When linearize is set the samples are treated as coded values and
// mapped to linear light.
func ReadTIFF(r io.Reader, linearize transfer.Function) (*frame.Frame, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("tiff: %w", err)
	}
	b := img.Bounds()
	f := frame.NewFloat(b.Dx(), b.Dy(), frame.Format444)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgb := rgbAt(img, x, y)
			for c := 0; c < 3; c++ {
				v := rgb[c]
				if linearize != nil {
					v = linearize.ToLinear(v)
				}
				f.Float[c][i] = float32(v)
			}
			i++
		}
	}
	return f, nil
}

func rgbAt(img image.Image, x, y int) [3]float64 {
	if m, ok := img.(*image.RGBA64); ok {
		c := m.RGBA64At(x, y)
		return [3]float64{float64(c.R) / 65535, float64(c.G) / 65535, float64(c.B) / 65535}
	}
	r, g, b, a := img.At(x, y).RGBA()
	if a == 0 {
		return [3]float64{}
	}
	// RGBA is alpha premultiplied
	s := 65535 / float64(a) / 65535
	return [3]float64{float64(r) * s, float64(g) * s, float64(b) * s}
}

// WriteFrame writes the planes of f in order: integer samples as bytes up to
// 8 bits and little-endian uint16 above, float samples as little-endian float32.
func WriteFrame(w io.Writer, f *frame.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for c := 0; c < 3; c++ {
		var err error
		switch {
		case f.IsFloat:
			err = binary.Write(bw, binary.LittleEndian, f.Float[c])
		case f.BitDepth <= 8:
			p := make([]byte, len(f.Int[c]))
			for i, v := range f.Int[c] {
				p[i] = byte(v)
			}
			_, err = bw.Write(p)
		default:
			err = binary.Write(bw, binary.LittleEndian, f.Int[c])
		}
		if err != nil {
			return fmt.Errorf("plane %d: %w", c, err)
		}
	}
	return bw.Flush()
}

// ReadFrame reads planes written by WriteFrame into a frame allocated like proto
func ReadFrame(r io.Reader, proto *frame.Frame) (*frame.Frame, error) {
	var f *frame.Frame
	if proto.IsFloat {
		f = frame.NewFloat(proto.Width, proto.Height, proto.Format)
	} else {
		f = frame.NewInt(proto.Width, proto.Height, proto.BitDepth, proto.Format)
	}
	for c := 0; c < 3; c++ {
		var err error
		switch {
		case f.IsFloat:
			err = binary.Read(r, binary.LittleEndian, f.Float[c])
		case f.BitDepth <= 8:
			p := make([]byte, len(f.Int[c]))
			if _, err = io.ReadFull(r, p); err == nil {
				for i, v := range p {
					f.Int[c][i] = uint16(v)
				}
			}
		default:
			err = binary.Read(r, binary.LittleEndian, f.Int[c])
		}
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", c, err)
		}
	}
	return f, nil
}

// FrameBytes is the size of one frame as written by WriteFrame
func FrameBytes(f *frame.Frame) int {
	n := 0
	for c := 0; c < 3; c++ {
		n += f.PlaneSize(c)
	}
	switch {
	case f.IsFloat:
		return n * 4
	case f.BitDepth <= 8:
		return n
	}
	return n * 2
}

// Create opens path for writing, compressing when it ends in .zst
func Create(path string) (io.WriteCloser, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return file, nil
	}
	enc, err := zstd.NewWriter(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &zstdWriter{Encoder: enc, file: file}, nil
}

type zstdWriter struct {
	*zstd.Encoder
	file *os.File
}

func (z *zstdWriter) Close() error {
	if err := z.Encoder.Close(); err != nil {
		z.file.Close()
		return err
	}
	return z.file.Close()
}

// Open opens path for reading, decompressing when it ends in .zst
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return file, nil
	}
	dec, err := zstd.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &zstdReader{Decoder: dec, file: file}, nil
}

type zstdReader struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstdReader) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}

// PSNR of two integer frames of equal layout, per component
func PSNR(a, b *frame.Frame) ([3]float64, error) {
	var out [3]float64
	if !frame.SameLayout(a, b) || a.IsFloat || b.IsFloat || a.BitDepth != b.BitDepth {
		return out, fmt.Errorf("%w: psnr needs two integer frames of one layout", frame.ErrShape)
	}
	peak := float64(int(1)<<a.BitDepth - 1)
	for c := 0; c < 3; c++ {
		var sse float64
		for i := range a.Int[c] {
			d := float64(a.Int[c][i]) - float64(b.Int[c][i])
			sse += d * d
		}
		if sse == 0 {
			out[c] = math.Inf(1)
			continue
		}
		mse := sse / float64(len(a.Int[c]))
		out[c] = 10 * math.Log10(peak*peak/mse)
	}
	return out, nil
}
