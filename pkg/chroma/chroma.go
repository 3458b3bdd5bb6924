// Package chroma resamples chroma planes between 4:4:4 and 4:2:0
package chroma

import (
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
)

// Resampler converts full resolution chroma planes to half resolution and back.
// Planes hold normalized chroma in [-0.5, 0.5].
type Resampler interface {
	// Down writes the (w+1)/2 x (h+1)/2 decimation of src (w x h) into dst
	Down(dst, src []float64, w, h int)
	// Up writes the w x h interpolation of src ((w+1)/2 x (h+1)/2) into dst
	Up(dst, src []float64, w, h int)
}

// Resize resamples through nfnt/resize on 16-bit intermediate planes
type Resize struct {
	Down420 resize.InterpolationFunction
	Up420   resize.InterpolationFunction
}

// NewResize returns bilinear decimation and interpolation
func NewResize() *Resize {
	return &Resize{Down420: resize.Bilinear, Up420: resize.Bilinear}
}

// HalfSize is the 4:2:0 chroma size for a w x h frame
func HalfSize(w, h int) (int, int) { return (w + 1) / 2, (h + 1) / 2 }

func (r *Resize) Down(dst, src []float64, w, h int) {
	cw, ch := HalfSize(w, h)
	out := resize.Resize(uint(cw), uint(ch), toGray16(src, w, h), r.Down420)
	fromImage(dst, out, cw, ch)
}

func (r *Resize) Up(dst, src []float64, w, h int) {
	cw, ch := HalfSize(w, h)
	out := resize.Resize(uint(w), uint(h), toGray16(src, cw, ch), r.Up420)
	fromImage(dst, out, w, h)
}

func toGray16(p []float64, w, h int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: encode(p[y*w+x])})
		}
	}
	return img
}

func fromImage(dst []float64, img image.Image, w, h int) {
	b := img.Bounds()
	if g, ok := img.(*image.Gray16); ok {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst[y*w+x] = decode(g.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			dst[y*w+x] = decode(v.Y)
		}
	}
}

func encode(c float64) uint16 {
	v := math.Round((c + 0.5) * 65535)
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

func decode(v uint16) float64 {
	return float64(v)/65535 - 0.5
}
