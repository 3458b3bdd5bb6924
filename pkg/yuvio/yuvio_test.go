package yuvio

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/jpfielding/hdrtools.go/pkg/frame"
	"github.com/jpfielding/hdrtools.go/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestReadRGBFloat(t *testing.T) {
	var buf bytes.Buffer
	planes := [][]float32{{0, 0.25}, {0.5, 0.75}, {1, 0.125}}
	for _, p := range planes {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, p))
	}
	f, err := ReadRGBFloat(&buf, 2, 1)
	require.NoError(t, err)
	for c := range planes {
		assert.Equal(t, planes[c], f.Float[c])
	}

	_, err = ReadRGBFloat(bytes.NewReader(make([]byte, 10)), 2, 1)
	assert.Error(t, err)
}

func TestReadTIFF(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 2, 1))
	img.SetRGBA64(0, 0, color.RGBA64{R: 65535, G: 0, B: 32768, A: 65535})
	img.SetRGBA64(1, 0, color.RGBA64{R: 0, G: 65535, B: 0, A: 65535})
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))

	f, err := ReadTIFF(bytes.NewReader(buf.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Width)
	assert.InDelta(t, 1, f.Float[0][0], 1e-6)
	assert.InDelta(t, 32768.0/65535, f.Float[2][0], 1e-6)
	assert.InDelta(t, 1, f.Float[1][1], 1e-6)

	pq, err := transfer.New(transfer.KindPQ)
	require.NoError(t, err)
	lin, err := ReadTIFF(bytes.NewReader(buf.Bytes()), pq)
	require.NoError(t, err)
	assert.InDelta(t, 1, lin.Float[0][0], 1e-6)
	assert.InDelta(t, pq.ToLinear(32768.0/65535), lin.Float[2][0], 1e-6)

	_, err = ReadTIFF(bytes.NewReader([]byte("not a tiff")), nil)
	assert.Error(t, err)
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		proto *frame.Frame
		bytes int
	}{
		{"8 bit 420", frame.NewInt(4, 2, 8, frame.Format420), 8 + 2 + 2},
		{"10 bit 444", frame.NewInt(3, 1, 10, frame.Format444), 9 * 2},
		{"float", frame.NewFloat(2, 2, frame.Format444), 12 * 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.proto
			for c := 0; c < 3; c++ {
				for i := range f.Int[c] {
					f.Int[c][i] = uint16((i*37 + c*11) % (1 << f.BitDepth))
				}
				for i := range f.Float[c] {
					f.Float[c][i] = float32(i+c) / 8
				}
			}
			var buf bytes.Buffer
			require.NoError(t, WriteFrame(&buf, f))
			assert.Equal(t, tt.bytes, buf.Len())
			assert.Equal(t, tt.bytes, FrameBytes(f))

			got, err := ReadFrame(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, f, got)
		})
	}
}

func TestCompressedFiles(t *testing.T) {
	f := frame.NewInt(8, 8, 10, frame.Format444)
	for i := range f.Int[0] {
		f.Int[0][i] = uint16(i * 7)
	}
	for _, name := range []string{"out.yuv", "out.yuv.zst"} {
		path := filepath.Join(t.TempDir(), name)
		w, err := Create(path)
		require.NoError(t, err)
		require.NoError(t, WriteFrame(w, f))
		require.NoError(t, w.Close())

		r, err := Open(path)
		require.NoError(t, err)
		got, err := ReadFrame(r, f)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, f.Int, got.Int, name)
	}
}

func TestPSNR(t *testing.T) {
	a := frame.NewInt(2, 2, 10, frame.Format444)
	b := frame.NewInt(2, 2, 10, frame.Format444)
	b.Int[0][0] = 2
	p, err := PSNR(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 10*math.Log10(1023*1023/1.0), p[0], 1e-9)
	assert.True(t, math.IsInf(p[1], 1))

	_, err = PSNR(a, frame.NewFloat(2, 2, frame.Format444))
	assert.ErrorIs(t, err, frame.ErrShape)
}
