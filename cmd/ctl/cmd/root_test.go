package cmd

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpfielding/hdrtools.go/pkg/colorspace"
	"github.com/jpfielding/hdrtools.go/pkg/convert"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
	"github.com/jpfielding/hdrtools.go/pkg/yuvio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(context.Background(), "abc123")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append(args, "--log-level", "ERROR"))
	err := root.Execute()
	return out.String(), err
}

// writeWhite writes n white 4x2 float frames
func writeWhite(t *testing.T, path string, n int) {
	t.Helper()
	var buf bytes.Buffer
	plane := []float32{1, 1, 1, 1, 1, 1, 1, 1}
	for i := 0; i < n*3; i++ {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, plane))
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "abc123\n", out)
}

func TestConvertAndCompare(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "white.rgb")
	writeWhite(t, in, 2)
	cfg := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("range: standard\nin_primaries: bt709\nout_primaries: bt709\n"), 0o644))

	for _, name := range []string{"out.yuv", "out.yuv.zst"} {
		out := filepath.Join(dir, name)
		_, err := execute(t, "convert", "--config", cfg, "--range", "full",
			"--in", in, "--width", "4", "--height", "2", "--out", out)
		require.NoError(t, err)

		r, err := yuvio.Open(out)
		require.NoError(t, err)
		proto := frame.NewInt(4, 2, 10, frame.Format444)
		for i := 0; i < 2; i++ {
			f, err := yuvio.ReadFrame(r, proto)
			require.NoError(t, err, "frame %d", i)
			assert.Equal(t, uint16(1023), f.Int[0][0])
			assert.Equal(t, uint16(512), f.Int[1][0])
		}
		require.NoError(t, r.Close())
	}

	got, err := execute(t, "compare", "--width", "4", "--height", "2",
		filepath.Join(dir, "out.yuv"), filepath.Join(dir, "out.yuv.zst"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "0\tinf\tinf\tinf\n1\tinf\tinf\tinf\n"), got)
}

func TestConvertRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "convert", "--variant", "sideways", "--in", "x", "--out", "y")
	assert.ErrorContains(t, err, "--variant")

	_, err = execute(t, "convert", "--bit-depth", "4", "--in", "x", "--out", "y")
	assert.ErrorIs(t, err, convert.ErrInvalidParams)

	_, err = execute(t, "convert", "--in", "x", "--out", "y")
	assert.ErrorContains(t, err, "--width")
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", "--out-primaries", "bt709", "--range", "full")
	require.NoError(t, err)

	var res struct {
		Fingerprint  string
		Modes        colorspace.Modes
		Quantization colorspace.Quantization
		Unsupported  string
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.Fingerprint)
	assert.Empty(t, res.Unsupported)
	assert.True(t, res.Modes.HasGamut, "bt2020 input to bt709 output")
	assert.Equal(t, 1023.0, res.Quantization.LumaWeight)

	out, err = execute(t, "inspect", "--out-space", "xyz")
	require.NoError(t, err)
	assert.Contains(t, out, "unsupported color transform")
}

func TestConvertTruncatedInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "short.rgb")
	writeWhite(t, in, 1)
	f, err := os.OpenFile(in, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, 10))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = execute(t, "convert", "--in", in, "--width", "4", "--height", "2", "--out", filepath.Join(dir, "out.yuv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorContains(t, err, "10 of 96 bytes")
}

func TestLogFileClosedOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdrctl.log")
	err := Execute(context.Background(), "abc123", []string{"convert", "--in", "x", "--out", "y", "--log-file", path})
	require.Error(t, err)
	assert.Nil(t, logSink)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "command failed")
}
