package convert

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpfielding/hdrtools.go/pkg/closedloop"
	"github.com/jpfielding/hdrtools.go/pkg/colorspace"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
	"github.com/jpfielding/hdrtools.go/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidateCollectsErrors(t *testing.T) {
	p := Defaults()
	p.BitDepth = 20
	p.MaxIterations = -1
	p.ChromaFormat = frame.Format420
	p.OutSpace = colorspace.SpaceICtCp
	p.Transfer = transfer.KindHLG

	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParams)

	var fields []string
	for _, line := range strings.Split(err.Error(), "\n") {
		for _, f := range []string{"bit_depth", "max_iterations", "chroma_format", "transfer"} {
			if strings.Contains(line, f+":") {
				fields = append(fields, f)
			}
		}
	}
	assert.ElementsMatch(t, []string{"bit_depth", "max_iterations", "chroma_format", "transfer"}, fields)

	var pe ParamError
	require.True(t, errors.As(err, &pe))
	assert.NotEmpty(t, pe.Field)
}

func TestValidateHLG(t *testing.T) {
	p := Defaults()
	p.Variant = VariantHLG
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams, "pq with the hlg variant")

	p.Transfer = transfer.KindHLG
	p.ChromaFormat = frame.Format420
	assert.NoError(t, p.Validate())

	p.DisplayPeakNits = -1
	assert.Error(t, p.Validate())
}

func TestValidateTeleModes(t *testing.T) {
	p := Defaults()
	p.Variant = VariantTele
	for _, m := range []closedloop.Mode{closedloop.ModeNull, closedloop.ModeBase} {
		p.ClosedLoop = m
		assert.NoError(t, p.Validate(), m.String())
	}
	for _, m := range []closedloop.Mode{closedloop.ModeBase2, closedloop.ModeBase3, closedloop.ModeBase4} {
		p.ClosedLoop = m
		err := p.Validate()
		assert.ErrorIs(t, err, ErrInvalidParams, m.String())
		var pe ParamError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "closed_loop", pe.Field)
	}
}

func TestLoadParams(t *testing.T) {
	doc := `
variant: hlg
closed_loop: base3
transfer: hlg
bit_depth: 12
range: full
out_primaries: rec709
chroma_format: 420
display_peak_nits: 2000
`
	p, err := LoadParams(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, VariantHLG, p.Variant)
	assert.Equal(t, closedloop.ModeBase3, p.ClosedLoop)
	assert.Equal(t, transfer.KindHLG, p.Transfer)
	assert.Equal(t, 12, p.BitDepth)
	assert.Equal(t, colorspace.RangeFull, p.Range)
	assert.Equal(t, colorspace.PrimariesBT709, p.OutPrimaries)
	assert.Equal(t, frame.Format420, p.ChromaFormat)
	assert.Equal(t, 2000.0, p.DisplayPeakNits)
	// untouched fields keep their defaults
	assert.True(t, p.TFDistance)
	assert.Equal(t, closedloop.DefaultMaxIterations, p.MaxIterations)
	assert.Equal(t, colorspace.PrimariesBT2020, p.InPrimaries)
}

func TestLoadParamsRejects(t *testing.T) {
	_, err := LoadParams(strings.NewReader("variant: generic\nmystery: 1\n"))
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = LoadParams(strings.NewReader("closed_loop: BASE9\n"))
	assert.ErrorIs(t, err, ErrInvalidParams)

	p, err := LoadParams(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestWriteParamsRoundTrip(t *testing.T) {
	p := Defaults()
	p.Variant = VariantMultiply
	p.MultiplyDomain = closedloop.DomainTransfer
	p.Range = colorspace.RangeSDI

	var buf bytes.Buffer
	require.NoError(t, WriteParams(&buf, p))
	assert.Contains(t, buf.String(), "multiply_domain: transfer")

	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	got, err := LoadParamsFile(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = LoadParamsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
