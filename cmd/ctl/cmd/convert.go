package cmd

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jpfielding/hdrtools.go/pkg/convert"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
	"github.com/jpfielding/hdrtools.go/pkg/logging"
	"github.com/jpfielding/hdrtools.go/pkg/transfer"
	"github.com/jpfielding/hdrtools.go/pkg/util"
	"github.com/jpfielding/hdrtools.go/pkg/yuvio"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewConvertCmd converts a sequence of linear RGB frames
func NewConvertCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "convert linear RGB frames to Y'CbCr",
		Long:  "Reads planar float32 RGB (or a TIFF), converts every frame with the configured closed loop and writes planar output. Paths ending in .zst are compressed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(cmd.Flags())
			if err != nil {
				return err
			}
			return runConvert(ctx, cmd, p)
		},
	}
	pf := cmd.Flags()
	pf.StringP("config", "c", "", "YAML params file; flags override its values")
	pf.StringP("in", "i", "", "input path (- for stdin)")
	pf.String("in-format", "rgbf32", "input format (rgbf32|tiff)")
	pf.String("linearize", "", "transfer function coding the TIFF samples, empty when already linear")
	pf.Int("width", 0, "frame width for rgbf32 input")
	pf.Int("height", 0, "frame height for rgbf32 input")
	pf.Int("frames", 0, "frames to convert, 0 for all")
	pf.StringP("out", "o", "", "output path (- for stdout)")
	pf.Bool("float-out", false, "write normalized float32 planes instead of integer codes")
	pf.String("alternate", "", "rgbf32 file supplying the luminance target (tele variant)")
	pf.Float64("norm-scale", 1, "scale applied to the alternate luminance")
	addParamFlags(pf)
	return cmd
}

// params fields reachable from the command line, by flag name
var paramFlags = []struct {
	name, usage string
	field       func(*convert.Params) encoding.TextUnmarshaler
}{
	{"variant", "converter variant (generic|tele|hlg|multiply)", func(p *convert.Params) encoding.TextUnmarshaler { return &p.Variant }},
	{"closed-loop", "closed loop mode (NULL|BASE|BASE2|BASE3|BASE4)", func(p *convert.Params) encoding.TextUnmarshaler { return &p.ClosedLoop }},
	{"transfer", "transfer function (pq|hlg|bt709|srgb|...)", func(p *convert.Params) encoding.TextUnmarshaler { return &p.Transfer }},
	{"range", "sample range (full|standard|sdi)", func(p *convert.Params) encoding.TextUnmarshaler { return &p.Range }},
	{"in-primaries", "input primaries", func(p *convert.Params) encoding.TextUnmarshaler { return &p.InPrimaries }},
	{"out-space", "output color space (ycbcr|ictcp|rgb|rct)", func(p *convert.Params) encoding.TextUnmarshaler { return &p.OutSpace }},
	{"out-primaries", "output primaries", func(p *convert.Params) encoding.TextUnmarshaler { return &p.OutPrimaries }},
	{"chroma-format", "output chroma format (444|420)", func(p *convert.Params) encoding.TextUnmarshaler { return &p.ChromaFormat }},
	{"multiply-domain", "multiply ratio domain (linear|transfer)", func(p *convert.Params) encoding.TextUnmarshaler { return &p.MultiplyDomain }},
}

func addParamFlags(pf *pflag.FlagSet) {
	d := convert.Defaults()
	for _, f := range paramFlags {
		def, _ := f.field(&d).(encoding.TextMarshaler).MarshalText()
		pf.String(f.name, string(def), f.usage)
	}
	pf.Int("bit-depth", d.BitDepth, "output bit depth")
	pf.Int("max-iterations", d.MaxIterations, "bisection iteration cap")
	pf.Bool("no-bounds", d.UseNoBounds, "search the whole code range")
	pf.Bool("tf-distance", d.TFDistance, "compare luminance in the transfer domain")
	pf.Bool("high-precision", d.HighPrecision, "use the exact inverse matrix")
	pf.Bool("strict", d.Strict, "fail on unsupported transforms instead of passing samples through")
	pf.Float64("display-peak", d.DisplayPeakNits, "HLG display peak luminance in nits")
}

// loadParams reads --config over the defaults, then applies the flags the user set
func loadParams(fs *pflag.FlagSet) (convert.Params, error) {
	p := convert.Defaults()
	if path, _ := fs.GetString("config"); path != "" {
		var err error
		if p, err = convert.LoadParamsFile(path); err != nil {
			return p, err
		}
	}
	for _, f := range paramFlags {
		if !fs.Changed(f.name) {
			continue
		}
		v, _ := fs.GetString(f.name)
		if err := f.field(&p).UnmarshalText([]byte(v)); err != nil {
			return p, fmt.Errorf("--%s: %w", f.name, err)
		}
	}
	if fs.Changed("bit-depth") {
		p.BitDepth, _ = fs.GetInt("bit-depth")
	}
	if fs.Changed("max-iterations") {
		p.MaxIterations, _ = fs.GetInt("max-iterations")
	}
	if fs.Changed("no-bounds") {
		p.UseNoBounds, _ = fs.GetBool("no-bounds")
	}
	if fs.Changed("tf-distance") {
		p.TFDistance, _ = fs.GetBool("tf-distance")
	}
	if fs.Changed("high-precision") {
		p.HighPrecision, _ = fs.GetBool("high-precision")
	}
	if fs.Changed("strict") {
		p.Strict, _ = fs.GetBool("strict")
	}
	if fs.Changed("display-peak") {
		p.DisplayPeakNits, _ = fs.GetFloat64("display-peak")
	}
	return p, p.Validate()
}

// frameReader yields source frames until io.EOF
type frameReader func() (*frame.Frame, error)

func openInput(cmd *cobra.Command) (frameReader, io.Closer, error) {
	path, _ := cmd.Flags().GetString("in")
	format, _ := cmd.Flags().GetString("in-format")
	w, _ := cmd.Flags().GetInt("width")
	h, _ := cmd.Flags().GetInt("height")
	if path == "" {
		return nil, nil, fmt.Errorf("input path is required, use --in")
	}

	var tf transfer.Function
	switch format {
	case "rgbf32":
		if w <= 0 || h <= 0 {
			return nil, nil, fmt.Errorf("rgbf32 input needs --width and --height")
		}
	case "tiff":
		if name, _ := cmd.Flags().GetString("linearize"); name != "" {
			kind, err := transfer.ParseKind(name)
			if err == nil {
				tf, err = transfer.New(kind)
			}
			if err != nil {
				return nil, nil, fmt.Errorf("--linearize: %w", err)
			}
		}
	default:
		return nil, nil, fmt.Errorf("unknown input format %q", format)
	}

	var r io.ReadCloser = io.NopCloser(cmd.InOrStdin())
	if path != "-" {
		var err error
		if r, err = yuvio.Open(path); err != nil {
			return nil, nil, err
		}
	}
	if format == "rgbf32" {
		return rgbReader(r, w, h), r, nil
	}
	done := false
	return func() (*frame.Frame, error) {
		if done {
			return nil, io.EOF
		}
		done = true
		return yuvio.ReadTIFF(r, tf)
	}, r, nil
}

func rgbReader(r io.Reader, w, h int) frameReader {
	cr := &countingReader{r: r}
	want := int64(3 * 4 * w * h)
	return func() (*frame.Frame, error) {
		start := cr.n
		f, err := yuvio.ReadRGBFloat(cr, w, h)
		got := cr.n - start
		switch {
		case err == nil:
			return f, nil
		case got == 0 && errors.Is(err, io.EOF):
			return nil, io.EOF
		case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("truncated frame, %d of %d bytes: %w", got, want, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func runConvert(ctx context.Context, cmd *cobra.Command, p convert.Params) error {
	fp, err := util.Fingerprint(p)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("run", util.RunID()), slog.String("params", fp.String()))

	next, in, err := openInput(cmd)
	if err != nil {
		return err
	}
	defer in.Close()

	var opts []convert.Option
	if alt, _ := cmd.Flags().GetString("alternate"); alt != "" {
		scale, _ := cmd.Flags().GetFloat64("norm-scale")
		w, _ := cmd.Flags().GetInt("width")
		h, _ := cmd.Flags().GetInt("height")
		f, err := readAlternate(alt, w, h)
		if err != nil {
			return err
		}
		opts = append(opts, convert.WithSource(convert.AlternateSource{Frame: f, NormScale: scale}))
	}
	conv, err := convert.New(p, opts...)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		return fmt.Errorf("output path is required, use --out")
	}
	var out io.WriteCloser = nopWriteCloser{cmd.OutOrStdout()}
	if outPath != "-" {
		if out, err = yuvio.Create(outPath); err != nil {
			return err
		}
	}
	floatOut, _ := cmd.Flags().GetBool("float-out")
	limit, _ := cmd.Flags().GetInt("frames")

	slog.InfoContext(ctx, "converting", slog.Any("params", p))
	var total convert.Stats
	n := 0
	for ; limit == 0 || n < limit; n++ {
		if err := ctx.Err(); err != nil {
			out.Close()
			return err
		}
		src, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			out.Close()
			return fmt.Errorf("frame %d: %w", n, err)
		}
		dst := frame.NewInt(src.Width, src.Height, p.BitDepth, p.ChromaFormat)
		if floatOut {
			dst = frame.NewFloat(src.Width, src.Height, p.ChromaFormat)
		}
		if err := conv.Process(dst, src); err != nil {
			out.Close()
			return fmt.Errorf("frame %d: %w", n, err)
		}
		if err := yuvio.WriteFrame(out, dst); err != nil {
			out.Close()
			return fmt.Errorf("frame %d: %w", n, err)
		}
		s := conv.Stats()
		slog.DebugContext(ctx, "frame done", slog.Int("frame", n), slog.Any("stats", s))
		total.Pixels += s.Pixels
		total.Shortcuts += s.Shortcuts
		total.Iterations += s.Iterations
		total.Exhausted += s.Exhausted
		total.MultiplyFallbacks += s.MultiplyFallbacks
	}
	if err := out.Close(); err != nil {
		return err
	}
	slog.InfoContext(ctx, "conversion finished", slog.Int("frames", n), slog.Any("stats", total))
	return nil
}

func readAlternate(path string, w, h int) (*frame.Frame, error) {
	r, err := yuvio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	f, err := yuvio.ReadRGBFloat(r, w, h)
	if err != nil {
		return nil, fmt.Errorf("alternate source: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
