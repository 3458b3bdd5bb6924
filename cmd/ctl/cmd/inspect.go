package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jpfielding/hdrtools.go/pkg/colorspace"
	"github.com/jpfielding/hdrtools.go/pkg/convert"
	"github.com/jpfielding/hdrtools.go/pkg/util"
	"github.com/spf13/cobra"
)

// resolution is what inspect reports for a params set
type resolution struct {
	Fingerprint  string                  `json:"fingerprint"`
	Params       convert.Params          `json:"params"`
	Modes        colorspace.Modes        `json:"modes"`
	Quantization colorspace.Quantization `json:"quantization"`
	Unsupported  string                  `json:"unsupported,omitempty"`
}

// NewInspectCmd prints the transforms and quantization a params set resolves to
func NewInspectCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "show resolved transforms and quantization",
		Long:  "Resolves the params (from --config and flags) and prints the selected matrices, luma weights and quantization as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(cmd.Flags())
			if err != nil {
				return err
			}
			res, err := inspect(p)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringP("config", "c", "", "YAML params file; flags override its values")
	addParamFlags(cmd.Flags())
	return cmd
}

func inspect(p convert.Params) (resolution, error) {
	res := resolution{Params: p}
	fp, err := util.Fingerprint(p)
	if err != nil {
		return res, err
	}
	res.Fingerprint = fp.String()
	modes, err := colorspace.Resolve(colorspace.ResolveRequest{
		InSpace:           p.InSpace,
		InPrimaries:       p.InPrimaries,
		OutSpace:          p.OutSpace,
		OutPrimaries:      p.OutPrimaries,
		ConstantLuminance: p.ConstantLuminance,
		HighPrecision:     p.HighPrecision,
	})
	if err != nil {
		res.Unsupported = err.Error()
	}
	res.Modes = modes
	if res.Quantization, err = colorspace.NewQuantization(p.BitDepth, p.Range); err != nil {
		return res, fmt.Errorf("%w: %w", convert.ErrInvalidParams, err)
	}
	return res, nil
}
