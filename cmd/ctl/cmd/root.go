package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jpfielding/hdrtools.go/pkg/logging"
	"github.com/spf13/cobra"
)

// logSink is the rotating log file opened by --log-file, closed by Execute
var logSink io.Closer

// Execute runs the command line and closes the log file whether or not the command failed
func Execute(ctx context.Context, gitsha string, args []string) error {
	root := NewRoot(ctx, gitsha)
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		slog.ErrorContext(ctx, "command failed", "error", err)
	}
	if logSink != nil {
		logSink.Close()
		logSink = nil
		slog.SetDefault(logging.Logger(os.Stderr, false, slog.LevelInfo))
	}
	return err
}

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hdrctl",
		Short: "a CLI to convert linear HDR RGB into closed-loop Y'CbCr",
		Long:  "hdrctl converts linear-light RGB frames into quantized Y'CbCr or ICtCp, correcting luma so the decoded picture keeps the source luminance.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			asJSON, _ := cmd.Flags().GetBool("log-json")
			path, _ := cmd.Flags().GetString("log-file")

			// Parse log level
			var level slog.Level
			levelErr := level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
			if levelErr != nil {
				level = slog.LevelInfo
			}
			var w io.Writer = os.Stderr
			if path != "" {
				f := logging.RotatingFile(path)
				logSink, w = f, f
			}
			slog.SetDefault(logging.Logger(w, asJSON, level))

			if levelErr != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", levelErr)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd.OutOrStdout(), cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewConvertCmd(ctx),
		NewInspectCmd(ctx),
		NewCompareCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.Bool("log-json", false, "Log as JSON")
	pf.String("log-file", "", "Log to a rotating file instead of stderr")
	return cmd
}

func printCommandTree(w io.Writer, cmd *cobra.Command, indent int) {
	fmt.Fprintln(w, strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(w, subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}
