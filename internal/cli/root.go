package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hctsai/layerforge/pkg/buildinfo"
	"github.com/hctsai/layerforge/pkg/observe"
)

// Execute runs the layerforge CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (transform,
// randomize, report), configures logging based on the --verbose flag, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, plus per-node dispatch tracing
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "layerforge",
		Short:        "Layerforge batch-edits texture layer stacks",
		Long:         `Layerforge is a CLI tool for batch-editing texture authoring layer stacks: it rescales and rotates every transformable layer in one pass, re-rolls procedural seeds, and produces an auditable per-node report.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			cmd.SetContext(withLogger(cmd.Context(), logger))
			if verbose {
				observe.SetWalkHooks(&logWalkHooks{logger: logger})
				observe.SetSeedHooks(&logSeedHooks{logger: logger})
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newTransformCmd())
	root.AddCommand(newRandomizeCmd())
	root.AddCommand(newReportCmd())

	return root.ExecuteContext(ctx)
}
