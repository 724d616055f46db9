package cli

import (
	"github.com/spf13/cobra"

	"github.com/hctsai/layerforge/pkg/errors"
	"github.com/hctsai/layerforge/pkg/layerstack/memstack"
	"github.com/hctsai/layerforge/pkg/randomize"
)

// newRandomizeCmd creates the randomize command.
func newRandomizeCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "randomize [stacks.yaml]",
		Short: "Write one shared random seed to every procedural source",
		Long: `Write one shared random seed to every procedural source.

The randomize command collects every substance source exposing a seed
parameter, including sources plugged into other sources' image-input slots,
draws a fresh 16-bit seed, and writes the same seed to all of them so
correlated noise across layers re-rolls together.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRandomize(cmd, args[0], outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the edited document (omit for a dry run)")

	return cmd
}

func runRandomize(cmd *cobra.Command, input, outPath string) error {
	logger := loggerFromContext(cmd.Context())

	project, err := memstack.Load(input)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	res, err := randomize.Run(project)
	if err != nil {
		if errors.IsAdvisory(err) {
			printWarning("%s", errors.UserMessage(err))
			return nil
		}
		return err
	}
	prog.done("Seeded sources")

	printSuccess("Applied seed %d to %d sources", res.Seed, res.SuccessCount)
	if res.FailedCount > 0 {
		printWarning("%d sources refused the seed", res.FailedCount)
	}

	if outPath != "" {
		if err := memstack.Save(project, outPath); err != nil {
			return err
		}
		printFile(outPath)
	} else {
		printInfo("Dry run: document not written (use --output to save)")
	}
	return nil
}
