package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hctsai/layerforge/pkg/errors"
	"github.com/hctsai/layerforge/pkg/layerstack/memstack"
	"github.com/hctsai/layerforge/pkg/transform"
)

// newTransformCmd creates the transform command.
func newTransformCmd() *cobra.Command {
	var (
		scale      float64
		rotation   int
		setsStr    string
		rulesPath  string
		reportPath string
		mdPath     string
		outPath    string
		useTUI     bool
	)

	cmd := &cobra.Command{
		Use:   "transform [stacks.yaml]",
		Short: "Apply a scale/rotation transform across a stack document",
		Long: `Apply a scale/rotation transform across a stack document.

The transform command walks every layer of the selected texture sets,
classifies each node against the handler chain, and applies the compensated
adjustment: UV transforms for plain fills, parameter rewrites for brick
generators, 3D procedurals, filters and mask generators.

Each visited node produces exactly one report entry. The edited document is
only written back when --output is given; without it the run is a dry run
against the in-memory copy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transformArgs := transform.Args{Scale: scale, Rotation: rotation}
			return runTransform(cmd, args[0], transformArgs, transformOpts{
				sets:       setsStr,
				rulesPath:  rulesPath,
				reportPath: reportPath,
				mdPath:     mdPath,
				outPath:    outPath,
				useTUI:     useTUI,
			})
		},
	}

	cmd.Flags().Float64VarP(&scale, "scale", "s", 1.0, "UV scale multiplier (must be positive)")
	cmd.Flags().IntVarP(&rotation, "rotation", "r", 0, "rotation offset in degrees [-180, 180]")
	cmd.Flags().StringVar(&setsStr, "sets", "", "texture sets to process (comma-separated, default all)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "TOML rules file overlaying the built-in tables")
	cmd.Flags().StringVar(&reportPath, "report", "", "write the run report as JSON")
	cmd.Flags().StringVar(&mdPath, "markdown", "", "write the run report as a Markdown log")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the edited document (omit for a dry run)")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "browse the report interactively after the run")

	return cmd
}

type transformOpts struct {
	sets       string
	rulesPath  string
	reportPath string
	mdPath     string
	outPath    string
	useTUI     bool
}

func runTransform(cmd *cobra.Command, input string, args transform.Args, opts transformOpts) error {
	logger := loggerFromContext(cmd.Context())

	project, err := memstack.Load(input)
	if err != nil {
		return err
	}

	rules := transform.DefaultRules()
	if opts.rulesPath != "" {
		if rules, err = transform.LoadRules(opts.rulesPath); err != nil {
			return err
		}
		logger.Debug("loaded rules overlay", "path", opts.rulesPath)
	}

	var selected map[string]bool
	if opts.sets != "" {
		selected = map[string]bool{}
		for _, name := range strings.Split(opts.sets, ",") {
			if name = strings.TrimSpace(name); name != "" {
				selected[name] = true
			}
		}
	}

	prog := newProgress(logger)
	report, err := transform.Run(project, args, rules, selected)
	if err != nil {
		if errors.IsAdvisory(err) {
			printWarning("%s", errors.UserMessage(err))
			return nil
		}
		return err
	}
	prog.done(fmt.Sprintf("Visited %d nodes", report.Len()))

	printInfo("Transform %s (scale %g, rotation %d)", report.RunID, args.Scale, args.Rotation)
	printStats(report.Stats())
	printNewline()

	if opts.outPath != "" {
		if err := memstack.Save(project, opts.outPath); err != nil {
			return err
		}
		printFile(opts.outPath)
	} else {
		printInfo("Dry run: document not written (use --output to save)")
	}
	if opts.reportPath != "" {
		if err := transform.SaveReport(report, opts.reportPath); err != nil {
			return err
		}
		printFile(opts.reportPath)
	}
	if opts.mdPath != "" {
		if err := os.WriteFile(opts.mdPath, []byte(report.Markdown()), 0o644); err != nil {
			return fmt.Errorf("write markdown log %s: %w", opts.mdPath, err)
		}
		printFile(opts.mdPath)
	}

	if opts.useTUI {
		return browseReport(report)
	}

	printReportTree(report)
	if stats := report.Stats(); stats.Failed > 0 {
		printError("%d nodes failed; see the report for details", stats.Failed)
	}
	return nil
}
