package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hctsai/layerforge/pkg/transform"
)

// newReportCmd creates the report command.
func newReportCmd() *cobra.Command {
	var useTUI bool

	cmd := &cobra.Command{
		Use:   "report [report.json]",
		Short: "Render a saved run report as a tree with statistics",
		Long: `Render a saved run report as a tree with statistics.

The report command loads a report saved with 'transform --report' and prints
it as an indented tree mirroring the layer hierarchy, one status line per
visited node, followed by the outcome statistics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := transform.LoadReport(args[0])
			if err != nil {
				return err
			}
			if useTUI {
				return browseReport(report)
			}
			printInfo("Transform %s (scale %g, rotation %d)", report.RunID, report.Scale, report.Rotation)
			printStats(report.Stats())
			printNewline()
			printReportTree(report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useTUI, "tui", false, "browse the report interactively")

	return cmd
}

// printReportTree renders the report entries as an indented tree. Ancestor
// segments that carry no entry of their own (visible groups, layers above
// their effects) are printed as dim header lines the first time they appear;
// pre-order entry order guarantees ancestors precede descendants.
func printReportTree(report *transform.Report) {
	var prev transform.Path
	for _, e := range report.Entries() {
		common := 0
		for common < len(prev) && common < len(e.Path)-1 && prev[common] == e.Path[common] {
			common++
		}
		for depth := common; depth < len(e.Path)-1; depth++ {
			fmt.Println(indent(depth) + StyleDim.Render(e.Path[depth]))
		}

		leaf := e.Path[len(e.Path)-1]
		line := indent(len(e.Path)-1) + outcomeIcon(e.Result.Kind) + " " + StyleValue.Render(leaf)
		if e.Result.Detail != "" {
			line += StyleDim.Render(" · " + e.Result.Detail)
		}
		fmt.Println(line)
		prev = e.Path
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
