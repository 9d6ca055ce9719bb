package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tunedeck/tunedeck/internal/cli/errors"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [directory]",
	Short: "Rescan the tools directory and rebuild the catalog",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		formatter := newFormatter()

		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}

		report, err := c.DiscoverTools(dir)
		if err != nil {
			fail(formatter.FormatError(errors.Classify(err)))
		}

		fmt.Printf("Registered %d tool(s)\n", report.Registered)
		if len(report.Failures) > 0 {
			color.Yellow("%d tool(s) failed to load:", len(report.Failures))
			for _, f := range report.Failures {
				fmt.Printf("  %s: %s\n", f.Source, f.Reason)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
