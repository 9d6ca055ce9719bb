package commands

import (
	"github.com/spf13/cobra"

	"github.com/tunedeck/tunedeck/internal/cli/errors"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered analysis tools",
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		formatter := newFormatter()

		entries, err := c.ListTools()
		if err != nil {
			fail(formatter.FormatError(errors.Classify(err)))
		}
		formatter.FormatTools(entries)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
