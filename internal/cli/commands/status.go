package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tunedeck/tunedeck/internal/cli/errors"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show TuneDeck daemon status",
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		formatter := newFormatter()

		status, err := c.GetStatus()
		if err != nil {
			fail(formatter.FormatError(errors.Classify(err)))
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(status, "", "  ")
			fmt.Println(string(data))
		} else {
			color.Cyan("TuneDeck Daemon Status:")
			fmt.Printf("  Running: %v\n", status.Running)
			fmt.Printf("  Version: %s\n", status.Version)
			fmt.Printf("  Uptime:  %s\n", status.Uptime)
			fmt.Printf("  Tools:   %d\n", status.Tools)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
