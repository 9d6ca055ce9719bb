package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tunedeck/tunedeck/internal/cli/errors"
)

var (
	runModel   string
	runDataset string
	runPreset  string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List fine-tuning runs",
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		formatter := newFormatter()

		runs, err := c.ListRuns()
		if err != nil {
			fail(formatter.FormatError(errors.Classify(err)))
		}
		formatter.FormatRuns(runs)
	},
}

var runsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a fine-tuning run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		formatter := newFormatter()

		created, err := c.CreateRun(args[0], runModel, runDataset, runPreset)
		if err != nil {
			fail(formatter.FormatError(errors.Classify(err)))
		}
		fmt.Printf("Created run %s (%s)\n", created.ID, created.Name)
	},
}

var runsPreflightCmd = &cobra.Command{
	Use:   "preflight <run-id>",
	Short: "Run the configured analysis tools against a run's dataset",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		formatter := newFormatter()

		report, err := c.Preflight(args[0])
		if err != nil {
			fail(formatter.FormatError(errors.Classify(err)))
		}
		fmt.Println(formatter.FormatPreflight(report))
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsCreateCmd)
	runsCmd.AddCommand(runsPreflightCmd)

	runsCreateCmd.Flags().StringVar(&runModel, "model", "", "base model identifier")
	runsCreateCmd.Flags().StringVar(&runDataset, "dataset", "", "path to the JSONL training dataset")
	runsCreateCmd.Flags().StringVar(&runPreset, "preset", "balanced", "hyperparameter preset")
	runsCreateCmd.MarkFlagRequired("model")
	runsCreateCmd.MarkFlagRequired("dataset")
}
