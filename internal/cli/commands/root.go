package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tunedeck/tunedeck/internal/cli/client"
	"github.com/tunedeck/tunedeck/internal/cli/inference"
	"github.com/tunedeck/tunedeck/internal/cli/output"
)

var (
	daemonURL  string
	jsonOutput bool
	rawOutput  bool
	timeout    int
)

var rootCmd = &cobra.Command{
	Use:   "tunedeck",
	Short: "TuneDeck CLI - fine-tuning runs and code-analysis tools",
	Long: `TuneDeck is a local fine-tuning studio. This CLI talks to the TuneDeck
daemon to manage analysis tools discovered from the tools directory and
to configure and track fine-tuning runs.`,
}

func Execute() error {
	// Simple command inference - prepend inferred command to args
	if len(os.Args) > 1 {
		inferredCmd, _ := inference.InferCommand(os.Args[1:])
		if inferredCmd != "" {
			newArgs := make([]string, 0, len(os.Args)+1)
			newArgs = append(newArgs, os.Args[0])
			newArgs = append(newArgs, inferredCmd)
			newArgs = append(newArgs, os.Args[1:]...)
			os.Args = newArgs
		}
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&daemonURL, "daemon", "http://localhost:6340", "daemon base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&rawOutput, "raw", false, "raw output (no formatting)")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 30000, "request timeout in milliseconds")
}

func newClient() *client.ControlClient {
	return client.NewControlClient(daemonURL, time.Duration(timeout)*time.Millisecond)
}

func newFormatter() *output.Formatter {
	var fmtMode output.OutputFormat = output.FormatText
	if jsonOutput {
		fmtMode = output.FormatJSON
	} else if rawOutput {
		fmtMode = output.FormatRaw
	}
	return output.NewFormatter(fmtMode, true)
}

func fail(msg string) {
	fmt.Println(msg)
	os.Exit(1)
}
