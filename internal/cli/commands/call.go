package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tunedeck/tunedeck/internal/cli/errors"
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [key=value...]",
	Short: "Invoke an analysis tool by name",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := newClient()
		formatter := newFormatter()

		toolName := args[0]

		// Parse arguments. A value that parses as JSON is passed
		// through typed; anything else stays a string.
		inputs := make(map[string]any)
		for _, arg := range args[1:] {
			kv := strings.SplitN(arg, "=", 2)
			if len(kv) != 2 {
				fail(fmt.Sprintf("Error: invalid argument %q, expected key=value", arg))
			}
			var typed any
			if err := json.Unmarshal([]byte(kv[1]), &typed); err == nil {
				inputs[kv[0]] = typed
			} else {
				inputs[kv[0]] = kv[1]
			}
		}

		outcome, err := c.CallTool(toolName, inputs)
		if err != nil {
			fail(formatter.FormatError(errors.Classify(err)))
		}
		fmt.Println(formatter.FormatOutcome(outcome))
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}
