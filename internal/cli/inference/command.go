package inference

import (
	"strings"
)

// InferCommand lets users skip the subcommand for the common case:
// `tunedeck dataset_linter path=data.jsonl` becomes a call.
func InferCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}

	first := args[0]
	if strings.HasPrefix(first, "-") {
		return "", args
	}

	// A bare tool name followed by key=value pairs is a call.
	if len(args) > 1 && strings.Contains(args[1], "=") {
		return "call", args
	}

	return "", args
}
