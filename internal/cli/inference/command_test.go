package inference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tunedeck/tunedeck/internal/cli/inference"
)

func TestInferCommand(t *testing.T) {
	// Bare tool name with key=value args becomes a call.
	cmd, args := inference.InferCommand([]string{"dataset_linter", "path=data.jsonl"})
	assert.Equal(t, "call", cmd)
	assert.Equal(t, []string{"dataset_linter", "path=data.jsonl"}, args)

	// Known subcommands pass through untouched.
	cmd, _ = inference.InferCommand([]string{"list"})
	assert.Equal(t, "", cmd)

	// Flags are never a tool name.
	cmd, _ = inference.InferCommand([]string{"--json", "list"})
	assert.Equal(t, "", cmd)

	cmd, _ = inference.InferCommand(nil)
	assert.Equal(t, "", cmd)
}
