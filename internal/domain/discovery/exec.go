package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/tunedeck/tunedeck/internal/domain/manifest"
	"github.com/tunedeck/tunedeck/internal/domain/tool"
)

// ExecTool runs a native subprocess as an analysis tool: the input
// payload goes to the child's stdin as JSON and the result payload is
// read from its stdout.
type ExecTool struct {
	meta    tool.Metadata
	schema  *manifest.InputSchema
	command string
	args    []string
	env     map[string]string
}

// NewExecTool builds a subprocess tool from an exec manifest. A command
// that cannot be resolved on PATH is a construction failure, so broken
// tools surface at discovery time rather than on first call.
func NewExecTool(m *manifest.Manifest) (*ExecTool, error) {
	if _, err := exec.LookPath(m.Command); err != nil {
		return nil, fmt.Errorf("command not found: %w", err)
	}

	return &ExecTool{
		meta:    tool.NewMetadata(m.Name, m.Description, m.Version),
		schema:  m.Inputs,
		command: m.Command,
		args:    m.Args,
		env:     m.Env,
	}, nil
}

// Metadata implements tool.AgentTool.
func (t *ExecTool) Metadata() tool.Metadata {
	return t.meta
}

// ValidateInputs checks the payload against the manifest's input schema.
func (t *ExecTool) ValidateInputs(inputs map[string]any) (bool, error) {
	return t.schema.Check(inputs)
}

// Execute runs the subprocess to completion, or until ctx is cancelled.
func (t *ExecTool) Execute(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	stdin, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs not serializable: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.command, t.args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Env = os.Environ()
	for k, v := range t.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, stderr.String())
		}
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("tool wrote invalid JSON: %w", err)
	}
	return result, nil
}
