package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/tunedeck/tunedeck/internal/domain/manifest"
	"github.com/tunedeck/tunedeck/internal/domain/tool"
)

// WASMTool runs a WebAssembly module as an analysis tool. Each call
// instantiates the compiled module with the input payload as JSON on
// stdin and reads the result payload as JSON from stdout.
type WASMTool struct {
	meta    tool.Metadata
	schema  *manifest.InputSchema
	env     map[string]string
	runtime wazero.Runtime
	module  wazero.CompiledModule
	ctx     context.Context

	mu     sync.Mutex
	closed bool
}

// NewWASMTool compiles the module referenced by a wasm manifest. A
// payload that fails to read or compile is a construction failure.
func NewWASMTool(ctx context.Context, m *manifest.Manifest, dir string) (*WASMTool, error) {
	data, err := os.ReadFile(filepath.Join(dir, m.Module))
	if err != nil {
		return nil, fmt.Errorf("wasm payload not readable: %w", err)
	}

	r := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	mod, err := r.CompileModule(ctx, data)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("wasm payload does not compile: %w", err)
	}

	return &WASMTool{
		meta:    tool.NewMetadata(m.Name, m.Description, m.Version),
		schema:  m.Inputs,
		env:     m.Env,
		runtime: r,
		module:  mod,
		ctx:     ctx,
	}, nil
}

// Metadata implements tool.AgentTool.
func (t *WASMTool) Metadata() tool.Metadata {
	return t.meta
}

// ValidateInputs checks the payload against the manifest's input schema.
func (t *WASMTool) ValidateInputs(inputs map[string]any) (bool, error) {
	return t.schema.Check(inputs)
}

// Execute instantiates the module with the payload on stdin. For
// stdio-style wasm tools, instantiation is the execution: it blocks
// until the module exits or ctx is cancelled.
func (t *WASMTool) Execute(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, fmt.Errorf("tool %s is torn down", t.meta.Name)
	}
	t.mu.Unlock()

	stdin, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs not serializable: %w", err)
	}

	var stdout bytes.Buffer
	config := wazero.NewModuleConfig().
		WithStdin(bytes.NewReader(stdin)).
		WithStdout(&stdout).
		WithStderr(os.Stderr).
		WithArgs(t.meta.Name)

	for k, v := range t.env {
		config = config.WithEnv(k, v)
	}

	mod, err := t.runtime.InstantiateModule(ctx, t.module, config)
	if err != nil {
		// A clean exit surfaces as an ExitError with code zero.
		if exitErr, ok := err.(*sys.ExitError); !ok || exitErr.ExitCode() != 0 {
			return nil, err
		}
	}
	if mod != nil {
		defer mod.Close(ctx)
	}

	var result map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("tool wrote invalid JSON: %w", err)
	}
	return result, nil
}

// Teardown implements tool.Finalizer, releasing the wazero runtime.
// Calling it twice is a no-op.
func (t *WASMTool) Teardown() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.runtime.Close(t.ctx)
}
