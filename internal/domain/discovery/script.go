package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dop251/goja"

	"github.com/tunedeck/tunedeck/internal/domain/tool"
)

// ScriptTool is a plugin implemented as a JavaScript file. The script's
// top level must define a `metadata` object plus `validate(inputs)` and
// `execute(inputs)` functions; `init()` and `teardown()` are optional.
//
// A goja runtime is single-threaded, so all calls into the VM are
// serialized behind a mutex.
type ScriptTool struct {
	mu       sync.Mutex
	vm       *goja.Runtime
	meta     tool.Metadata
	validate goja.Callable
	execute  goja.Callable
	initFn   goja.Callable
	teardown goja.Callable

	initialized bool
	tornDown    bool
}

// NewScriptTool evaluates a script file and probes its globals for the
// tool capability set. A script that fails to parse, throws at top
// level, or lacks a required symbol is a discovery failure.
func NewScriptTool(path string) (*ScriptTool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	prog, err := goja.Compile(filepath.Base(path), string(src), false)
	if err != nil {
		return nil, fmt.Errorf("script does not parse: %w", err)
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	vm.Set("log", func(msg any) {
		fmt.Printf("[%s] %v\n", filepath.Base(path), msg)
	})
	if _, err := vm.RunProgram(prog); err != nil {
		return nil, fmt.Errorf("script failed at top level: %w", err)
	}

	t := &ScriptTool{vm: vm}
	if err := t.probe(vm); err != nil {
		return nil, err
	}
	return t, nil
}

// probe checks that the evaluated program structurally satisfies the
// capability contract: metadata with a non-empty name, callable
// validate and execute.
func (t *ScriptTool) probe(vm *goja.Runtime) error {
	metaVal := vm.Get("metadata")
	if metaVal == nil || goja.IsUndefined(metaVal) || goja.IsNull(metaVal) {
		return fmt.Errorf("script defines no metadata object")
	}

	var meta struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Version     string `json:"version"`
	}
	if err := vm.ExportTo(metaVal, &meta); err != nil {
		return fmt.Errorf("metadata is not an object: %w", err)
	}
	if meta.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	t.meta = tool.NewMetadata(meta.Name, meta.Description, meta.Version)

	var ok bool
	if t.validate, ok = goja.AssertFunction(vm.Get("validate")); !ok {
		return fmt.Errorf("script defines no validate function")
	}
	if t.execute, ok = goja.AssertFunction(vm.Get("execute")); !ok {
		return fmt.Errorf("script defines no execute function")
	}

	// Lifecycle hooks are optional.
	t.initFn, _ = goja.AssertFunction(vm.Get("init"))
	t.teardown, _ = goja.AssertFunction(vm.Get("teardown"))
	return nil
}

// Metadata implements tool.AgentTool.
func (t *ScriptTool) Metadata() tool.Metadata {
	return t.meta
}

// ValidateInputs calls the script's validate function. A thrown JS
// exception is reported as an error; the caller treats it as a
// validation failure.
func (t *ScriptTool) ValidateInputs(inputs map[string]any) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result, err := t.validate(goja.Undefined(), t.vm.ToValue(inputs))
	if err != nil {
		return false, fmt.Errorf("validate threw: %w", err)
	}
	return result.ToBoolean(), nil
}

// Execute calls the script's execute function and exports its return
// value as a result payload.
func (t *ScriptTool) Execute(_ context.Context, inputs map[string]any) (map[string]any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result, err := t.execute(goja.Undefined(), t.vm.ToValue(inputs))
	if err != nil {
		return nil, fmt.Errorf("execute threw: %w", err)
	}

	exported := result.Export()
	if exported == nil {
		return map[string]any{}, nil
	}
	if payload, ok := exported.(map[string]any); ok {
		return payload, nil
	}
	return map[string]any{"result": exported}, nil
}

// Init implements tool.Initializer. Calling it twice is a no-op.
func (t *ScriptTool) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized || t.initFn == nil {
		t.initialized = true
		return nil
	}
	if _, err := t.initFn(goja.Undefined()); err != nil {
		return fmt.Errorf("init threw: %w", err)
	}
	t.initialized = true
	return nil
}

// Teardown implements tool.Finalizer. Calling it twice is a no-op.
func (t *ScriptTool) Teardown() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tornDown {
		return nil
	}
	t.tornDown = true
	if t.teardown == nil {
		return nil
	}
	if _, err := t.teardown(goja.Undefined()); err != nil {
		return fmt.Errorf("teardown threw: %w", err)
	}
	return nil
}
