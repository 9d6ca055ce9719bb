// Package discovery turns a directory of plugin files into constructed
// tool instances, tolerating per-candidate failure.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tunedeck/tunedeck/internal/domain/manifest"
	"github.com/tunedeck/tunedeck/internal/domain/tool"
)

// Discovered pairs a constructed tool with the file it came from, for
// diagnostics and collision logging.
type Discovered struct {
	Tool   tool.AgentTool
	Source string
}

// Failure records one candidate that could not be loaded or
// constructed. Failures are data, not errors: a bad plugin file never
// aborts the scan for the others.
type Failure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Engine scans a flat tools directory and constructs tool instances.
// It holds no registry state; the caller decides how to merge results.
type Engine struct {
	ctx context.Context // parent context for wasm runtimes
}

// NewEngine creates a discovery engine. ctx bounds the lifetime of the
// runtimes created for discovered tools.
func NewEngine(ctx context.Context) *Engine {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Engine{ctx: ctx}
}

// Scan enumerates direct files of dir (non-recursive, name order) and
// constructs a tool for every qualifying candidate:
//
//   - *.js    goja script plugins, self-describing
//   - *.json  manifests selecting a wasm, exec, or builtin runtime
//
// *.wasm files are payloads referenced by manifests and are skipped.
// A missing directory is a configuration error returned to the caller;
// an empty directory is an empty result.
func (e *Engine) Scan(dir string) ([]Discovered, []Failure, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("tools directory not readable: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var discovered []Discovered
	var failures []Failure

	for _, name := range names {
		path := filepath.Join(dir, name)

		var t tool.AgentTool
		var loadErr error
		switch strings.ToLower(filepath.Ext(name)) {
		case ".js":
			t, loadErr = NewScriptTool(path)
		case ".json":
			t, loadErr = e.loadManifestTool(path)
		default:
			continue
		}

		if loadErr != nil {
			failures = append(failures, Failure{Source: name, Reason: loadErr.Error()})
			continue
		}
		discovered = append(discovered, Discovered{Tool: t, Source: name})
	}

	return discovered, failures, nil
}

func (e *Engine) loadManifestTool(path string) (tool.AgentTool, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if result := manifest.Validate(m); !result.Valid {
		return nil, fmt.Errorf("invalid manifest: %s", result.Errors[0].Error())
	}

	switch m.Runtime {
	case manifest.RuntimeWASM:
		return NewWASMTool(e.ctx, m, filepath.Dir(path))
	case manifest.RuntimeExec:
		return NewExecTool(m)
	case manifest.RuntimeBuiltin:
		return NewBuiltinTool(m.Entry)
	default:
		return nil, fmt.Errorf("unsupported runtime: %s", m.Runtime)
	}
}
