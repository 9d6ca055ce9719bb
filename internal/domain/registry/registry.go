// Package registry owns the process-wide catalog of live analysis
// tools and is the only sanctioned path for looking one up or invoking
// it.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/tunedeck/tunedeck/internal/domain/discovery"
	"github.com/tunedeck/tunedeck/internal/domain/tool"
	"github.com/tunedeck/tunedeck/internal/logger"
)

// Entry is one catalog row: a tool's metadata plus the file it was
// discovered from.
type Entry struct {
	tool.Metadata
	Source string `json:"source"`
}

// Scanner is the slice of the discovery engine the registry needs.
type Scanner interface {
	Scan(dir string) ([]discovery.Discovered, []discovery.Failure, error)
}

// Registry maps tool name to live instance. All mutation goes through
// DiscoverTools and Clear; the swap is atomic under the write lock, so
// readers never observe a half-updated catalog.
type Registry struct {
	engine Scanner

	mu      sync.RWMutex
	catalog map[string]tool.AgentTool
	order   []string
	sources map[string]string
}

// New creates an empty registry. It is owned by the composition root
// and passed by reference; there is no ambient singleton.
func New(engine Scanner) *Registry {
	return &Registry{
		engine:  engine,
		catalog: make(map[string]tool.AgentTool),
		sources: make(map[string]string),
	}
}

// DiscoverTools scans dir and atomically replaces the catalog with the
// result, so repeated calls always reflect the current directory
// contents. Every tool's Init hook runs eagerly before registration;
// an init failure is recorded as a discovery failure and the tool is
// skipped. When two discovered tools share a name the later-discovered
// one wins and the loser is torn down immediately. The previous
// generation is torn down after the swap; its teardown errors are
// logged and swallowed.
func (r *Registry) DiscoverTools(dir string) (int, []discovery.Failure, error) {
	found, failures, err := r.engine.Scan(dir)
	if err != nil {
		return 0, nil, err
	}

	next := make(map[string]tool.AgentTool, len(found))
	sources := make(map[string]string, len(found))
	order := make([]string, 0, len(found))

	for _, d := range found {
		name := d.Tool.Metadata().Name

		if err := tool.Init(d.Tool); err != nil {
			failures = append(failures, discovery.Failure{
				Source: d.Source,
				Reason: fmt.Sprintf("init failed: %v", err),
			})
			r.teardown(d.Tool, name)
			continue
		}

		if prev, ok := next[name]; ok {
			logger.AddLog("WARN", fmt.Sprintf("tool name collision: %q from %s replaces %s", name, d.Source, sources[name]))
			r.teardown(prev, name)
			order = remove(order, name)
		}
		next[name] = d.Tool
		sources[name] = d.Source
		order = append(order, name)
	}

	r.mu.Lock()
	prevCatalog := r.catalog
	prevOrder := r.order
	r.catalog = next
	r.order = order
	r.sources = sources
	r.mu.Unlock()

	for _, name := range prevOrder {
		r.teardown(prevCatalog[name], name)
	}

	logger.AddLog("INFO", fmt.Sprintf("discovery registered %d tool(s), %d failure(s)", len(order), len(failures)))
	return len(order), failures, nil
}

// GetTool looks up a live tool by name. Absence is a normal outcome.
func (r *Registry) GetTool(name string) (tool.AgentTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.catalog[name]
	return t, ok
}

// ListTools returns the catalog's metadata in discovery order. The
// snapshot is consistent with one discovery generation.
func (r *Registry) ListTools() []tool.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metas := make([]tool.Metadata, 0, len(r.order))
	for _, name := range r.order {
		metas = append(metas, r.catalog[name].Metadata())
	}
	return metas
}

// Entries returns the catalog rows with source diagnostics, in
// discovery order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, Entry{Metadata: r.catalog[name].Metadata(), Source: r.sources[name]})
	}
	return entries
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.catalog)
}

// Invoke is the invocation boundary: look up, validate, then execute.
// Tool-level failures come back as tagged outcomes, never as errors or
// panics, and an execution failure does not evict the tool. The lock
// is only held for the lookup, so concurrent invocations of different
// tools do not block each other.
func (r *Registry) Invoke(ctx context.Context, name string, inputs map[string]any) tool.Outcome {
	r.mu.RLock()
	t, ok := r.catalog[name]
	r.mu.RUnlock()
	if !ok {
		return tool.NotFound(name)
	}

	valid, err := safeValidate(t, inputs)
	if err != nil {
		return tool.Rejected(name, err)
	}
	if !valid {
		return tool.Rejected(name, nil)
	}

	result, err := safeExecute(ctx, t, inputs)
	if err != nil {
		logger.AddLog("ERROR", fmt.Sprintf("tool %q execution failed: %v", name, err))
		return tool.Failed(name, err)
	}
	return tool.Succeeded(name, result)
}

// Clear evicts and tears down every tool. Used on shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	prevCatalog := r.catalog
	prevOrder := r.order
	r.catalog = make(map[string]tool.AgentTool)
	r.order = nil
	r.sources = make(map[string]string)
	r.mu.Unlock()

	for _, name := range prevOrder {
		r.teardown(prevCatalog[name], name)
	}
}

// teardown runs a tool's Teardown hook, logging and swallowing any
// error: a misbehaving teardown must not block a refresh or shutdown.
func (r *Registry) teardown(t tool.AgentTool, name string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.AddLog("WARN", fmt.Sprintf("tool %q teardown panicked: %v", name, rec))
		}
	}()
	if err := tool.Teardown(t); err != nil {
		logger.AddLog("WARN", fmt.Sprintf("tool %q teardown failed: %v", name, err))
	}
}

func safeValidate(t tool.AgentTool, inputs map[string]any) (valid bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			valid, err = false, fmt.Errorf("validate panicked: %v", rec)
		}
	}()
	return t.ValidateInputs(inputs)
}

func safeExecute(ctx context.Context, t tool.AgentTool, inputs map[string]any) (result map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result, err = nil, fmt.Errorf("execute panicked: %v", rec)
		}
	}()
	return t.Execute(ctx, inputs)
}

func remove(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
