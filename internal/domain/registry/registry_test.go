package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunedeck/tunedeck/internal/domain/discovery"
	"github.com/tunedeck/tunedeck/internal/domain/tool"
)

// spyTool records lifecycle and invocation calls.
type spyTool struct {
	name          string
	validateOK    bool
	executeErr    error
	executeCalls  int
	teardownCalls int
	teardownErr   error
}

func (s *spyTool) Metadata() tool.Metadata {
	return tool.NewMetadata(s.name, "spy", "")
}

func (s *spyTool) ValidateInputs(inputs map[string]any) (bool, error) {
	return s.validateOK, nil
}

func (s *spyTool) Execute(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	s.executeCalls++
	if s.executeErr != nil {
		return nil, s.executeErr
	}
	return map[string]any{"ok": true}, nil
}

func (s *spyTool) Teardown() error {
	s.teardownCalls++
	return s.teardownErr
}

// seed installs spies directly into a registry's catalog.
func seed(r *Registry, tools ...*spyTool) {
	for _, s := range tools {
		r.catalog[s.name] = s
		r.sources[s.name] = s.name + ".js"
		r.order = append(r.order, s.name)
	}
}

func writeScript(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func script(name string) string {
	return `
var metadata = { name: "` + name + `", description: "test tool" };
function validate(inputs) { return true; }
function execute(inputs) { return { from: "` + name + `" }; }
`
}

func TestDiscoverTools_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	writeScript(t, tmpDir, "alpha.js", script("alpha"))
	writeScript(t, tmpDir, "beta.js", script("beta"))

	r := New(discovery.NewEngine(context.Background()))

	count, failures, err := r.DiscoverTools(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Empty(t, failures)

	// Rescanning an unchanged directory yields the same catalog.
	count, _, err = r.DiscoverTools(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, r.Len())
}

func TestDiscoverTools_RefreshEvictsRemoved(t *testing.T) {
	tmpDir := t.TempDir()
	writeScript(t, tmpDir, "alpha.js", script("alpha"))
	writeScript(t, tmpDir, "beta.js", script("beta"))

	r := New(discovery.NewEngine(context.Background()))
	_, _, err := r.DiscoverTools(tmpDir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(tmpDir, "beta.js")))

	count, _, err := r.DiscoverTools(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, ok := r.GetTool("beta")
	assert.False(t, ok)
	_, ok = r.GetTool("alpha")
	assert.True(t, ok)
}

func TestDiscoverTools_NameCollisionLastWins(t *testing.T) {
	tmpDir := t.TempDir()
	writeScript(t, tmpDir, "a_first.js", script("dup"))
	writeScript(t, tmpDir, "b_second.js", script("dup"))

	r := New(discovery.NewEngine(context.Background()))
	count, failures, err := r.DiscoverTools(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Empty(t, failures, "a collision is a warning, not a failure")

	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "b_second.js", entries[0].Source)
}

// fakeScanner hands the registry a fixed discovery result.
type fakeScanner struct {
	found    []discovery.Discovered
	failures []discovery.Failure
	err      error
}

func (f *fakeScanner) Scan(dir string) ([]discovery.Discovered, []discovery.Failure, error) {
	return f.found, f.failures, f.err
}

func TestDiscoverTools_CollisionLoserTornDown(t *testing.T) {
	loser := &spyTool{name: "dup", validateOK: true}
	winner := &spyTool{name: "dup", validateOK: true}

	r := New(&fakeScanner{found: []discovery.Discovered{
		{Tool: loser, Source: "first.js"},
		{Tool: winner, Source: "second.js"},
	}})

	count, failures, err := r.DiscoverTools("tools")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Empty(t, failures)

	assert.Equal(t, 1, loser.teardownCalls, "the replaced instance is torn down")
	assert.Equal(t, 0, winner.teardownCalls)

	metas := r.ListTools()
	require.Len(t, metas, 1)
	assert.Equal(t, "dup", metas[0].Name)

	got, ok := r.GetTool("dup")
	require.True(t, ok)
	assert.Same(t, winner, got.(*spyTool))
}

func TestDiscoverTools_InitFailureSkipsTool(t *testing.T) {
	tmpDir := t.TempDir()
	writeScript(t, tmpDir, "alpha.js", script("alpha"))
	writeScript(t, tmpDir, "broken_init.js", `
var metadata = { name: "broken_init", description: "init always throws" };
function init() { throw new Error("no model weights"); }
function validate(inputs) { return true; }
function execute(inputs) { return {}; }
`)

	r := New(discovery.NewEngine(context.Background()))
	count, failures, err := r.DiscoverTools(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, failures, 1)
	assert.Equal(t, "broken_init.js", failures[0].Source)
	assert.Contains(t, failures[0].Reason, "init failed")

	_, ok := r.GetTool("broken_init")
	assert.False(t, ok)
}

func TestDiscoverTools_MissingDirectory(t *testing.T) {
	r := New(discovery.NewEngine(context.Background()))
	_, _, err := r.DiscoverTools(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len(), "a failed scan must not touch the catalog")
}

func TestDiscoverTools_PreviousGenerationTornDown(t *testing.T) {
	tmpDir := t.TempDir()
	writeScript(t, tmpDir, "alpha.js", script("alpha"))

	r := New(discovery.NewEngine(context.Background()))

	old := &spyTool{name: "old", validateOK: true}
	seed(r, old)

	_, _, err := r.DiscoverTools(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 1, old.teardownCalls)
}

func TestInvoke_ToolNotFound(t *testing.T) {
	r := New(discovery.NewEngine(context.Background()))
	outcome := r.Invoke(context.Background(), "ghost", map[string]any{})
	assert.Equal(t, tool.StatusToolNotFound, outcome.Status)
	assert.Equal(t, "ghost", outcome.Tool)
}

func TestInvoke_ValidateBeforeExecute(t *testing.T) {
	r := New(discovery.NewEngine(context.Background()))
	s := &spyTool{name: "strict", validateOK: false}
	seed(r, s)

	outcome := r.Invoke(context.Background(), "strict", map[string]any{})
	assert.Equal(t, tool.StatusInvalidInput, outcome.Status)
	assert.Equal(t, 0, s.executeCalls, "execute must not run on rejected inputs")

	s.validateOK = true
	outcome = r.Invoke(context.Background(), "strict", map[string]any{})
	assert.True(t, outcome.OK())
	assert.Equal(t, 1, s.executeCalls)
}

func TestInvoke_ExecutionFailureDoesNotEvict(t *testing.T) {
	r := New(discovery.NewEngine(context.Background()))
	s := &spyTool{name: "flaky", validateOK: true, executeErr: errors.New("transient disk error")}
	seed(r, s)

	outcome := r.Invoke(context.Background(), "flaky", map[string]any{})
	assert.Equal(t, tool.StatusExecutionFailed, outcome.Status)
	assert.Equal(t, "transient disk error", outcome.Reason)

	_, ok := r.GetTool("flaky")
	assert.True(t, ok, "a failing tool stays registered")
	assert.Equal(t, 0, s.teardownCalls)
}

func TestInvoke_PanicsAreContained(t *testing.T) {
	r := New(discovery.NewEngine(context.Background()))
	seed(r, &spyTool{name: "placeholder", validateOK: true})
	r.catalog["panicky"] = panickyTool{}
	r.order = append(r.order, "panicky")

	outcome := r.Invoke(context.Background(), "panicky", map[string]any{})
	assert.Equal(t, tool.StatusExecutionFailed, outcome.Status)
	assert.Contains(t, outcome.Reason, "panicked")
}

type panickyTool struct{}

func (panickyTool) Metadata() tool.Metadata { return tool.NewMetadata("panicky", "panics", "") }
func (panickyTool) ValidateInputs(inputs map[string]any) (bool, error) {
	return true, nil
}
func (panickyTool) Execute(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	panic("index out of range")
}

func TestClear_TearsDownEverything(t *testing.T) {
	r := New(discovery.NewEngine(context.Background()))
	a := &spyTool{name: "a", validateOK: true}
	b := &spyTool{name: "b", validateOK: true, teardownErr: errors.New("already closed")}
	seed(r, a, b)

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, a.teardownCalls)
	assert.Equal(t, 1, b.teardownCalls, "a teardown error must not stop the sweep")

	outcome := r.Invoke(context.Background(), "a", map[string]any{})
	assert.Equal(t, tool.StatusToolNotFound, outcome.Status)
}

func TestListTools_DiscoveryOrder(t *testing.T) {
	tmpDir := t.TempDir()
	writeScript(t, tmpDir, "01_zeta.js", script("zeta"))
	writeScript(t, tmpDir, "02_alpha.js", script("alpha"))

	r := New(discovery.NewEngine(context.Background()))
	_, _, err := r.DiscoverTools(tmpDir)
	require.NoError(t, err)

	metas := r.ListTools()
	require.Len(t, metas, 2)
	assert.Equal(t, "zeta", metas[0].Name)
	assert.Equal(t, "alpha", metas[1].Name)
}
