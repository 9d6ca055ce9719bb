package discovery_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunedeck/tunedeck/internal/domain/discovery"
	"github.com/tunedeck/tunedeck/internal/domain/manifest"
)

const goodScript = `
var metadata = {
    name: "word_counter",
    description: "Counts words in a block of text",
    version: "1.2.0"
};
function validate(inputs) {
    return typeof inputs.text === "string";
}
function execute(inputs) {
    return { words: inputs.text.split(/\s+/).filter(function (w) { return w.length > 0; }).length };
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScan_MissingDirectory(t *testing.T) {
	engine := discovery.NewEngine(context.Background())
	_, _, err := engine.Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestScan_EmptyDirectory(t *testing.T) {
	engine := discovery.NewEngine(context.Background())
	found, failures, err := engine.Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Empty(t, failures)
}

func TestScan_PerCandidateIsolation(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "good.js", goodScript)
	writeFile(t, tmpDir, "broken.js", `function validate( {`)
	writeFile(t, tmpDir, "readme.md", "not a plugin")

	engine := discovery.NewEngine(context.Background())
	found, failures, err := engine.Scan(tmpDir)
	require.NoError(t, err)

	// The broken script fails alone; the good one still loads.
	require.Len(t, found, 1)
	assert.Equal(t, "word_counter", found[0].Tool.Metadata().Name)
	assert.Equal(t, "good.js", found[0].Source)

	require.Len(t, failures, 1)
	assert.Equal(t, "broken.js", failures[0].Source)
	assert.NotEmpty(t, failures[0].Reason)
}

func TestScan_BuiltinManifest(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "linter.json", `{
		"name": "dataset_linter",
		"version": "1.0.0",
		"description": "Checks a JSONL training dataset for malformed records",
		"runtime": "builtin",
		"entry": "dataset_linter"
	}`)

	engine := discovery.NewEngine(context.Background())
	found, failures, err := engine.Scan(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, found, 1)
	assert.Equal(t, "dataset_linter", found[0].Tool.Metadata().Name)
}

func TestScan_InvalidManifestIsFailure(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "bad.json", `{"name": "x"}`)

	engine := discovery.NewEngine(context.Background())
	found, failures, err := engine.Scan(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, found)
	require.Len(t, failures, 1)
	assert.Equal(t, "bad.json", failures[0].Source)
}

func TestScan_UnknownBuiltinEntry(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "ghost.json", `{
		"name": "ghost_tool",
		"description": "References a builtin that does not exist",
		"runtime": "builtin",
		"entry": "ghost_tool"
	}`)

	engine := discovery.NewEngine(context.Background())
	found, failures, err := engine.Scan(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, found)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Reason, "unknown builtin")
}

func TestScriptTool_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "lifecycle.js", `
var calls = { init: 0, teardown: 0 };
var metadata = { name: "lifecycle_probe", description: "records hook calls" };
function init() { calls.init++; }
function teardown() { calls.teardown++; }
function validate(inputs) { return true; }
function execute(inputs) { return { init: calls.init, teardown: calls.teardown }; }
`)

	st, err := discovery.NewScriptTool(path)
	require.NoError(t, err)

	require.NoError(t, st.Init())
	require.NoError(t, st.Init()) // idempotent

	result, err := st.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result["init"])

	require.NoError(t, st.Teardown())
	require.NoError(t, st.Teardown()) // idempotent
}

func TestScriptTool_ProbeRejectsIncompleteContract(t *testing.T) {
	tmpDir := t.TempDir()

	// No metadata object at all.
	path := writeFile(t, tmpDir, "nometa.js", `function validate(i) { return true; } function execute(i) { return {}; }`)
	_, err := discovery.NewScriptTool(path)
	assert.Error(t, err)

	// Metadata but no execute.
	path = writeFile(t, tmpDir, "noexec.js", `var metadata = { name: "partial" }; function validate(i) { return true; }`)
	_, err = discovery.NewScriptTool(path)
	assert.Error(t, err)
}

func TestScriptTool_ValidateAndExecute(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := discovery.NewScriptTool(writeFile(t, tmpDir, "wc.js", goodScript))
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", st.Metadata().Version)

	ok, err := st.ValidateInputs(map[string]any{"text": "hello there"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = st.ValidateInputs(map[string]any{"text": 42})
	require.NoError(t, err)
	assert.False(t, ok)

	result, err := st.Execute(context.Background(), map[string]any{"text": "one two three"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result["words"])
}

func TestScriptTool_ThrownExceptionIsError(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := discovery.NewScriptTool(writeFile(t, tmpDir, "thrower.js", `
var metadata = { name: "thrower", description: "always throws" };
function validate(inputs) { return true; }
function execute(inputs) { throw new Error("dataset unreadable"); }
`))
	require.NoError(t, err)

	_, err = st.Execute(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset unreadable")
}

func TestBuiltinEntries(t *testing.T) {
	entries := discovery.BuiltinEntries()
	assert.Contains(t, entries, "loc_counter")
	assert.Contains(t, entries, "todo_scanner")
	assert.Contains(t, entries, "dataset_linter")
}

func TestDatasetLinter(t *testing.T) {
	linter, err := discovery.NewBuiltinTool("dataset_linter")
	require.NoError(t, err)

	tmpDir := t.TempDir()
	clean := writeFile(t, tmpDir, "clean.jsonl",
		`{"prompt": "What is Go?", "completion": "A programming language."}
{"prompt": "2+2?", "completion": "4"}
`)
	dirty := writeFile(t, tmpDir, "dirty.jsonl",
		`{"prompt": "ok", "completion": "fine"}
not json at all
{"completion": "missing prompt"}
`)

	ok, err := linter.ValidateInputs(map[string]any{"path": clean})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = linter.ValidateInputs(map[string]any{})
	assert.False(t, ok)

	result, err := linter.Execute(context.Background(), map[string]any{"path": clean})
	require.NoError(t, err)
	assert.Equal(t, true, result["ok"])
	assert.Equal(t, 2, result["records"])

	result, err = linter.Execute(context.Background(), map[string]any{"path": dirty})
	require.NoError(t, err)
	assert.Equal(t, false, result["ok"])
	assert.Equal(t, 2, result["invalid"])
}

func TestLocCounter(t *testing.T) {
	counter, err := discovery.NewBuiltinTool("loc_counter")
	require.NoError(t, err)

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.go", "package a\n\nfunc A() {}\n")
	writeFile(t, tmpDir, "b.go", "package a\n")
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".git"), 0755))
	writeFile(t, filepath.Join(tmpDir, ".git"), "junk.go", "should be skipped\n")

	result, err := counter.Execute(context.Background(), map[string]any{"path": tmpDir})
	require.NoError(t, err)
	assert.Equal(t, 2, result["total_files"])
	assert.Equal(t, 4, result["total_lines"])
}

func TestTodoScanner(t *testing.T) {
	scanner, err := discovery.NewBuiltinTool("todo_scanner")
	require.NoError(t, err)

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "main.go", "package main\n// TODO: wire up flags\n// FIXME broken on windows\n")

	result, err := scanner.Execute(context.Background(), map[string]any{"path": tmpDir})
	require.NoError(t, err)
	assert.Equal(t, 2, result["count"])
	assert.Equal(t, false, result["truncated"])

	// Custom marker set narrows the scan.
	result, err = scanner.Execute(context.Background(), map[string]any{
		"path":    tmpDir,
		"markers": []any{"FIXME"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result["count"])
}

func TestExecTool_MissingBinary(t *testing.T) {
	_, err := discovery.NewExecTool(&manifest.Manifest{
		Name:        "ghost_exec",
		Description: "Binary that does not exist anywhere on PATH",
		Runtime:     manifest.RuntimeExec,
		Command:     "definitely-not-a-real-binary-xyz",
	})
	assert.Error(t, err)
}
