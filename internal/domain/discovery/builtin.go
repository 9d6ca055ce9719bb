package discovery

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tunedeck/tunedeck/internal/domain/tool"
)

// maxFindings caps list-shaped results so a large tree cannot flood the
// caller's payload.
const maxFindings = 500

// builtinConstructors maps a manifest's entry id to the tool it
// enables. Builtins still go through discovery: dropping a
// runtime:builtin manifest into the tools directory is what registers
// them, so the catalog always reflects the directory contents.
var builtinConstructors = map[string]func() tool.AgentTool{
	"loc_counter":    func() tool.AgentTool { return &locCounter{} },
	"todo_scanner":   func() tool.AgentTool { return &todoScanner{} },
	"dataset_linter": func() tool.AgentTool { return &datasetLinter{} },
}

// NewBuiltinTool constructs the builtin tool registered under entry.
func NewBuiltinTool(entry string) (tool.AgentTool, error) {
	ctor, ok := builtinConstructors[entry]
	if !ok {
		return nil, fmt.Errorf("unknown builtin tool: %s", entry)
	}
	return ctor(), nil
}

// BuiltinEntries returns the ids accepted by runtime:builtin manifests.
func BuiltinEntries() []string {
	entries := make([]string, 0, len(builtinConstructors))
	for name := range builtinConstructors {
		entries = append(entries, name)
	}
	return entries
}

func requireStringInput(inputs map[string]any, key string) (bool, error) {
	v, ok := inputs[key]
	if !ok {
		return false, nil
	}
	s, ok := v.(string)
	return ok && s != "", nil
}

func stringInput(inputs map[string]any, key string) string {
	s, _ := inputs[key].(string)
	return s
}

// locCounter counts source lines per file extension under a path.
type locCounter struct{}

func (t *locCounter) Metadata() tool.Metadata {
	return tool.NewMetadata("loc_counter", "Counts source files and lines of code per extension under a directory.", "")
}

func (t *locCounter) ValidateInputs(inputs map[string]any) (bool, error) {
	return requireStringInput(inputs, "path")
}

func (t *locCounter) Execute(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	root := stringInput(inputs, "path")

	files := make(map[string]int)
	lines := make(map[string]int)
	totalFiles, totalLines := 0, 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == "" {
			ext = "(none)"
		}
		n, err := countLines(path)
		if err != nil {
			return nil // unreadable file, skip it
		}
		files[ext]++
		lines[ext] += n
		totalFiles++
		totalLines += n
		return nil
	})
	if err != nil {
		return nil, err
	}

	byExt := make(map[string]any, len(files))
	for ext, count := range files {
		byExt[ext] = map[string]any{"files": count, "lines": lines[ext]}
	}
	return map[string]any{
		"path":         root,
		"total_files":  totalFiles,
		"total_lines":  totalLines,
		"by_extension": byExt,
	}, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// todoScanner finds TODO-style markers with file:line locations.
type todoScanner struct{}

var defaultMarkers = []string{"TODO", "FIXME", "HACK"}

func (t *todoScanner) Metadata() tool.Metadata {
	return tool.NewMetadata("todo_scanner", "Finds TODO, FIXME, and HACK markers in a source tree with their locations.", "")
}

func (t *todoScanner) ValidateInputs(inputs map[string]any) (bool, error) {
	return requireStringInput(inputs, "path")
}

func (t *todoScanner) Execute(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	root := stringInput(inputs, "path")

	markers := defaultMarkers
	if raw, ok := inputs["markers"].([]any); ok && len(raw) > 0 {
		markers = nil
		for _, m := range raw {
			if s, ok := m.(string); ok && s != "" {
				markers = append(markers, s)
			}
		}
	}

	var findings []map[string]any
	truncated := false

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if truncated {
			return filepath.SkipAll
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		rel, _ := filepath.Rel(root, path)
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			for _, marker := range markers {
				if idx := strings.Index(line, marker); idx >= 0 {
					findings = append(findings, map[string]any{
						"file":   rel,
						"line":   lineNo,
						"marker": marker,
						"text":   strings.TrimSpace(line),
					})
					break
				}
			}
			if len(findings) >= maxFindings {
				truncated = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"path":      root,
		"count":     len(findings),
		"truncated": truncated,
		"findings":  findings,
	}, nil
}

// datasetLinter checks a JSONL fine-tuning dataset: every line must be
// a JSON object carrying the required keys with non-empty values.
type datasetLinter struct{}

func (t *datasetLinter) Metadata() tool.Metadata {
	return tool.NewMetadata("dataset_linter", "Lints a JSONL fine-tuning dataset for malformed records and missing or empty fields.", "")
}

func (t *datasetLinter) ValidateInputs(inputs map[string]any) (bool, error) {
	return requireStringInput(inputs, "path")
}

func (t *datasetLinter) Execute(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	path := stringInput(inputs, "path")

	required := []string{"prompt", "completion"}
	if raw, ok := inputs["required_keys"].([]any); ok && len(raw) > 0 {
		required = nil
		for _, k := range raw {
			if s, ok := k.(string); ok && s != "" {
				required = append(required, s)
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var problems []map[string]any
	addProblem := func(line int, kind, detail string) {
		if len(problems) < maxFindings {
			problems = append(problems, map[string]any{"line": line, "kind": kind, "detail": detail})
		}
	}

	records, invalid := 0, 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records++

		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			invalid++
			addProblem(lineNo, "invalid_json", err.Error())
			continue
		}
		for _, key := range required {
			v, ok := record[key]
			if !ok {
				invalid++
				addProblem(lineNo, "missing_key", key)
				continue
			}
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				addProblem(lineNo, "empty_field", key)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"path":     path,
		"records":  records,
		"invalid":  invalid,
		"problems": problems,
		"ok":       invalid == 0,
	}, nil
}
