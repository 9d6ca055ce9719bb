package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds the result of validating a tool manifest.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
}

// Regular expressions for validation
var (
	namePattern    = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	envVarPattern  = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// ValidRuntimes contains all valid runtime values.
var ValidRuntimes = map[Runtime]bool{
	RuntimeWASM:    true,
	RuntimeExec:    true,
	RuntimeBuiltin: true,
}

// Validate checks a Manifest against the schema rules.
func Validate(m *Manifest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	validateRequired(m, result)
	if len(result.Errors) > 0 {
		result.Valid = false
		return result
	}

	validateFormats(m, result)
	validateRuntime(m, result)
	validateInputs(m.Inputs, result)
	addWarnings(m, result)

	result.Valid = len(result.Errors) == 0
	return result
}

func validateRequired(m *Manifest, result *ValidationResult) {
	if m.Name == "" {
		result.Errors = append(result.Errors, ValidationError{"name", "required field is missing"})
	}
	if m.Description == "" {
		result.Errors = append(result.Errors, ValidationError{"description", "required field is missing"})
	}
	if m.Runtime == "" {
		result.Errors = append(result.Errors, ValidationError{"runtime", "required field is missing"})
	}
}

func validateFormats(m *Manifest, result *ValidationResult) {
	if m.Name != "" {
		if len(m.Name) < 2 || len(m.Name) > 64 {
			result.Errors = append(result.Errors, ValidationError{"name", "must be between 2 and 64 characters"})
		} else if !namePattern.MatchString(m.Name) {
			result.Errors = append(result.Errors, ValidationError{"name", "must be snake_case (lowercase letters, numbers, underscores), starting with a letter"})
		}
	}

	if m.Version != "" && !versionPattern.MatchString(m.Version) {
		result.Errors = append(result.Errors, ValidationError{"version", "must be a valid semantic version (e.g., 1.0.0)"})
	}

	if m.Description != "" {
		if len(m.Description) < 10 {
			result.Errors = append(result.Errors, ValidationError{"description", "must be at least 10 characters"})
		} else if len(m.Description) > 200 {
			result.Errors = append(result.Errors, ValidationError{"description", "must be 200 characters or less"})
		}
	}

	for name := range m.Env {
		if !envVarPattern.MatchString(name) {
			result.Errors = append(result.Errors, ValidationError{fmt.Sprintf("env.%s", name), "must be uppercase letters, numbers, and underscores"})
		}
	}
}

func validateRuntime(m *Manifest, result *ValidationResult) {
	if !ValidRuntimes[m.Runtime] {
		result.Errors = append(result.Errors, ValidationError{"runtime", fmt.Sprintf("invalid runtime: %s", m.Runtime)})
		return
	}

	switch m.Runtime {
	case RuntimeWASM:
		if m.Module == "" {
			result.Errors = append(result.Errors, ValidationError{"module", "required for wasm runtime"})
		} else if filepath.IsAbs(m.Module) || strings.Contains(m.Module, "..") {
			result.Errors = append(result.Errors, ValidationError{"module", "must be a plain file name relative to the manifest"})
		}

	case RuntimeExec:
		if m.Command == "" {
			result.Errors = append(result.Errors, ValidationError{"command", "required for exec runtime"})
		}

	case RuntimeBuiltin:
		if m.Entry == "" {
			result.Errors = append(result.Errors, ValidationError{"entry", "required for builtin runtime"})
		} else if !namePattern.MatchString(m.Entry) {
			result.Errors = append(result.Errors, ValidationError{"entry", "must be snake_case"})
		}
	}
}

func validateInputs(inputs *InputSchema, result *ValidationResult) {
	if inputs == nil {
		return
	}

	seen := make(map[string]bool)
	for i, key := range inputs.Required {
		if key == "" {
			result.Errors = append(result.Errors, ValidationError{fmt.Sprintf("inputs.required[%d]", i), "must not be empty"})
			continue
		}
		if seen[key] {
			result.Errors = append(result.Errors, ValidationError{fmt.Sprintf("inputs.required[%d]", i), fmt.Sprintf("duplicate required key: %s", key)})
		}
		seen[key] = true
	}

	for name, prop := range inputs.Properties {
		switch prop.Type {
		case "", "string", "number", "boolean", "object", "array":
		default:
			result.Errors = append(result.Errors, ValidationError{fmt.Sprintf("inputs.properties.%s.type", name), fmt.Sprintf("invalid type: %s", prop.Type)})
		}
	}
}

func addWarnings(m *Manifest, result *ValidationResult) {
	if m.Version == "" {
		result.Warnings = append(result.Warnings, ValidationError{"version", "recommended: pin a version (defaults to 1.0.0)"})
	}
	if m.Inputs == nil {
		result.Warnings = append(result.Warnings, ValidationError{"inputs", "recommended: declare an input schema so calls can be validated"})
	}
	if m.Author == "" && m.Homepage == "" {
		result.Warnings = append(result.Warnings, ValidationError{"author/homepage", "recommended: add attribution"})
	}
}

// Load reads and parses a manifest file without validating it.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &m, nil
}

// ValidateFile reads and validates a JSON manifest file.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "json",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			}},
		}, nil
	}

	return Validate(&m), nil
}

// ValidateDirectory validates all JSON manifests in a directory.
func ValidateDirectory(dir string) (map[string]*ValidationResult, error) {
	results := make(map[string]*ValidationResult)

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, file.Name())
		result, err := ValidateFile(path)
		if err != nil {
			results[file.Name()] = &ValidationResult{
				Valid: false,
				Errors: []ValidationError{{
					Field:   "file",
					Message: err.Error(),
				}},
			}
		} else {
			results[file.Name()] = result
		}
	}

	return results, nil
}
