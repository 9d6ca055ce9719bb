// Package manifest provides types and validation for TuneDeck tool
// manifest files.
package manifest

// Runtime selects how a manifest-described tool is executed.
type Runtime string

const (
	// RuntimeWASM runs a WebAssembly module with JSON over stdio.
	RuntimeWASM Runtime = "wasm"
	// RuntimeExec runs a subprocess with JSON over stdio.
	RuntimeExec Runtime = "exec"
	// RuntimeBuiltin maps to an analysis tool compiled into TuneDeck.
	RuntimeBuiltin Runtime = "builtin"
)

// Manifest describes one non-script tool: its identity, the runtime
// that executes it, and the flat input schema validated host-side
// before every call.
type Manifest struct {
	Schema      string            `json:"$schema,omitempty"`
	Name        string            `json:"name"`
	Version     string            `json:"version,omitempty"`
	Description string            `json:"description"`
	Runtime     Runtime           `json:"runtime"`
	Module      string            `json:"module,omitempty"`  // wasm payload, relative to the manifest
	Command     string            `json:"command,omitempty"` // exec binary
	Args        []string          `json:"args,omitempty"`
	Entry       string            `json:"entry,omitempty"` // builtin tool id
	Inputs      *InputSchema      `json:"inputs,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	Homepage    string            `json:"homepage,omitempty"`
	Author      string            `json:"author,omitempty"`
}

// InputSchema is the flat key-value schema for a tool's input payload.
type InputSchema struct {
	Required   []string                  `json:"required,omitempty"`
	Properties map[string]PropertySchema `json:"properties,omitempty"`
}

// PropertySchema constrains a single input key.
type PropertySchema struct {
	Type        string `json:"type,omitempty"` // string, number, boolean, object, array
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Check reports whether a payload satisfies the schema. The bool is
// false for a well-formed payload missing required keys or carrying a
// wrongly-typed value; an error is returned only for payloads the
// schema cannot even inspect.
func (s *InputSchema) Check(inputs map[string]any) (bool, error) {
	if s == nil {
		return true, nil
	}
	for _, key := range s.Required {
		if _, ok := inputs[key]; !ok {
			return false, nil
		}
	}
	for key, value := range inputs {
		prop, ok := s.Properties[key]
		if !ok || prop.Type == "" {
			continue
		}
		if !typeMatches(prop.Type, value) {
			return false, nil
		}
	}
	return true, nil
}

func typeMatches(declared string, value any) bool {
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	}
	// Unknown declared type: don't reject the payload over it.
	return true
}
