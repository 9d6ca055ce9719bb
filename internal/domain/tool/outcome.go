package tool

// Status tags the result of invoking a tool through the registry.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusToolNotFound    Status = "tool_not_found"
	StatusInvalidInput    Status = "invalid_input"
	StatusExecutionFailed Status = "execution_failed"
)

// Outcome is the invocation boundary's return value. Plugin failures are
// carried here as data; they are never raised across the registry
// boundary, so UI and CLI code can switch on Status uniformly.
type Outcome struct {
	Status Status         `json:"status"`
	Tool   string         `json:"tool"`
	Result map[string]any `json:"result,omitempty"`
	Reason string         `json:"reason,omitempty"`

	// Err holds the underlying cause for logs; it is not serialized.
	Err error `json:"-"`
}

// OK reports whether the invocation succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// Succeeded builds a success outcome carrying the tool's result payload.
func Succeeded(name string, result map[string]any) Outcome {
	return Outcome{Status: StatusSuccess, Tool: name, Result: result}
}

// NotFound reports an absent tool. This is a normal negative outcome,
// not an error condition.
func NotFound(name string) Outcome {
	return Outcome{Status: StatusToolNotFound, Tool: name, Reason: "no tool registered under this name"}
}

// Rejected reports a payload the tool's validation turned down. err is
// nil when validation simply returned false.
func Rejected(name string, err error) Outcome {
	o := Outcome{Status: StatusInvalidInput, Tool: name, Reason: "inputs rejected by tool validation", Err: err}
	if err != nil {
		o.Reason = err.Error()
	}
	return o
}

// Failed reports an execution failure. The tool stays registered; the
// failure is presumed transient or input-dependent.
func Failed(name string, err error) Outcome {
	o := Outcome{Status: StatusExecutionFailed, Tool: name, Err: err}
	if err != nil {
		o.Reason = err.Error()
	}
	return o
}
