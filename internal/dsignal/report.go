package dsignal

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Report is the canonical structured error value for the core. Every
// reported failure — install, import, verify, instantiate — is
// expressed as one Report, naming exactly one Signal plus a human
// message.
type Report struct {
	Schema  string         `json:"schema"` // always "yama.report/v1"
	Code    Signal         `json:"code"`
	Phase   string         `json:"phase"` // "install", "import", "verify", "instantiate", ...
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// New builds a Report with the given signal, phase, and message.
func New(code Signal, phase, message string) *Report {
	return &Report{
		Schema:  "yama.report/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Data:    map[string]any{},
	}
}

// WithData attaches a structured field to the report and returns it
// for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// ReportError wraps a *Report so it survives errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// Wrap turns a Report into an error. Returns nil for a nil report so
// callers may write `return Wrap(buildReport(...))` unconditionally.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// As recovers the *Report carried by err, if any.
func As(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// ToJSON renders the report deterministically.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
