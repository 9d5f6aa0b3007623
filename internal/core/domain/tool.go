package domain

import (
	"encoding/json"
	"fmt"
)

// ToolParamType tags the expected value type of a tool parameter.
type ToolParamType string

// Supported parameter types.
const (
	ParamString ToolParamType = "string"
	ParamInt    ToolParamType = "int"
	ParamFloat  ToolParamType = "float"
	ParamBool   ToolParamType = "bool"
)

// ToolParam describes one named parameter of a tool.
type ToolParam struct {
	// Name is the parameter key, unique within a tool.
	Name string

	// Type is the expected value type.
	Type ToolParamType

	// Description explains the parameter for capability discovery.
	Description string

	// Required marks parameters that must be present in every
	// invocation unless a Default is provided.
	Required bool

	// Default is substituted when the parameter is absent.
	// Nil means no default.
	Default any
}

// ToolDescriptor describes a registered tool.
type ToolDescriptor struct {
	// Name is the unique registry key.
	Name string

	// Description is a human-readable summary.
	Description string

	// Params is the ordered parameter list.
	Params []ToolParam
}

// ToolErrorKind categorises invocation failures, mirroring the
// JSON-RPC 2.0 error categories.
type ToolErrorKind string

// Tool error kinds.
const (
	ToolErrMethodNotFound ToolErrorKind = "METHOD_NOT_FOUND"
	ToolErrInvalidParams  ToolErrorKind = "INVALID_PARAMS"
	ToolErrInternal       ToolErrorKind = "INTERNAL_ERROR"
)

// ToolResult is the tagged outcome of a tool invocation: success
// carrying a structured payload, or failure carrying an error kind and
// message. Exactly one side is ever populated; construct results with
// ToolSuccess or ToolFailure.
type ToolResult struct {
	ok      bool
	data    map[string]any
	errKind ToolErrorKind
	errMsg  string
}

// ToolSuccess builds a successful result with the given payload.
func ToolSuccess(data map[string]any) ToolResult {
	if data == nil {
		data = map[string]any{}
	}
	return ToolResult{ok: true, data: data}
}

// ToolFailure builds a failed result with a categorised error message.
func ToolFailure(kind ToolErrorKind, format string, args ...any) ToolResult {
	return ToolResult{errKind: kind, errMsg: fmt.Sprintf(format, args...)}
}

// OK reports whether the invocation succeeded.
func (r ToolResult) OK() bool { return r.ok }

// Data returns the success payload. Nil on failure.
func (r ToolResult) Data() map[string]any {
	if !r.ok {
		return nil
	}
	return r.data
}

// Failure returns the failure kind and message. Zero values on success.
func (r ToolResult) Failure() (ToolErrorKind, string) {
	if r.ok {
		return "", ""
	}
	return r.errKind, r.errMsg
}

// ErrorString renders the failure as "KIND: message", or "" on success.
func (r ToolResult) ErrorString() string {
	if r.ok {
		return ""
	}
	return fmt.Sprintf("%s: %s", r.errKind, r.errMsg)
}

// toolResultJSON is the wire shape exposed to external callers.
type toolResultJSON struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   *string        `json:"error"`
}

// MarshalJSON renders the result as {success, data, error} with exactly
// one of data/error non-null.
func (r ToolResult) MarshalJSON() ([]byte, error) {
	out := toolResultJSON{Success: r.ok}
	if r.ok {
		out.Data = r.data
	} else {
		msg := r.ErrorString()
		out.Error = &msg
	}
	return json.Marshal(out)
}
