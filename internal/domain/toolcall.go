package domain

import "encoding/json"

// ToolCallRequest asks a tool server to execute a named tool.
type ToolCallRequest struct {
	BaseURL   string
	ToolName  string
	Arguments map[string]any
}

// ToolCallResult is the uniform outcome of a tool invocation.
// Data is present iff Success, Error is present iff not Success.
type ToolCallResult struct {
	Success   bool
	Data      json.RawMessage
	Error     string
	RawOutput string

	// Failure carries the classification behind Error, nil on success.
	Failure *Failure
}

// FailedToolCall builds an unsuccessful ToolCallResult from a classified failure.
func FailedToolCall(f *Failure, rawOutput string) ToolCallResult {
	return ToolCallResult{
		Success:   false,
		Error:     f.Message,
		RawOutput: rawOutput,
		Failure:   f,
	}
}
