package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

type Convertible[T any] interface {
	// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
	// It should be responsible for any normalization required to ensure consistency
	// across the API boundary.
	ToAPIType() (T, error)
}

// DomainServer wraps domain.ServerRecord for API conversion.
type DomainServer domain.ServerRecord

// DomainTool wraps domain.ToolDescriptor for API conversion.
type DomainTool domain.ToolDescriptor

// DomainToolCallResult wraps domain.ToolCallResult for API conversion.
type DomainToolCallResult domain.ToolCallResult

// Server represents a registered tool server and its last known status.
type Server struct {
	ID          string     `doc:"Stable server identifier"           json:"id"`
	Name        string     `doc:"Display name"                       json:"name"`
	BaseURL     string     `doc:"Base URL of the tool server"        json:"baseUrl"`
	Status      string     `doc:"Connection status"                  json:"status"                enum:"connecting,connected,disconnected,error"`
	LastChecked *time.Time `doc:"When the last probe completed"      json:"lastChecked,omitempty"`
	ErrorDetail string     `doc:"Reason for the last failed probe"   json:"errorDetail,omitempty"`
	Version     string     `doc:"Version reported by the server"     json:"version,omitempty"`
	Tools       []Tool     `doc:"Tools reported by the server"       json:"tools"`
	Enabled     bool       `doc:"Whether the server can be refreshed" json:"isEnabled"`
}

// Tool represents a tool exposed by a tool server.
type Tool struct {
	Name        string `doc:"Name of the tool"             json:"name"`
	Description string `doc:"Description of the tool"      json:"description,omitempty"`
	InputSchema any    `doc:"JSON Schema of the arguments" json:"inputSchema,omitempty"`
}

// ToolCallResult is the uniform outcome of a relayed tool call.
type ToolCallResult struct {
	Success   bool   `doc:"Whether the tool call succeeded" json:"success"`
	Data      any    `doc:"Result returned by the tool"     json:"data,omitempty"`
	Error     string `doc:"Reason the tool call failed"     json:"error,omitempty"`
	RawOutput string `doc:"Raw response from the server"    json:"rawOutput,omitempty"`
}

// ToAPIType converts a domain server record to an API server.
func (d DomainServer) ToAPIType() (Server, error) {
	tools := make([]Tool, 0, len(d.Tools))
	for _, t := range d.Tools {
		tool, err := DomainTool(t).ToAPIType()
		if err != nil {
			return Server{}, fmt.Errorf("server '%s': %w", d.ID, err)
		}
		tools = append(tools, tool)
	}

	out := Server{
		ID:          d.ID,
		Name:        d.Name,
		BaseURL:     d.BaseURL,
		Status:      string(d.Status),
		LastChecked: d.LastChecked,
		ErrorDetail: d.ErrorDetail,
		Tools:       tools,
		Enabled:     d.Enabled,
	}
	if d.Info != nil {
		out.Version = d.Info.Version
	}

	return out, nil
}

// ToAPIType converts a domain tool descriptor to an API tool.
// The input schema is passed through as opaque JSON.
func (d DomainTool) ToAPIType() (Tool, error) {
	schema, err := decodeJSON(d.InputSchema)
	if err != nil {
		return Tool{}, fmt.Errorf("tool '%s' has an invalid input schema: %w", d.Name, err)
	}

	return Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: schema,
	}, nil
}

// ToAPIType converts a domain tool call result to an API tool call result.
func (d DomainToolCallResult) ToAPIType() (ToolCallResult, error) {
	out := ToolCallResult{
		Success:   d.Success,
		Error:     d.Error,
		RawOutput: d.RawOutput,
	}

	if d.Success {
		data, err := decodeJSON(d.Data)
		if err != nil {
			return ToolCallResult{}, fmt.Errorf("tool call data is not valid JSON: %w", err)
		}
		out.Data = data
	}

	return out, nil
}

// decodeJSON decodes raw JSON into a generic value, nil for empty input.
func decodeJSON(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}

	return v, nil
}
