package domain

import (
	"encoding/json"
	"slices"
	"time"
)

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// Status represents the derived connection state of a tool server.
type Status string

// ServerRecord represents one registered tool server and its last known state.
type ServerRecord struct {
	// ID is assigned at creation and never changes or gets reused.
	ID string

	// Name is a user-editable display label, not required to be unique.
	Name string

	// BaseURL is the normalized (no trailing slash) address used for every outbound call.
	BaseURL string

	// Status is only ever written by the refresh pathway (or reset by disabling).
	Status Status

	// LastChecked is when the most recent probe completed, nil when never probed.
	LastChecked *time.Time

	// ErrorDetail holds the last failure reason, cleared on a successful probe.
	ErrorDetail string

	// Tools as last reported by the server, replaced wholesale on each successful probe.
	Tools []ToolDescriptor

	// Info is the identity reported by the server on the last successful probe.
	Info *ServerInfo

	// Enabled servers take part in refresh cycles and are eligible for tool calls.
	Enabled bool
}

// ToolDescriptor describes a single tool exposed by a tool server.
type ToolDescriptor struct {
	Name        string
	Description string

	// InputSchema is the opaque JSON Schema the server declared for the tool arguments.
	InputSchema json.RawMessage
}

// ServerInfo is the identity and capability information reported by a tool server's info endpoint.
type ServerInfo struct {
	Name        string
	Version     string
	Description string
	Tools       []ToolDescriptor
}

// Clone returns a deep copy of the record, so callers never share mutable state with the registry.
func (r ServerRecord) Clone() ServerRecord {
	out := r
	if r.LastChecked != nil {
		t := *r.LastChecked
		out.LastChecked = &t
	}
	out.Tools = cloneTools(r.Tools)
	if r.Info != nil {
		info := *r.Info
		info.Tools = cloneTools(r.Info.Tools)
		out.Info = &info
	}
	return out
}

// Tool returns the descriptor for the named tool, if the server reported it.
func (r ServerRecord) Tool(name string) (ToolDescriptor, bool) {
	idx := slices.IndexFunc(r.Tools, func(t ToolDescriptor) bool { return t.Name == name })
	if idx < 0 {
		return ToolDescriptor{}, false
	}
	return r.Tools[idx], true
}

func cloneTools(tools []ToolDescriptor) []ToolDescriptor {
	if tools == nil {
		return nil
	}
	out := make([]ToolDescriptor, len(tools))
	for i, t := range tools {
		out[i] = ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: slices.Clone(t.InputSchema),
		}
	}
	return out
}
