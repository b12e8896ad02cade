package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

// infoPayload is the wire shape of the info endpoint.
// Servers differ in where they report tools, so both locations are accepted.
type infoPayload struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	ServerInfo  *struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
	Tools        []toolPayload `json:"tools"`
	Capabilities struct {
		Tools json.RawMessage `json:"tools"`
	} `json:"capabilities"`
}

type toolPayload struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	InputSchema      json.RawMessage `json:"inputSchema"`
	InputSchemaSnake json.RawMessage `json:"input_schema"`
}

// ParseServerInfo decodes an info probe payload.
// The returned tool list keeps the server's order and skips entries without a name.
func ParseServerInfo(payload json.RawMessage) (domain.ServerInfo, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.ServerInfo{}, fmt.Errorf("unexpected info payload: expected a JSON object")
	}

	var p infoPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return domain.ServerInfo{}, fmt.Errorf("unexpected info payload: %w", err)
	}

	info := domain.ServerInfo{
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
	}
	if p.ServerInfo != nil {
		if info.Name == "" {
			info.Name = p.ServerInfo.Name
		}
		if info.Version == "" {
			info.Version = p.ServerInfo.Version
		}
	}

	tools := p.Tools
	if tools == nil && len(p.Capabilities.Tools) > 0 {
		// capabilities.tools may also be an MCP capability object such as {"listChanged": true}.
		var nested []toolPayload
		if err := json.Unmarshal(p.Capabilities.Tools, &nested); err == nil {
			tools = nested
		}
	}

	info.Tools = make([]domain.ToolDescriptor, 0, len(tools))
	for _, t := range tools {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		schema := t.InputSchema
		if len(schema) == 0 {
			schema = t.InputSchemaSnake
		}
		if bytes.Equal(bytes.TrimSpace(schema), []byte("null")) {
			schema = nil
		}
		info.Tools = append(info.Tools, domain.ToolDescriptor{
			Name:        name,
			Description: t.Description,
			InputSchema: schema,
		})
	}

	return info, nil
}
