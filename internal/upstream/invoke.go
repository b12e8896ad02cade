package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

// invokePayload is the request body sent to a tool server's invocation endpoint.
type invokePayload struct {
	ToolName  string         `json:"toolName"`
	Arguments map[string]any `json:"arguments"`
}

// Invoke calls the named tool on the server at baseURL with the supplied arguments.
// It makes a single attempt and always returns a ToolCallResult, never an error.
// The arguments are passed through unchanged, validating them is the tool server's concern.
func (c *Client) Invoke(ctx context.Context, baseURL string, toolName string, arguments map[string]any) domain.ToolCallResult {
	base := NormalizeBaseURL(baseURL)
	if base == "" {
		return domain.FailedToolCall(domain.NewValidationFailure("base URL cannot be empty"), "")
	}

	toolName = strings.TrimSpace(toolName)
	if toolName == "" {
		return domain.FailedToolCall(domain.NewValidationFailure("tool name cannot be empty"), "")
	}

	if arguments == nil {
		arguments = map[string]any{}
	}

	resp, failure := c.do(ctx, http.MethodPost, base+c.toolCallPath, invokePayload{
		ToolName:  toolName,
		Arguments: arguments,
	})
	if failure != nil {
		c.logger.Warn("Tool call failed", "url", base, "tool", toolName, "error", failure)
		return domain.FailedToolCall(failure, string(resp.body))
	}

	result := normalizeToolResponse(resp)
	if !result.Success {
		c.logger.Warn("Tool call failed", "url", base, "tool", toolName, "error", result.Error)
	}

	return result
}

// normalizeToolResponse converts whatever shape the server returned into a ToolCallResult.
// Recognized shapes are the {success, data, error} envelope and the MCP CallToolResult;
// any other valid JSON is treated as the tool's data.
func normalizeToolResponse(resp response) domain.ToolCallResult {
	raw := string(resp.body)

	if failure := statusFailure(resp); failure != nil {
		return domain.FailedToolCall(failure, raw)
	}

	var body any
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return domain.FailedToolCall(parseFailure(resp, err), raw)
	}

	if obj, ok := body.(map[string]any); ok {
		if success, ok := obj["success"].(bool); ok {
			return fromEnvelope(resp, obj, success)
		}
		if _, ok := obj["content"].([]any); ok {
			return fromCallToolResult(resp)
		}
	}

	return domain.ToolCallResult{
		Success:   true,
		Data:      json.RawMessage(resp.body),
		RawOutput: raw,
	}
}

func fromEnvelope(resp response, obj map[string]any, success bool) domain.ToolCallResult {
	raw := string(resp.body)

	if !success {
		msg := errorMessage(obj["error"])
		if msg == "" {
			msg = "tool call failed"
		}
		return domain.FailedToolCall(&domain.Failure{
			Kind:       domain.FailureServer,
			Message:    msg,
			StatusCode: resp.statusCode,
			Body:       raw,
		}, raw)
	}

	data, ok := obj["data"]
	if !ok {
		data = obj["result"]
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return domain.FailedToolCall(parseFailure(resp, err), raw)
	}

	return domain.ToolCallResult{
		Success:   true,
		Data:      encoded,
		RawOutput: raw,
	}
}

func fromCallToolResult(resp response) domain.ToolCallResult {
	raw := string(resp.body)
	msg := json.RawMessage(resp.body)

	result, err := mcp.ParseCallToolResult(&msg)
	if err != nil {
		return domain.FailedToolCall(parseFailure(resp, err), raw)
	}

	text := extractMessage(result.Content)
	if result.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return domain.FailedToolCall(&domain.Failure{
			Kind:       domain.FailureServer,
			Message:    text,
			StatusCode: resp.statusCode,
			Body:       raw,
		}, raw)
	}

	out := domain.ToolCallResult{
		Success:   true,
		Data:      json.RawMessage(resp.body),
		RawOutput: raw,
	}
	if text != "" {
		out.RawOutput = text
	}

	return out
}

// extractMessage attempts to extract a single message from content that is returned from a tool call.
func extractMessage(content []mcp.Content) string {
	// For most tools, this will be a single text item.
	for _, c := range content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}

	return ""
}

// errorMessage renders the error field of an envelope, which may be a string or an object with a message.
func errorMessage(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	case map[string]any:
		if m, ok := e["message"].(string); ok {
			return m
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
