package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

const (
	// InfoPath is the introspection endpoint returning server identity and capabilities.
	InfoPath = "/mcp/info"

	// ConfigSchemaPath is the introspection endpoint returning a JSON Schema of the server's configuration.
	ConfigSchemaPath = "/mcp-config-schema"
)

// Outcome is the result of a probe. Exactly one of Payload or Failure is set.
type Outcome struct {
	// Payload is the parsed (valid) JSON body on success.
	Payload json.RawMessage

	// StatusCode is the HTTP status received, zero when no response arrived.
	StatusCode int

	// Latency is how long the request took, including reading the body.
	Latency time.Duration

	// Failure is the classified reason the probe did not succeed.
	Failure *domain.Failure
}

// OK reports whether the probe succeeded.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// ProbeInfo requests {baseURL}/mcp/info.
func (c *Client) ProbeInfo(ctx context.Context, baseURL string) Outcome {
	return c.probe(ctx, baseURL, InfoPath)
}

// ProbeConfigSchema requests {baseURL}/mcp-config-schema.
func (c *Client) ProbeConfigSchema(ctx context.Context, baseURL string) Outcome {
	return c.probe(ctx, baseURL, ConfigSchemaPath)
}

func (c *Client) probe(ctx context.Context, baseURL string, path string) Outcome {
	base := NormalizeBaseURL(baseURL)
	if base == "" {
		return Outcome{Failure: domain.NewValidationFailure("base URL cannot be empty")}
	}

	resp, failure := c.do(ctx, http.MethodGet, base+path, nil)
	out := Outcome{StatusCode: resp.statusCode, Latency: resp.latency}
	if failure != nil {
		out.Failure = failure
		return out
	}

	if failure := statusFailure(resp); failure != nil {
		out.Failure = failure
		return out
	}

	var v any
	if err := json.Unmarshal(resp.body, &v); err != nil {
		out.Failure = parseFailure(resp, err)
		return out
	}

	out.Payload = resp.body
	return out
}
