package api

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

func TestProxy_Probe(t *testing.T) {
	t.Parallel()

	srv := upstreamServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		upstream.InfoPath:         respond(http.StatusOK, `{"name":"weather","version":"1.2.0"}`),
		upstream.ConfigSchemaPath: respond(http.StatusOK, `{"type":"object","properties":{"apiKey":{"type":"string"}}}`),
	})
	missing := upstreamServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		upstream.InfoPath:         respond(http.StatusNotFound, `nope`),
		upstream.ConfigSchemaPath: respond(http.StatusBadGateway, `upstream down`),
	})
	garbled := upstreamServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		upstream.InfoPath: respond(http.StatusOK, `{not json`),
	})
	closed := closedAddr(t)

	tests := []struct {
		name           string
		path           string
		baseURL        string
		expectedStatus int
		expectedBody   string
		expectedError  string
		expectedDetail string
	}{
		{
			name:           "info success",
			path:           "/api/mcp/info",
			baseURL:        srv.URL,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"name":"weather","version":"1.2.0"}`,
		},
		{
			name:           "config schema success",
			path:           "/api/mcp/config-schema",
			baseURL:        srv.URL + "/",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"type":"object","properties":{"apiKey":{"type":"string"}}}`,
		},
		{
			name:           "info missing base URL",
			path:           "/api/mcp/info",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Missing baseUrl parameter"}`,
		},
		{
			name:           "config schema missing base URL",
			path:           "/api/mcp/config-schema",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Missing baseUrl parameter"}`,
		},
		{
			name:           "info unreachable",
			path:           "/api/mcp/info",
			baseURL:        closed,
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "cannot connect to",
		},
		{
			name:           "info upstream status passthrough",
			path:           "/api/mcp/info",
			baseURL:        missing.URL,
			expectedStatus: http.StatusNotFound,
			expectedError:  "server returned HTTP 404",
			expectedDetail: "nope",
		},
		{
			name:           "config schema upstream status passthrough",
			path:           "/api/mcp/config-schema",
			baseURL:        missing.URL,
			expectedStatus: http.StatusBadGateway,
			expectedError:  "server returned HTTP 502",
			expectedDetail: "upstream down",
		},
		{
			name:           "info malformed body",
			path:           "/api/mcp/info",
			baseURL:        garbled.URL,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "invalid JSON response from server",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)

			path := tc.path
			if tc.baseURL != "" {
				path += "?baseUrl=" + url.QueryEscape(tc.baseURL)
			}

			resp := env.api.Get(path)
			require.Equal(t, tc.expectedStatus, resp.Code, resp.Body.String())

			if tc.expectedBody != "" {
				require.JSONEq(t, tc.expectedBody, resp.Body.String())
				return
			}

			body := decodeBody(t, resp)
			require.Contains(t, body["error"], tc.expectedError)
			if tc.expectedDetail != "" {
				require.Equal(t, tc.expectedDetail, body["details"])
			}
		})
	}
}

func TestProxy_Probe_Timeout(t *testing.T) {
	t.Parallel()

	srv := upstreamServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		upstream.InfoPath: func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		},
	})

	env := newTestEnv(t, upstream.WithTimeout(100*time.Millisecond))

	resp := env.api.Get("/api/mcp/info?baseUrl=" + url.QueryEscape(srv.URL))
	require.Equal(t, http.StatusRequestTimeout, resp.Code)

	body := decodeBody(t, resp)
	require.Contains(t, body["error"], "timed out")
}

func TestProxy_ToolCall(t *testing.T) {
	t.Parallel()

	srv := upstreamServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		upstream.DefaultToolCallPath(): respond(http.StatusOK, `{"success":true,"data":{"temp":21}}`),
	})
	failing := upstreamServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		upstream.DefaultToolCallPath(): respond(http.StatusInternalServerError, `oops`),
	})
	toolError := upstreamServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		upstream.DefaultToolCallPath(): respond(http.StatusOK, `{"success":false,"error":"city not found"}`),
	})
	closed := closedAddr(t)

	tests := []struct {
		name            string
		body            map[string]any
		expectedStatus  int
		expectedSuccess bool
		expectedData    any
		expectedErrors  []string
	}{
		{
			name:            "success",
			body:            map[string]any{"baseUrl": srv.URL, "toolName": "forecast", "arguments": map[string]any{"city": "Paris"}},
			expectedStatus:  http.StatusOK,
			expectedSuccess: true,
			expectedData:    map[string]any{"temp": float64(21)},
		},
		{
			name:           "upstream 500",
			body:           map[string]any{"baseUrl": failing.URL, "toolName": "forecast"},
			expectedStatus: http.StatusInternalServerError,
			expectedErrors: []string{"500", "oops"},
		},
		{
			name:           "tool reported failure",
			body:           map[string]any{"baseUrl": toolError.URL, "toolName": "forecast"},
			expectedStatus: http.StatusOK,
			expectedErrors: []string{"city not found"},
		},
		{
			name:           "unreachable",
			body:           map[string]any{"baseUrl": closed, "toolName": "forecast"},
			expectedStatus: http.StatusServiceUnavailable,
			expectedErrors: []string{"cannot connect to"},
		},
		{
			name:           "missing base URL",
			body:           map[string]any{"toolName": "forecast"},
			expectedStatus: http.StatusBadRequest,
			expectedErrors: []string{"Missing baseUrl parameter"},
		},
		{
			name:           "missing tool name",
			body:           map[string]any{"baseUrl": srv.URL},
			expectedStatus: http.StatusBadRequest,
			expectedErrors: []string{"tool name cannot be empty"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)

			resp := env.api.Post("/api/mcp/tools/call", tc.body)
			require.Equal(t, tc.expectedStatus, resp.Code, resp.Body.String())

			body := decodeBody(t, resp)
			require.Equal(t, tc.expectedSuccess, body["success"])

			if tc.expectedSuccess {
				require.Equal(t, tc.expectedData, body["data"])
				require.NotContains(t, body, "error")
				return
			}

			require.NotContains(t, body, "data")
			for _, msg := range tc.expectedErrors {
				require.Contains(t, body["error"], msg)
			}
		})
	}
}

func TestProxy_ToolCall_RegisteredServer(t *testing.T) {
	t.Parallel()

	srv := upstreamServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		upstream.InfoPath: respond(http.StatusOK, `{
			"name": "weather",
			"tools": [{
				"name": "forecast",
				"inputSchema": {"type": "object", "properties": {"city": {"type": "string"}}, "required": ["city"]}
			}]
		}`),
		upstream.DefaultToolCallPath(): respond(http.StatusOK, `{"content":[{"type":"text","text":"sunny"}]}`),
	})

	env := newTestEnv(t)

	enabled, err := env.registry.Add("Weather", srv.URL, true)
	require.NoError(t, err)
	_, err = env.registry.RefreshOne(t.Context(), enabled.ID)
	require.NoError(t, err)

	disabled, err := env.registry.Add("Weather (off)", srv.URL, false)
	require.NoError(t, err)

	tests := []struct {
		name            string
		body            map[string]any
		expectedStatus  int
		expectedSuccess bool
		expectedError   string
	}{
		{
			name:            "valid arguments",
			body:            map[string]any{"serverId": enabled.ID, "toolName": "forecast", "arguments": map[string]any{"city": "Paris"}},
			expectedStatus:  http.StatusOK,
			expectedSuccess: true,
		},
		{
			name:           "arguments violate declared schema",
			body:           map[string]any{"serverId": enabled.ID, "toolName": "forecast", "arguments": map[string]any{"city": 12}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "arguments do not match tool input schema",
		},
		{
			name:           "padded tool name is still checked against its schema",
			body:           map[string]any{"serverId": enabled.ID, "toolName": " forecast ", "arguments": map[string]any{"city": 12}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "arguments do not match tool input schema",
		},
		{
			name:            "padded tool name with valid arguments",
			body:            map[string]any{"serverId": enabled.ID, "toolName": " forecast", "arguments": map[string]any{"city": "Paris"}},
			expectedStatus:  http.StatusOK,
			expectedSuccess: true,
		},
		{
			name:            "base URL matching the registered server",
			body:            map[string]any{"serverId": enabled.ID, "baseUrl": srv.URL + "/", "toolName": "forecast", "arguments": map[string]any{"city": "Paris"}},
			expectedStatus:  http.StatusOK,
			expectedSuccess: true,
		},
		{
			name:           "base URL of a different server",
			body:           map[string]any{"serverId": enabled.ID, "baseUrl": "http://localhost:1", "toolName": "forecast", "arguments": map[string]any{"city": "Paris"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "does not match server",
		},
		{
			name:            "undeclared tool is passed through",
			body:            map[string]any{"serverId": enabled.ID, "toolName": "other"},
			expectedStatus:  http.StatusOK,
			expectedSuccess: true,
		},
		{
			name:           "unknown server",
			body:           map[string]any{"serverId": "missing", "toolName": "forecast"},
			expectedStatus: http.StatusNotFound,
			expectedError:  "server not found",
		},
		{
			name:           "disabled server",
			body:           map[string]any{"serverId": disabled.ID, "toolName": "forecast"},
			expectedStatus: http.StatusConflict,
			expectedError:  "server disabled",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp := env.api.Post("/api/mcp/tools/call", tc.body)
			require.Equal(t, tc.expectedStatus, resp.Code, resp.Body.String())

			body := decodeBody(t, resp)
			if tc.expectedSuccess {
				require.Equal(t, true, body["success"])
				require.Equal(t, "sunny", body["rawOutput"])
				return
			}

			require.Contains(t, body["error"], tc.expectedError)
		})
	}
}
