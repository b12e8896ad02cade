package api

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/mcpconnect/internal/registry"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

type testEnv struct {
	api      humatest.TestAPI
	client   *upstream.Client
	registry *registry.Registry
}

func newTestEnv(t *testing.T, opts ...upstream.Option) testEnv {
	t.Helper()

	logger := hclog.NewNullLogger()

	client, err := upstream.NewClient(logger, opts...)
	require.NoError(t, err)

	reg, err := registry.New(logger, client)
	require.NoError(t, err)

	_, testAPI := humatest.New(t, huma.DefaultConfig("mcpconnect test", APIVersion))

	prefix, err := RegisterRoutes(testAPI, logger, client, reg)
	require.NoError(t, err)
	require.Equal(t, "/api/v1", prefix)

	return testEnv{api: testAPI, client: client, registry: reg}
}

// upstreamServer serves fixed responses for the given paths.
func upstreamServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func respond(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func closedAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return "http://" + addr
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), resp.Body.String())

	return body
}

func TestRegisterRoutes_NilDependencies(t *testing.T) {
	t.Parallel()

	logger := hclog.NewNullLogger()
	client, err := upstream.NewClient(logger)
	require.NoError(t, err)
	reg, err := registry.New(logger, client)
	require.NoError(t, err)
	_, testAPI := humatest.New(t, huma.DefaultConfig("mcpconnect test", APIVersion))

	_, err = RegisterRoutes(nil, logger, client, reg)
	require.EqualError(t, err, "router cannot be nil")

	_, err = RegisterRoutes(testAPI, nil, client, reg)
	require.EqualError(t, err, "logger cannot be nil")

	var nilClient *upstream.Client
	_, err = RegisterRoutes(testAPI, logger, nilClient, reg)
	require.EqualError(t, err, "upstream client cannot be nil")

	var nilRegistry *registry.Registry
	_, err = RegisterRoutes(testAPI, logger, client, nilRegistry)
	require.EqualError(t, err, "server registry cannot be nil")
}
