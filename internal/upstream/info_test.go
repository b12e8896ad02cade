package upstream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

func TestParseServerInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    domain.ServerInfo
		wantErr string
	}{
		{
			name:    "top level tools",
			payload: `{"name":"weather","version":"2.1.0","tools":[{"name":"forecast","description":"Get a forecast","inputSchema":{"type":"object"}},{"name":"alerts"}]}`,
			want: domain.ServerInfo{
				Name:    "weather",
				Version: "2.1.0",
				Tools: []domain.ToolDescriptor{
					{Name: "forecast", Description: "Get a forecast", InputSchema: json.RawMessage(`{"type":"object"}`)},
					{Name: "alerts"},
				},
			},
		},
		{
			name:    "tools under capabilities with snake case schema",
			payload: `{"serverInfo":{"name":"files","version":"0.1"},"capabilities":{"tools":[{"name":"read","input_schema":{"type":"object"}}]}}`,
			want: domain.ServerInfo{
				Name:    "files",
				Version: "0.1",
				Tools: []domain.ToolDescriptor{
					{Name: "read", InputSchema: json.RawMessage(`{"type":"object"}`)},
				},
			},
		},
		{
			name:    "capability object instead of tool list",
			payload: `{"name":"x","capabilities":{"tools":{"listChanged":true}}}`,
			want:    domain.ServerInfo{Name: "x", Tools: []domain.ToolDescriptor{}},
		},
		{
			name:    "nameless tools and null schemas are dropped",
			payload: `{"tools":[{"name":""},{"name":"ok","inputSchema":null}]}`,
			want:    domain.ServerInfo{Tools: []domain.ToolDescriptor{{Name: "ok"}}},
		},
		{
			name:    "array payload",
			payload: `[1,2]`,
			wantErr: "unexpected info payload: expected a JSON object",
		},
		{
			name:    "empty payload",
			payload: ``,
			wantErr: "unexpected info payload: expected a JSON object",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseServerInfo(json.RawMessage(tc.payload))
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
