package printer

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

func TestNewServerListItem(t *testing.T) {
	t.Parallel()

	checked := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := domain.ServerRecord{
		ID:          "abc",
		Name:        "Weather",
		BaseURL:     "http://localhost:9999",
		Status:      domain.StatusConnected,
		LastChecked: &checked,
		Tools:       []domain.ToolDescriptor{{Name: "forecast"}, {Name: "alerts"}},
		Info:        &domain.ServerInfo{Name: "weather", Version: "1.2.0"},
		Enabled:     true,
	}

	item := NewServerListItem(rec)
	require.Equal(t, ServerListItem{
		ID:          "abc",
		Name:        "Weather",
		BaseURL:     "http://localhost:9999",
		Enabled:     true,
		Status:      "connected",
		LastChecked: &checked,
		Version:     "1.2.0",
		Tools:       []string{"forecast", "alerts"},
	}, item)
}

func TestNewServerListItem_NeverProbed(t *testing.T) {
	t.Parallel()

	item := NewServerListItem(domain.ServerRecord{ID: "x", Name: "n", Status: domain.StatusDisconnected})
	require.Empty(t, item.Version)
	require.NotNil(t, item.Tools)
	require.Empty(t, item.Tools)
}

func TestServerPrinter_Item(t *testing.T) {
	t.Parallel()

	checked := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		item     ServerListItem
		expected string
	}{
		{
			name: "connected with tools",
			item: ServerListItem{
				ID:          "abc",
				Name:        "Weather",
				BaseURL:     "http://localhost:9999",
				Enabled:     true,
				Status:      "connected",
				LastChecked: &checked,
				Version:     "1.2.0",
				Tools:       []string{"forecast", "alerts"},
			},
			expected: "🟢 Weather (connected)\n" +
				"  🆔 abc\n" +
				"  URL: http://localhost:9999\n" +
				"  Version: 1.2.0\n" +
				"  Last checked: 2025-01-02T03:04:05Z\n" +
				"  Tools: forecast, alerts\n\n",
		},
		{
			name: "error status",
			item: ServerListItem{
				ID:          "def",
				Name:        "Broken",
				BaseURL:     "http://localhost:1",
				Enabled:     true,
				Status:      "error",
				ErrorDetail: "Connection failed: check the URL and port",
			},
			expected: "🔴 Broken (error)\n" +
				"  🆔 def\n" +
				"  URL: http://localhost:1\n" +
				"  Error: Connection failed: check the URL and port\n\n",
		},
		{
			name: "disabled",
			item: ServerListItem{
				ID:      "ghi",
				Name:    "Paused",
				BaseURL: "http://localhost:2",
				Status:  "disconnected",
			},
			expected: "⏸ Paused (disconnected)\n" +
				"  🆔 ghi\n" +
				"  URL: http://localhost:2\n" +
				"  Disabled\n\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, NewServerPrinter().Item(&buf, tc.item))
			require.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestServerPrinter_DefaultHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewServerPrinter()
	p.Header(&buf, 2)
	p.Footer(&buf, 2)

	require.Equal(t, "Registered tool servers (2 total):\n\n", buf.String())
}

func TestServerListItem_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(ServerListItem{ID: "a", Name: "n", BaseURL: "http://h", Status: "disconnected", Tools: []string{}})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"a","name":"n","baseUrl":"http://h","isEnabled":false,"status":"disconnected","tools":[]}`, string(b))
}
