package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/infrastructure/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "index.html"),
		[]byte(`<html><head><title>App</title><link rel="stylesheet" href="a.css"></head><body><p>hi</p></body></html>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "a.css"), []byte("p{}"), 0o644))

	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false
	view := config.DefaultView()
	view.Resources = dir
	view.Src = "ui://app/index.html"

	srv, err := NewServer(context.Background(), cfg, view, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path     string
		contains string
	}{
		{"/", `sandbox="allow-scripts"`},
		{"/assets/host.js", "mcpview-config"},
		{"/health", `"status":"healthy"`},
		{"/views", `"uri":"ui://app/index.html"`},
		{"/mcp/resources/app/a.css", "p{}"},
		{"/metrics", "mcpview_http_requests_total"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := fetch(t, ts.URL+tt.path)
			assert.Equal(t, http.StatusOK, code)
			assert.Contains(t, body, tt.contains)
		})
	}
}

type wireMessage struct {
	Type    string          `json:"type"`
	Frame   string          `json:"frame"`
	HTML    string          `json:"html"`
	Message json.RawMessage `json:"message"`
}

func TestViewSession(t *testing.T) {
	ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+PathSocket, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	var welcome wireMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, "session", welcome.Type)

	var content wireMessage
	require.NoError(t, conn.ReadJSON(&content))
	require.Equal(t, "content", content.Type)
	assert.Equal(t, welcome.Frame, content.Frame)
	assert.Contains(t, content.HTML, `<mcp-link rel="stylesheet" href="ui://app/a.css" data-mcp-head="true">`)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":  "message",
		"frame": welcome.Frame,
		"message": map[string]any{
			"type": "resource-request",
			"id":   1,
			"uri":  "ui://app/a.css",
			"kind": "style",
		},
	}))

	var reply wireMessage
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "message", reply.Type)

	var res struct {
		Type string `json:"type"`
		ID   int    `json:"id"`
		OK   bool   `json:"ok"`
		MIME string `json:"mime"`
		Body string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(reply.Message, &res))
	assert.Equal(t, "resource-response", res.Type)
	assert.Equal(t, 1, res.ID)
	assert.True(t, res.OK)
	assert.Equal(t, "text/css", res.MIME)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("p{}")), res.Body)
}
