package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/bridge"
)

type echoInput struct {
	Text string `json:"text"`
}

func textResource(uri, mime, text string) mcp.ResourceHandler {
	return func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mime, Text: text}},
		}, nil
	}
}

func connect(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0.0.1"}, nil)
	server.AddResource(&mcp.Resource{URI: "ui://app/index.html", Name: "index"},
		textResource("ui://app/index.html", "text/html", "<p>hello</p>"))
	server.AddResource(&mcp.Resource{URI: "ui://app/notes.txt", Name: "notes"},
		textResource("ui://app/notes.txt", "", "plain"))
	server.AddResource(&mcp.Resource{URI: "ui://app/logo.png", Name: "logo"},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{URI: "ui://app/logo.png", MIMEType: "image/png", Blob: []byte{0x89, 'P', 'N', 'G'}}},
			}, nil
		})
	mcp.AddTool(server, &mcp.Tool{Name: "echo", Description: "echo text"},
		func(_ context.Context, _ *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: in.Text}}}, nil, nil
		})
	mcp.AddTool(server, &mcp.Tool{Name: "fail", Description: "always fails"},
		func(_ context.Context, _ *mcp.CallToolRequest, _ echoInput) (*mcp.CallToolResult, any, error) {
			return nil, nil, errors.New("bad input")
		})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	session, err := Connect(ctx, clientTransport, "test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestResolve(t *testing.T) {
	s := connect(t)
	ctx := context.Background()

	got, err := s.Resolve(ctx, "ui://app/index.html")
	require.NoError(t, err)
	assert.Equal(t, bridge.Blob{Type: "text/html", Data: []byte("<p>hello</p>")}, got)

	got, err = s.Resolve(ctx, "ui://app/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	got, err = s.Resolve(ctx, "ui://app/logo.png")
	require.NoError(t, err)
	assert.Equal(t, bridge.Blob{Type: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}, got)

	_, err = s.Resolve(ctx, "ui://app/missing.css")
	assert.Error(t, err)
}

func TestResolveThroughBridge(t *testing.T) {
	s := connect(t)
	b := bridge.New(bridge.Options{Resolver: s})

	res := b.Resolve(context.Background(), "ui://app/logo.png", bridge.KindImg)
	assert.True(t, res.OK)
	assert.Equal(t, "image/png", res.MIME)

	res = b.Resolve(context.Background(), "ui://app/missing.css", bridge.KindStyle)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
}

func TestCallTool(t *testing.T) {
	s := connect(t)

	got, err := s.CallTool(context.Background(), json.RawMessage(`{"name":"echo","arguments":{"text":"hi"}}`))
	require.NoError(t, err)
	res, ok := got.(*mcp.CallToolResult)
	require.True(t, ok)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "hi", res.Content[0].(*mcp.TextContent).Text)
}

func TestCallToolErrors(t *testing.T) {
	s := connect(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params string
		want   string
	}{
		{"tool error", `{"name":"fail","arguments":{"text":"x"}}`, "bad input"},
		{"missing name", `{"arguments":{}}`, "tool name is required"},
		{"null params", `null`, "tool name is required"},
		{"malformed", `[1,2]`, "invalid tool params"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CallTool(ctx, json.RawMessage(tt.params))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := s.CallTool(ctx, json.RawMessage(`{"name":"nope"}`))
	assert.Error(t, err)
}

func TestDialWithoutServer(t *testing.T) {
	_, err := Dial(context.Background(), Config{}, "test", nil)
	assert.ErrorIs(t, err, ErrNoServer)
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Endpoint: "http://localhost:1/mcp"}.Enabled())
}
