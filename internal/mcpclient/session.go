// Package mcpclient connects views to an MCP server: ui:// resources are read
// with resources/read and tool calls are forwarded as tools/call.
package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/bridge"
)

// ErrNoServer is returned by Dial when neither a command nor an endpoint is
// configured.
var ErrNoServer = errors.New("mcpclient: no server configured")

// Config selects the MCP server to connect to. Command wins over Endpoint.
type Config struct {
	Command  string
	Args     []string
	Endpoint string
}

// Enabled reports whether a server is configured.
func (c Config) Enabled() bool {
	return c.Command != "" || c.Endpoint != ""
}

// Session is a connected MCP client session.
type Session struct {
	session *mcp.ClientSession
	logger  *zap.Logger
}

// Dial starts or contacts the configured server and connects to it.
func Dial(ctx context.Context, cfg Config, version string, logger *zap.Logger) (*Session, error) {
	var transport mcp.Transport
	switch {
	case cfg.Command != "":
		transport = &mcp.CommandTransport{Command: exec.Command(cfg.Command, cfg.Args...)}
	case cfg.Endpoint != "":
		transport = &mcp.StreamableClientTransport{Endpoint: cfg.Endpoint}
	default:
		return nil, ErrNoServer
	}
	return Connect(ctx, transport, version, logger)
}

// Connect opens a session over transport.
func Connect(ctx context.Context, transport mcp.Transport, version string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "mcpview", Version: version}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server: %w", err)
	}
	logger.Named("mcp").Info("connected to MCP server", zap.String("session", session.ID()))
	return &Session{session: session, logger: logger.Named("mcp")}, nil
}

// Resolve reads uri from the server. The first content entry is returned as a
// bridge.Blob, or as a string when it is text without a declared type.
func (s *Session) Resolve(ctx context.Context, uri string) (any, error) {
	res, err := s.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
	if err != nil {
		return nil, err
	}
	if len(res.Contents) == 0 || res.Contents[0] == nil {
		return nil, fmt.Errorf("empty resource: %s", uri)
	}

	content := res.Contents[0]
	switch {
	case content.Blob != nil:
		return bridge.Blob{Type: content.MIMEType, Data: content.Blob}, nil
	case content.MIMEType != "":
		return bridge.Blob{Type: content.MIMEType, Data: []byte(content.Text)}, nil
	default:
		return content.Text, nil
	}
}

// CallTool forwards params, shaped as tools/call params ({name, arguments}),
// to the server. A result flagged as an error is returned as an error carrying
// its text content.
func (s *Session) CallTool(ctx context.Context, params json.RawMessage) (any, error) {
	var p mcp.CallToolParams
	if len(params) > 0 && string(params) != "null" {
		if err := sonic.ConfigStd.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid tool params: %w", err)
		}
	}
	if p.Name == "" {
		return nil, errors.New("tool name is required")
	}

	res, err := s.session.CallTool(ctx, &p)
	if err != nil {
		return nil, err
	}
	if res.IsError {
		return nil, errors.New(text(res.Content, "Tool call failed"))
	}
	return res, nil
}

func text(content []mcp.Content, fallback string) string {
	var parts []string
	for _, c := range content {
		if t, ok := c.(*mcp.TextContent); ok && t.Text != "" {
			parts = append(parts, t.Text)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, "\n")
}

// Close ends the session.
func (s *Session) Close() error {
	return s.session.Close()
}
