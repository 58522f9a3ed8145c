// Package main is the entry point of the mcpview server.
//
// The server hosts tool-supplied HTML views inside a sandboxed iframe and
// mediates every resource and tool request the view makes.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - An optional view file (-config or MCPVIEW_CONFIG) in TOML or YAML
//
// Usage:
//
//	# Serve ./views and open ui://weather/index.html
//	./server -resources views -src ui://weather/index.html
//
//	# Views and tools from an MCP server, development logging
//	./server -config view.toml -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
