// Package sandbox renders the runtime injected into every sandboxed view.
//
// The runtime is a single inline script. It seeds window.mcpData, exposes
// window.mcp.callTool and upgrades the placeholder elements produced by the
// rewriter by asking the host for their bytes over postMessage. Replies are
// accepted only from the parent window and are matched to requests by id.
//
// Harness executes the runtime in goja against a small document model so
// the message flow can be exercised without a browser.
package sandbox
