package protocol

import (
	"encoding/json"
)

// Type discriminates protocol messages.
type Type string

const (
	TypeDataUpdate       Type = "data-update"
	TypeResourceRequest  Type = "resource-request"
	TypeResourceResponse Type = "resource-response"
	TypeToolCall         Type = "tool-call"
	TypeToolResult       Type = "tool-result"
)

// MethodToolsCall is the only operation method the host accepts.
const MethodToolsCall = "tools/call"

// Placeholder element names emitted by the rewriter and upgraded by the runtime.
const (
	TagLink   = "mcp-link"
	TagScript = "mcp-script"
	TagImg    = "mcp-img"
	TagSource = "mcp-source"
	TagAudio  = "mcp-audio"
	TagVideo  = "mcp-video"
)

// Markup markers shared between the rewriter and the runtime.
const (
	AttrBlocked  = "data-mcp-blocked"
	AttrHead     = "data-mcp-head"
	AttrLayer    = "layer"
	AttrMarker   = "data-mcp"
	RootClass    = "mcp-root"
	DataEvent    = "mcp-data"
	LayerDefault = "mcp-default"
	LayerContent = "mcp-content"
	LayerUser    = "mcp-user"
	MarkerTheme  = "theme"
	MarkerBoot   = "bootstrap"
)

// DataUpdate replaces the sandbox's application data.
type DataUpdate struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload"`
}

// ResourceRequest asks the host to fetch a resource on the sandbox's behalf.
type ResourceRequest struct {
	Type Type   `json:"type"`
	ID   int64  `json:"id"`
	URI  string `json:"uri"`
	Kind string `json:"kind,omitempty"`
}

// ResourceResponse answers a ResourceRequest. Body is empty when OK is false.
type ResourceResponse struct {
	Type  Type   `json:"type"`
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	MIME  string `json:"mime"`
	Body  []byte `json:"body"`
	Error string `json:"error,omitempty"`
}

// ToolCall asks the host to invoke an operation.
type ToolCall struct {
	Type   Type            `json:"type"`
	ID     int64           `json:"id"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ToolResult answers a ToolCall.
type ToolResult struct {
	Type   Type   `json:"type"`
	ID     int64  `json:"id"`
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewDataUpdate builds a data-update message.
func NewDataUpdate(payload any) DataUpdate {
	return DataUpdate{Type: TypeDataUpdate, Payload: payload}
}

// NewResourceResponse builds a resource-response message.
func NewResourceResponse(id int64, ok bool, mime string, body []byte, errMsg string) ResourceResponse {
	if !ok {
		body = nil
	}
	return ResourceResponse{Type: TypeResourceResponse, ID: id, OK: ok, MIME: mime, Body: body, Error: errMsg}
}

// ToolSuccess builds a successful tool-result message.
func ToolSuccess(id int64, result any) ToolResult {
	return ToolResult{Type: TypeToolResult, ID: id, OK: true, Result: result}
}

// ToolFailure builds a failed tool-result message.
func ToolFailure(id int64, errMsg string) ToolResult {
	return ToolResult{Type: TypeToolResult, ID: id, OK: false, Error: errMsg}
}
