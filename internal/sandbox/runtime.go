package sandbox

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/protocol"
)

//go:embed runtime.js
var runtimeSource string

var runtimeTemplate = template.Must(template.New("runtime").Parse(runtimeSource))

var serializer = sonic.ConfigStd

type runtimeParams struct {
	Data string

	ResourceRequest  string
	ResourceResponse string
	ToolCall         string
	ToolResult       string
	DataUpdate       string
	Method           string
	DataEvent        string
	AttrBlocked      string
	AttrHead         string
	DefaultLayer     string

	TagLink   string
	TagScript string
	TagImg    string
	TagSource string
	TagAudio  string
	TagVideo  string
}

// Script returns the bootstrap runtime seeded with data. The data is exposed
// to the view as window.mcpData.
func Script(data any) (string, error) {
	params := runtimeParams{
		Data:             Serialize(data),
		ResourceRequest:  literal(string(protocol.TypeResourceRequest)),
		ResourceResponse: literal(string(protocol.TypeResourceResponse)),
		ToolCall:         literal(string(protocol.TypeToolCall)),
		ToolResult:       literal(string(protocol.TypeToolResult)),
		DataUpdate:       literal(string(protocol.TypeDataUpdate)),
		Method:           literal(protocol.MethodToolsCall),
		DataEvent:        literal(protocol.DataEvent),
		AttrBlocked:      literal(protocol.AttrBlocked),
		AttrHead:         literal(protocol.AttrHead),
		DefaultLayer:     literal(protocol.LayerContent),
		TagLink:          literal(protocol.TagLink),
		TagScript:        literal(protocol.TagScript),
		TagImg:           literal(protocol.TagImg),
		TagSource:        literal(protocol.TagSource),
		TagAudio:         literal(protocol.TagAudio),
		TagVideo:         literal(protocol.TagVideo),
	}

	var b strings.Builder
	if err := runtimeTemplate.Execute(&b, params); err != nil {
		return "", fmt.Errorf("failed to render runtime: %w", err)
	}
	return b.String(), nil
}

var scriptEscaper = strings.NewReplacer(
	"<", `\u003c`,
	">", `\u003e`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// Serialize encodes v as a JSON literal that is safe to embed in an inline
// script. Values that cannot be encoded become null.
func Serialize(v any) string {
	if v == nil {
		return "null"
	}
	data, err := serializer.Marshal(v)
	if err != nil {
		return "null"
	}
	return scriptEscaper.Replace(string(data))
}

func literal(s string) string {
	return Serialize(s)
}
