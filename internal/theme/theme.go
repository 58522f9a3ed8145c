// Package theme composes the stylesheet injected at the top of every view.
//
// The output always starts with an @layer order statement naming the default,
// content and user layers, followed by the default utilities and any user
// overrides.
package theme

import (
	_ "embed"
	"regexp"
	"sort"
	"strings"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/protocol"
)

//go:embed defaults.css
var defaultsCSS string

var defaultLayers = []string{protocol.LayerDefault, protocol.LayerContent, protocol.LayerUser}

var layerName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const variablePrefix = "--mcp-"

// CSS is a user override: raw CSS text, or custom property values applied to
// the view root. Raw wins when both are set.
type CSS struct {
	Raw       string
	Variables map[string]string
}

// Empty reports whether the override contributes nothing.
func (c CSS) Empty() bool {
	return c.render() == ""
}

func (c CSS) render() string {
	if c.Raw != "" {
		return c.Raw
	}
	keys := make([]string, 0, len(c.Variables))
	for k := range c.Variables {
		if strings.HasPrefix(k, variablePrefix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	decls := make([]string, len(keys))
	for i, k := range keys {
		decls[i] = k + ": " + c.Variables[k] + ";"
	}
	return "." + protocol.RootClass + "{" + strings.Join(decls, "\n  ") + "}"
}

// Inputs are the per-view theme settings.
type Inputs struct {
	CSS    CSS
	Layers []string
}

// Build returns the theme stylesheet for in.
func Build(in Inputs) string {
	parts := []string{
		"@layer " + strings.Join(LayerOrder(in.Layers), ", ") + ";",
		wrap(protocol.LayerDefault, strings.TrimRight(defaultsCSS, "\n")),
	}
	if overrides := in.CSS.render(); overrides != "" {
		parts = append(parts, wrap(protocol.LayerUser, overrides))
	}
	return strings.Join(parts, "\n\n")
}

// LayerOrder returns the cascade layer order: caller layers deduplicated in
// their given order, with any missing default layer prepended. Names that are
// not plain identifiers are dropped.
func LayerOrder(layers []string) []string {
	order := make([]string, 0, len(layers)+len(defaultLayers))
	seen := make(map[string]bool)
	for _, l := range layers {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] || !layerName.MatchString(l) {
			continue
		}
		seen[l] = true
		order = append(order, l)
	}

	var missing []string
	for _, l := range defaultLayers {
		if !seen[l] {
			missing = append(missing, l)
		}
	}
	return append(missing, order...)
}

// SanitizeLayer returns name if it is a valid layer identifier, otherwise the
// content layer.
func SanitizeLayer(name string) string {
	name = strings.TrimSpace(name)
	if layerName.MatchString(name) {
		return name
	}
	return protocol.LayerContent
}

func wrap(layer, css string) string {
	return "@layer " + layer + " {\n" + css + "\n}"
}
