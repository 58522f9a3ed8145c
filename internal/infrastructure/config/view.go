package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// View holds the settings applied to every view session.
type View struct {
	// Src is the root document rendered when a session starts.
	Src            string            `toml:"src" yaml:"src"`
	AllowedOrigins []string          `toml:"allowed_origins" yaml:"allowed_origins"`
	CSS            string            `toml:"css" yaml:"css"`
	Variables      map[string]string `toml:"variables" yaml:"variables"`
	Layers         []string          `toml:"layers" yaml:"layers"`
	Theme          string            `toml:"theme" yaml:"theme"`
	Base           string            `toml:"base" yaml:"base"`
	// Resources is the directory served at the default resolver base.
	Resources string `toml:"resources" yaml:"resources"`
	// Policy is a Cedar policy file deciding remote URLs. It replaces the
	// allowed origins when set.
	Policy      string    `toml:"policy" yaml:"policy"`
	CancelStale bool      `toml:"cancel_stale" yaml:"cancel_stale"`
	MCP         MCPConfig `toml:"mcp" yaml:"mcp"`
}

// MCPConfig selects the MCP server backing ui:// resources and tool calls.
type MCPConfig struct {
	Command  string   `toml:"command" yaml:"command"`
	Args     []string `toml:"args" yaml:"args"`
	Endpoint string   `toml:"endpoint" yaml:"endpoint"`
}

// DefaultView returns the view settings used without a view file.
func DefaultView() *View {
	return &View{Resources: "views"}
}

// LoadView reads a view file. The format follows the extension: .toml, .yaml
// or .yml. An empty path returns the defaults.
func LoadView(path string) (*View, error) {
	view := DefaultView()
	if path == "" {
		return view, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read view config: %w", err)
	}
	if err := ParseView(data, filepath.Ext(path), view); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return view, nil
}

// ParseView decodes data in the format named by ext into view. Fields absent
// from data keep their current values.
func ParseView(data []byte, ext string, view *View) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		return toml.Unmarshal(data, view)
	case "yaml", "yml":
		return yaml.Unmarshal(data, view)
	default:
		return fmt.Errorf("unsupported view config format %q", ext)
	}
}
