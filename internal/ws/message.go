package ws

import (
	"encoding/json"
	"errors"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/host"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/theme"
)

var codec = sonic.ConfigStd

const (
	typeSet     = "set"
	typeLoaded  = "loaded"
	typeMessage = "message"
	typePing    = "ping"
	typeSession = "session"
	typeContent = "content"
	typePong    = "pong"
	typeError   = "error"
)

// inbound is a client → server message.
type inbound struct {
	Type    string          `json:"type"`
	Frame   string          `json:"frame,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`

	Src    *string         `json:"src,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	CSS    json.RawMessage `json:"css,omitempty"`
	Layers *[]string       `json:"layers,omitempty"`
	Theme  *string         `json:"theme,omitempty"`
	Base   *string         `json:"base,omitempty"`
}

// outbound is a server → client message.
type outbound struct {
	Type    string          `json:"type"`
	Session string          `json:"session,omitempty"`
	Frame   string          `json:"frame,omitempty"`
	HTML    string          `json:"html,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// update converts the settings carried by a set message.
func (m inbound) update() (host.Update, error) {
	u := host.Update{
		Src:       m.Src,
		Layers:    m.Layers,
		ThemeLink: m.Theme,
		Base:      m.Base,
	}
	if len(m.CSS) > 0 {
		css, err := parseCSS(m.CSS)
		if err != nil {
			return host.Update{}, err
		}
		u.CSS = &css
	}
	return u, nil
}

// parseCSS accepts raw CSS as a string, custom property values as an object,
// or null to clear the overrides.
func parseCSS(raw json.RawMessage) (theme.CSS, error) {
	var css theme.CSS
	if string(raw) == "null" {
		return css, nil
	}
	if err := codec.Unmarshal(raw, &css.Raw); err == nil {
		return css, nil
	}
	if err := codec.Unmarshal(raw, &css.Variables); err == nil {
		return css, nil
	}
	return css, errors.New("css must be a string or an object of custom properties")
}
