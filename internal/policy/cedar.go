package policy

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	cedar "github.com/cedar-policy/cedar-go"
)

// CedarAllower evaluates remote fetches against a Cedar policy set.
//
// Requests use principal View::"sandbox", action Action::"fetch" and resource
// Url::"<url>". The context record carries scheme, host, origin and path.
type CedarAllower struct {
	policies *cedar.PolicySet
}

// NewCedarAllower parses policy source.
func NewCedarAllower(name string, src []byte) (*CedarAllower, error) {
	ps, err := cedar.NewPolicySetFromBytes(name, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cedar policy %s: %w", name, err)
	}
	return &CedarAllower{policies: ps}, nil
}

// LoadCedarAllower reads and parses a policy file.
func LoadCedarAllower(path string) (*CedarAllower, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cedar policy: %w", err)
	}
	return NewCedarAllower(filepath.Base(path), src)
}

// Allow reports whether the policy set permits fetching rawURL.
func (c *CedarAllower) Allow(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	req := cedar.Request{
		Principal: cedar.NewEntityUID("View", "sandbox"),
		Action:    cedar.NewEntityUID("Action", "fetch"),
		Resource:  cedar.NewEntityUID("Url", cedar.String(u.String())),
		Context: cedar.NewRecord(cedar.RecordMap{
			"scheme": cedar.String(strings.ToLower(u.Scheme)),
			"host":   cedar.String(strings.ToLower(u.Hostname())),
			"origin": cedar.String(Origin(u)),
			"path":   cedar.String(u.EscapedPath()),
		}),
	}

	var entities cedar.EntityMap
	decision, _ := cedar.Authorize(c.policies, entities, req)
	return decision == cedar.Allow
}
