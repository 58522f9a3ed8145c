package policy

import (
	"net/url"
	"regexp"
	"strings"
)

// Scheme names the engine treats specially.
const (
	SchemeUI    = "ui"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

var ignoredSchemes = map[string]struct{}{
	"data":       {},
	"blob":       {},
	"mailto":     {},
	"tel":        {},
	"javascript": {},
	"about":      {},
}

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// Action is the outcome of policy evaluation for one reference.
type Action int

const (
	ActionIgnore Action = iota
	ActionLogical
	ActionRemote
	ActionBlocked
	ActionUnsupported
)

// String returns the action name used in logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionLogical:
		return "logical"
	case ActionRemote:
		return "remote"
	case ActionBlocked:
		return "blocked"
	case ActionUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Reference is a classified resource URL.
type Reference struct {
	URL    string
	Scheme string
}

// Ignored reports whether the reference uses a scheme that is never mediated.
func (r Reference) Ignored() bool {
	_, ok := ignoredSchemes[r.Scheme]
	return ok
}

// Logical reports whether the reference names a host-resolved resource.
func (r Reference) Logical() bool {
	return r.Scheme == SchemeUI
}

// Remote reports whether the reference is an http(s) URL.
func (r Reference) Remote() bool {
	return r.Scheme == SchemeHTTP || r.Scheme == SchemeHTTPS
}

// Classify resolves raw against base and reports its scheme. It returns false
// for empty or fragment-only values and for relative values that cannot be
// resolved. Values with an explicit scheme are returned trimmed but otherwise
// unchanged.
func Classify(raw, base string) (Reference, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || strings.HasPrefix(value, "#") {
		return Reference{}, false
	}

	if loc := schemePattern.FindStringIndex(value); loc != nil {
		return Reference{
			URL:    value,
			Scheme: strings.ToLower(value[:loc[1]-1]),
		}, true
	}

	if base == "" {
		return Reference{}, false
	}
	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || baseURL.Scheme == "" {
		return Reference{}, false
	}
	ref, err := url.Parse(value)
	if err != nil {
		return Reference{}, false
	}

	resolved := baseURL.ResolveReference(ref)
	return Reference{URL: resolved.String(), Scheme: strings.ToLower(resolved.Scheme)}, true
}

// Decide maps a reference to the action the caller must take. A nil allow
// predicate rejects every remote URL.
func Decide(ref Reference, allow Allower) Action {
	switch {
	case ref.Ignored():
		return ActionIgnore
	case ref.Logical():
		return ActionLogical
	case ref.Remote():
		if allow != nil && allow.Allow(ref.URL) {
			return ActionRemote
		}
		return ActionBlocked
	default:
		return ActionUnsupported
	}
}

// SchemeOf returns the lowercased scheme of an absolute reference, or "" if raw
// has none.
func SchemeOf(raw string) string {
	value := strings.TrimSpace(raw)
	loc := schemePattern.FindStringIndex(value)
	if loc == nil {
		return ""
	}
	return strings.ToLower(value[:loc[1]-1])
}
