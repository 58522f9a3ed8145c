package bridge

import (
	"context"
	"strings"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/policy"
)

// DefaultBase is the resolver base used when none is configured.
const DefaultBase = "/mcp/resources/"

// Resolver turns a ui:// URI into any value Normalize understands.
type Resolver interface {
	Resolve(ctx context.Context, uri string) (any, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, uri string) (any, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, uri string) (any, error) {
	return f(ctx, uri)
}

// TemplateResolver fetches ui:// URIs from an HTTP endpoint derived from a
// base template.
type TemplateResolver struct {
	base    string
	fetcher *Fetcher
}

// NewTemplateResolver creates a resolver over base. A relative base must be
// made absolute with ResolveBase first.
func NewTemplateResolver(base string, fetcher *Fetcher) *TemplateResolver {
	return &TemplateResolver{base: base, fetcher: fetcher}
}

// Resolve fetches the expanded URL. Non-2xx responses are returned, not
// treated as errors, so that Normalize reports their status.
func (r *TemplateResolver) Resolve(ctx context.Context, uri string) (any, error) {
	return r.fetcher.Get(ctx, ResourceURL(r.base, uri))
}

// ResolveBase makes a relative base absolute against publicURL. Absolute
// bases and an empty publicURL leave base unchanged.
func ResolveBase(base, publicURL string) string {
	if base == "" || publicURL == "" || policy.SchemeOf(base) != "" {
		return base
	}
	public := strings.TrimSuffix(publicURL, "/")
	if strings.HasPrefix(base, "/") {
		return public + base
	}
	return public + "/" + base
}

// ResourceURL expands base for uri. A base containing {path} receives the
// scheme-stripped path, one containing {uri} the full URI; otherwise the URI
// is appended as a uri= query parameter when base has a query, or as a path
// suffix.
func ResourceURL(base, uri string) string {
	p := strings.TrimPrefix(uri, policy.SchemeUI+"://")
	switch {
	case strings.Contains(base, "{path}"):
		return strings.ReplaceAll(base, "{path}", encodeURI(p))
	case strings.Contains(base, "{uri}"):
		return strings.ReplaceAll(base, "{uri}", encodeURIComponent(uri))
	case strings.Contains(base, "?"):
		return base + "&uri=" + encodeURIComponent(uri)
	case strings.HasSuffix(base, "/"):
		return base + encodeURI(p)
	default:
		return base + "/" + encodeURI(p)
	}
}

const (
	uriComponentSafe = "-_.!~*'()"
	uriSafe          = uriComponentSafe + ";,/?:@&=+$#"
)

func encodeURI(s string) string          { return percentEncode(s, uriSafe) }
func encodeURIComponent(s string) string { return percentEncode(s, uriComponentSafe) }

func percentEncode(s, safe string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || strings.IndexByte(safe, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}
