package policy

import (
	"net"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Allower decides whether a remote URL may be fetched.
type Allower interface {
	Allow(rawURL string) bool
}

// AllowFunc adapts a function to Allower.
type AllowFunc func(rawURL string) bool

// Allow calls f.
func (f AllowFunc) Allow(rawURL string) bool { return f(rawURL) }

// DenyAll rejects every URL.
var DenyAll Allower = AllowFunc(func(string) bool { return false })

// AllowAll accepts every URL.
var AllowAll Allower = AllowFunc(func(string) bool { return true })

// OriginList matches URLs against a static list of origins and hostnames.
type OriginList struct {
	origins []string
	hosts   []string
}

// NewOriginList builds a list from raw entries. Entries containing "://" are
// origin patterns, all others hostname patterns. Blank entries are skipped.
func NewOriginList(entries []string) *OriginList {
	l := &OriginList{}
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "://") {
			l.origins = append(l.origins, strings.TrimSuffix(entry, "/"))
		} else {
			l.hosts = append(l.hosts, entry)
		}
	}
	return l
}

// Len returns the number of entries in the list.
func (l *OriginList) Len() int {
	return len(l.origins) + len(l.hosts)
}

// Allow reports whether rawURL matches any entry.
func (l *OriginList) Allow(rawURL string) bool {
	if l == nil || l.Len() == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	origin := Origin(u)
	for _, pattern := range l.origins {
		if match(pattern, origin) {
			return true
		}
	}
	host := strings.ToLower(u.Hostname())
	for _, pattern := range l.hosts {
		if match(pattern, host) {
			return true
		}
	}
	return false
}

func match(pattern, value string) bool {
	if pattern == value {
		return true
	}
	ok, err := doublestar.Match(pattern, value)
	return err == nil && ok
}

// Origin returns the serialized origin of u, omitting the scheme's default port.
func Origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == SchemeHTTP && port == "80") || (scheme == SchemeHTTPS && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host
}

// Select returns explicit when set, otherwise an OriginList over origins.
// With neither, every remote URL is rejected.
func Select(explicit Allower, origins []string) Allower {
	if explicit != nil {
		return explicit
	}
	list := NewOriginList(origins)
	if list.Len() == 0 {
		return DenyAll
	}
	return list
}
