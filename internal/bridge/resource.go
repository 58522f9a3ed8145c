package bridge

import (
	"strings"
)

// Kind is the role a requested resource plays in the document.
type Kind string

const (
	KindDocument Kind = "document"
	KindStyle    Kind = "style"
	KindScript   Kind = "script"
	KindImg      Kind = "img"
	KindMedia    Kind = "media"
)

// ParseKind maps a wire value to a Kind, defaulting to KindDocument.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindStyle:
		return KindStyle
	case KindScript:
		return KindScript
	case KindImg:
		return KindImg
	case KindMedia:
		return KindMedia
	default:
		return KindDocument
	}
}

// Resource is the canonical result of resolving a URI.
type Resource struct {
	OK    bool
	MIME  string
	Body  []byte
	Error string
}

// Blob is raw bytes with an optional declared content type.
type Blob struct {
	Type string
	Data []byte
}

const failureMIME = "text/plain"

// Failure reasons reported to the sandbox.
const (
	ReasonNoResolver     = "No resolver"
	ReasonRemoteBlocked  = "Remote blocked"
	ReasonUnsupportedURI = "Unsupported URI"
	ReasonUnsupported    = "Unsupported resolver result"
)

// Failure builds a failed resource. An empty reason is replaced so that every
// failure carries one.
func Failure(reason string) Resource {
	if reason == "" {
		reason = "Unknown error"
	}
	return Resource{OK: false, MIME: failureMIME, Error: reason}
}

// Success builds a successful resource.
func Success(mime string, body []byte) Resource {
	if body == nil {
		body = []byte{}
	}
	return Resource{OK: true, MIME: mime, Body: body}
}
