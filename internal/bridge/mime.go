package bridge

import (
	"net/url"
	"path"
	"strings"
)

var extensionTypes = map[string]string{
	"css":   "text/css",
	"js":    "text/javascript",
	"mjs":   "text/javascript",
	"cjs":   "text/javascript",
	"json":  "application/json",
	"svg":   "image/svg+xml",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"webp":  "image/webp",
	"avif":  "image/avif",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"mp3":   "audio/mpeg",
	"wav":   "audio/wav",
	"mp4":   "video/mp4",
	"webm":  "video/webm",
}

// InferMime returns the content type implied by kind and uri.
func InferMime(kind Kind, uri string) string {
	switch kind {
	case KindDocument:
		return "text/html"
	case KindStyle:
		return "text/css"
	case KindScript:
		return "text/javascript"
	}

	if mime, ok := extensionTypes[extension(uri)]; ok {
		return mime
	}
	if kind == KindImg {
		return "image/png"
	}
	return "application/octet-stream"
}

// MimeForPath looks up the extension table only; ok is false on a miss.
func MimeForPath(p string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	mime, ok := extensionTypes[ext]
	return mime, ok
}

// extension returns the lowercased extension of the URI's last path segment.
func extension(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	last := path.Base(p)
	idx := strings.LastIndex(last, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(last[idx+1:])
}
