package bridge

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		result any
		kind   Kind
		uri    string
		want   Resource
	}{
		{
			name:   "plain text for style",
			result: "hello",
			kind:   KindStyle,
			uri:    "ui://app/a.css",
			want:   Resource{OK: true, MIME: "text/css", Body: []byte("hello")},
		},
		{
			name:   "bytes infer from extension",
			result: []byte{1, 2, 3},
			kind:   KindMedia,
			uri:    "ui://app/clip.webm",
			want:   Resource{OK: true, MIME: "video/webm", Body: []byte{1, 2, 3}},
		},
		{
			name:   "blob declared type wins",
			result: Blob{Type: "image/svg+xml", Data: []byte("<svg/>")},
			kind:   KindImg,
			uri:    "ui://app/logo",
			want:   Resource{OK: true, MIME: "image/svg+xml", Body: []byte("<svg/>")},
		},
		{
			name:   "blob without type",
			result: &Blob{Data: []byte("x")},
			kind:   KindImg,
			uri:    "ui://app/logo",
			want:   Resource{OK: true, MIME: "image/png", Body: []byte("x")},
		},
		{
			name:   "unsupported value",
			result: 42,
			kind:   KindScript,
			uri:    "ui://app/a.js",
			want:   Resource{OK: false, MIME: "text/plain", Error: "Unsupported resolver result"},
		},
		{
			name:   "nil result",
			result: nil,
			kind:   KindDocument,
			uri:    "ui://app/index.html",
			want:   Resource{OK: false, MIME: "text/plain", Error: "Unsupported resolver result"},
		},
		{
			name:   "failed resource keeps reason and drops body",
			result: Resource{OK: false, Body: []byte("junk"), Error: "gone"},
			kind:   KindDocument,
			uri:    "ui://x",
			want:   Resource{OK: false, MIME: "text/plain", Error: "gone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.result, tt.kind, tt.uri))
		})
	}
}

func TestNormalizeHTTPResponse(t *testing.T) {
	t.Run("not ok", func(t *testing.T) {
		resp := &http.Response{StatusCode: 404, Header: http.Header{}, Body: io.NopCloser(strings.NewReader("missing"))}
		got := Normalize(resp, KindStyle, "https://x.test/a.css")
		assert.False(t, got.OK)
		assert.Empty(t, got.Body)
		assert.Equal(t, "HTTP 404", got.Error)
		assert.Equal(t, "text/plain", got.MIME)
	})

	t.Run("content type header", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: 200,
			Header:     http.Header{"Content-Type": []string{"text/css; charset=utf-8"}},
			Body:       io.NopCloser(strings.NewReader("body{}")),
		}
		got := Normalize(resp, KindScript, "https://x.test/a")
		assert.Equal(t, Resource{OK: true, MIME: "text/css; charset=utf-8", Body: []byte("body{}")}, got)
	})

	t.Run("inferred type", func(t *testing.T) {
		resp := &http.Response{StatusCode: 204, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}
		got := Normalize(resp, KindImg, "https://x.test/a.gif")
		assert.True(t, got.OK)
		assert.Equal(t, "image/gif", got.MIME)
		assert.Empty(t, got.Body)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestNormalizeReadFailure(t *testing.T) {
	resp := &http.Response{StatusCode: 200, Header: http.Header{}, Body: io.NopCloser(failingReader{})}
	got := Normalize(resp, KindDocument, "ui://x")
	assert.False(t, got.OK)
	assert.Empty(t, got.Body)
	assert.Equal(t, io.ErrUnexpectedEOF.Error(), got.Error)
}

func TestFailureAlwaysHasReason(t *testing.T) {
	got := Failure("")
	assert.False(t, got.OK)
	assert.NotEmpty(t, got.Error)
	assert.Empty(t, got.Body)
}
