// Package ui serves the host page: the trusted shell that owns the sandboxed
// iframe and relays its messages over the view WebSocket.
package ui

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed host.html
var hostHTML string

//go:embed assets
var assets embed.FS

var hostTemplate = template.Must(template.New("host").Parse(hostHTML))

// Page configures the host page.
type Page struct {
	Title string
	// Src is the view selected initially.
	Src string
	// Socket is the path of the view WebSocket endpoint.
	Socket string
	// Views is the path of the catalog endpoint.
	Views string
	// Assets is the path prefix the assets are served under.
	Assets string
}

// client is the configuration the host script reads.
type client struct {
	Socket string `json:"socket"`
	Views  string `json:"views"`
	Src    string `json:"src,omitempty"`
}

// Render executes the host page template.
func Render(p Page) ([]byte, error) {
	var buf bytes.Buffer
	err := hostTemplate.Execute(&buf, struct {
		Page
		Client client
	}{
		Page:   p,
		Client: client{Socket: p.Socket, Views: p.Views, Src: p.Src},
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Handler serves the rendered host page. The page is rendered once.
func Handler(p Page) (gin.HandlerFunc, error) {
	page, err := Render(p)
	if err != nil {
		return nil, err
	}
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}, nil
}

// Assets returns the static files referenced by the host page.
func Assets() http.FileSystem {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
