package ui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage() Page {
	return Page{
		Title:  "Views <dev>",
		Src:    "ui://app/index.html",
		Socket: "/view/ws",
		Views:  "/views",
		Assets: "/assets/",
	}
}

func TestRenderSandboxedFrame(t *testing.T) {
	out, err := Render(testPage())
	require.NoError(t, err)

	doc, err := htmlquery.Parse(strings.NewReader(string(out)))
	require.NoError(t, err)

	frame := htmlquery.FindOne(doc, "//iframe[@id='mcpview-frame']")
	require.NotNil(t, frame)
	assert.Equal(t, "allow-scripts", htmlquery.SelectAttr(frame, "sandbox"))
	assert.Equal(t, "no-referrer", htmlquery.SelectAttr(frame, "referrerpolicy"))

	option := htmlquery.FindOne(doc, "//select[@id='mcpview-views']/option")
	require.NotNil(t, option)
	assert.Equal(t, "ui://app/index.html", htmlquery.SelectAttr(option, "value"))

	script := htmlquery.FindOne(doc, "//script[@src]")
	assert.Equal(t, "/assets/host.js", htmlquery.SelectAttr(script, "src"))
}

func TestRenderEscapes(t *testing.T) {
	out, err := Render(testPage())
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Views &lt;dev&gt;</title>")
	assert.NotContains(t, html, "<dev>")

	doc, err := htmlquery.Parse(strings.NewReader(html))
	require.NoError(t, err)
	cfg := htmlquery.FindOne(doc, "//script[@id='mcpview-config']")
	require.NotNil(t, cfg)
	assert.JSONEq(t, `{"socket":"/view/ws","views":"/views","src":"ui://app/index.html"}`, htmlquery.InnerText(cfg))
}

func TestHandlerAndAssets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, err := Handler(testPage())
	require.NoError(t, err)

	router := gin.New()
	router.GET("/", handler)
	router.StaticFS("/assets", Assets())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/host.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "frame.contentWindow.postMessage")
}
