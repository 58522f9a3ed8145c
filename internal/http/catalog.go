package http

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charlievieth/fastwalk"
	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/policy"
)

// maxTitleScan bounds how much of each document is parsed for its title.
const maxTitleScan = 256 << 10

// View is a catalog entry.
type View struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Catalog lists the HTML documents under a resource directory.
type Catalog struct {
	root      string
	sanitizer *bluemonday.Policy
}

// NewCatalog creates a catalog over root.
func NewCatalog(root string) *Catalog {
	return &Catalog{root: root, sanitizer: bluemonday.StrictPolicy()}
}

// List walks the directory and returns one entry per .html file, sorted by
// URI.
func (c *Catalog) List(ctx context.Context) ([]View, error) {
	var (
		mu    sync.Mutex
		views []View
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, c.root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		rel, err := filepath.Rel(c.root, p)
		if err != nil {
			return nil
		}

		view := View{
			URI:   policy.SchemeUI + "://" + filepath.ToSlash(rel),
			Title: c.title(p),
		}
		if view.Title == "" {
			view.Title = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		}

		mu.Lock()
		views = append(views, view)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(views, func(i, j int) bool { return views[i].URI < views[j].URI })
	return views, nil
}

// title returns the sanitized document title, or "" when there is none.
func (c *Catalog) title(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(f, maxTitleScan))
	if err != nil {
		return ""
	}
	raw := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.Join(strings.Fields(c.sanitizer.Sanitize(raw)), " ")
}
