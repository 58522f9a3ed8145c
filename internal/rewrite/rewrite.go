package rewrite

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/policy"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/protocol"
)

// Options are the inputs to Rewrite.
type Options struct {
	HTML string
	// RootURI is the document's own URI, the base for relative references.
	RootURI string
	// ThemeCSS becomes the content of the theme style element.
	ThemeCSS string
	// ThemeLink is an optional user stylesheet. ui:// values resolve against
	// RootURI, anything else against HostURL.
	ThemeLink string
	HostURL   string
	// Bootstrap is the runtime script placed after the theme.
	Bootstrap string
	// Allow decides remote URLs. Nil blocks every remote URL.
	Allow policy.Allower
}

type target struct {
	tag         string
	attr        string
	placeholder string
}

var targets = []target{
	{"link", "href", protocol.TagLink},
	{"script", "src", protocol.TagScript},
	{"img", "src", protocol.TagImg},
	{"source", "src", protocol.TagSource},
	{"audio", "src", protocol.TagAudio},
	{"video", "src", protocol.TagVideo},
}

// Rewrite returns the sandbox-ready serialization of opts.HTML.
func Rewrite(opts Options) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(opts.HTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	root := documentElement(doc)
	if root == nil {
		return "", fmt.Errorf("document has no root element")
	}

	addClass(root, protocol.RootClass)
	if body := doc.Find("body").First(); body.Length() > 0 {
		addClass(body.Nodes[0], protocol.RootClass)
	}

	for _, t := range targets {
		rewriteElements(doc, t, opts)
	}

	head := ensureHead(doc, root)

	style := element("style", html.Attribute{Key: protocol.AttrMarker, Val: protocol.MarkerTheme})
	style.AppendChild(&html.Node{Type: html.TextNode, Data: opts.ThemeCSS})
	head.InsertBefore(style, head.FirstChild)

	anchor := style.NextSibling
	if link := themeLink(opts); link != nil {
		head.InsertBefore(link, style.NextSibling)
		anchor = link.NextSibling
	}

	boot := element("script", html.Attribute{Key: protocol.AttrMarker, Val: protocol.MarkerBoot})
	boot.AppendChild(&html.Node{Type: html.TextNode, Data: opts.Bootstrap})
	head.InsertBefore(boot, anchor)

	return serialize(doc, root)
}

func rewriteElements(doc *goquery.Document, t target, opts Options) {
	doc.Find(t.tag).Each(func(_ int, s *goquery.Selection) {
		raw, ok := s.Attr(t.attr)
		if !ok || raw == "" {
			return
		}
		ref, ok := policy.Classify(raw, opts.RootURI)
		if !ok {
			return
		}

		action := policy.Decide(ref, opts.Allow)
		if action != policy.ActionLogical && action != policy.ActionRemote && action != policy.ActionBlocked {
			return
		}

		n := s.Nodes[0]
		placeholder := element(t.placeholder, cloneAttrs(n.Attr)...)
		setAttr(placeholder, t.attr, ref.URL)
		if insideHead(n) {
			setAttr(placeholder, protocol.AttrHead, "true")
		}
		if action == policy.ActionBlocked {
			setAttr(placeholder, protocol.AttrBlocked, "true")
		}

		n.Parent.InsertBefore(placeholder, n)
		n.Parent.RemoveChild(n)
	})
}

func themeLink(opts Options) *html.Node {
	value := strings.TrimSpace(opts.ThemeLink)
	if value == "" {
		return nil
	}

	base := opts.HostURL
	if strings.HasPrefix(value, policy.SchemeUI+"://") {
		base = opts.RootURI
	}
	ref, ok := policy.Classify(value, base)
	if !ok {
		return nil
	}

	attrs := []html.Attribute{
		{Key: "rel", Val: "stylesheet"},
		{Key: "href", Val: ref.URL},
		{Key: protocol.AttrLayer, Val: protocol.LayerUser},
	}
	switch {
	case ref.Logical():
		return element(protocol.TagLink, attrs...)
	case ref.Remote():
		return element("link", attrs...)
	default:
		return nil
	}
}

func documentElement(doc *goquery.Document) *html.Node {
	for c := doc.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func ensureHead(doc *goquery.Document, root *html.Node) *html.Node {
	if head := doc.Find("head").First(); head.Length() > 0 {
		return head.Nodes[0]
	}
	head := element("head")
	root.InsertBefore(head, root.FirstChild)
	return head
}

func insideHead(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Head {
			return true
		}
	}
	return false
}

func serialize(doc *goquery.Document, root *html.Node) (string, error) {
	doctype := "<!doctype html>"
	for c := doc.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			doctype = "<!doctype " + c.Data + ">"
			break
		}
	}

	var buf bytes.Buffer
	buf.WriteString(doctype)
	buf.WriteByte('\n')
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}
