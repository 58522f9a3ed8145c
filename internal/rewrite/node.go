package rewrite

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func cloneAttrs(attrs []html.Attribute) []html.Attribute {
	out := make([]html.Attribute, len(attrs))
	copy(out, attrs)
	return out
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// addClass appends class to n's class list unless already present, dropping
// duplicate and empty entries.
func addClass(n *html.Node, class string) {
	existing, _ := getAttr(n, "class")
	seen := make(map[string]bool)
	var classes []string
	for _, c := range append(strings.Fields(existing), class) {
		if seen[c] {
			continue
		}
		seen[c] = true
		classes = append(classes, c)
	}
	setAttr(n, "class", strings.Join(classes, " "))
}
