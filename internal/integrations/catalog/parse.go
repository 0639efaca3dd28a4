package catalog

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	productLinkClass = "link-neutro"
	productNameClass = "titulo-item"
)

type listing struct {
	name  string
	href  string
	image string
}

// parseListing collects every product anchor (a.link-neutro) with a non-empty
// name (.titulo-item text) and href.
func parseListing(doc *html.Node) []listing {
	var out []listing
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, productLinkClass) {
			l := listing{
				href:  strings.TrimSpace(attr(n, "href")),
				name:  collapse(textOf(findByClass(n, productNameClass))),
				image: attr(findElement(n, "img"), "src"),
			}
			if l.name != "" && l.href != "" {
				out = append(out, l)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return out
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findByClass(n *html.Node, class string) *html.Node {
	return find(n, func(c *html.Node) bool { return c.Type == html.ElementNode && hasClass(c, class) })
}

func findElement(n *html.Node, tag string) *html.Node {
	return find(n, func(c *html.Node) bool { return c.Type == html.ElementNode && c.Data == tag })
}

// find returns the first descendant of n, in document order, satisfying match.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			return child
		}
		if found := find(child, match); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
