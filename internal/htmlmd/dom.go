package htmlmd

import (
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
)

func attr(n *html.Node, key string) string {
	return dom.GetAttributeOr(n, key, "")
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func isPre(n *html.Node) bool { return dom.NodeName(n) == "pre" }

// innerText is the text under n with line breaks for <br> elements.
func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(c.Data)
			case dom.NodeName(c) == "br":
				b.WriteByte('\n')
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// cloneTree deep-copies n so conversion never mutates the caller's tree.
func cloneTree(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(cloneTree(ch))
	}
	return c
}

// contentRoot returns the body of a full document, or n itself.
func contentRoot(n *html.Node) *html.Node {
	if n.Type != html.DocumentNode && dom.NodeName(n) != "html" {
		return n
	}
	body := dom.FindFirstNode(n, func(c *html.Node) bool {
		return dom.NodeName(c) == "body"
	})
	if body == nil {
		return n
	}
	return body
}
