package markclip

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is a titled URL, such as a browser tab.
type Link struct {
	Title string
	URL   string
}

// MarkdownLink formats an inline Markdown link.
func MarkdownLink(title, url string) string {
	return "[" + title + "](" + url + ")"
}

// MarkdownLinkList formats links as a bullet list, one per line.
func MarkdownLinkList(links []Link, bulletMarker string) string {
	if bulletMarker == "" {
		bulletMarker = "-"
	}
	lines := make([]string, len(links))
	for i, l := range links {
		lines[i] = bulletMarker + " " + MarkdownLink(l.Title, l.URL)
	}
	return strings.Join(lines, "\n")
}

// ConvertLink converts a single anchor to Markdown using the link options
// in o. Templates, the table of contents and image downloads are off.
func (c *Converter) ConvertLink(ctx context.Context, href, text string, o Options, a *Article) (string, error) {
	o.IncludeTemplate = false
	o.IncludeTOC = false
	o.LLMOptimized = false
	o.DownloadImages = false
	if err := o.Validate(); err != nil {
		return "", err
	}

	anchor := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.A,
		Data:     "a",
		Attr:     []html.Attribute{{Key: "href", Val: href}},
	}
	anchor.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(anchor)

	if a == nil {
		a = &Article{}
	}
	res, err := c.Transduce(ctx, root, o, a)
	if err != nil {
		return "", err
	}
	return res.Markdown, nil
}
