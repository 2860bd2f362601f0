package htmlmd

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/net/html"
)

// register installs the document rules ahead of the CommonMark renderers.
// Rules run in slice order; the first to succeed renders the node.
func (t *transducer) register(conv *converter.Converter) {
	conv.Register.PreRenderer(t.captureMath, converter.PriorityEarly)
	conv.Register.PostRenderer(restoreIndent, converter.PriorityLate)

	conv.Register.TagType("template", converter.TagTypeRemove, converter.PriorityEarly)
	conv.Register.TagType("iframe", converter.TagTypeInline, converter.PriorityEarly)
	conv.Register.TagType("input", converter.TagTypeInline, converter.PriorityEarly)

	for i, r := range t.rules() {
		conv.Register.Renderer(r, converter.PriorityEarly+i)
	}
}

func (t *transducer) rules() []converter.HandleRenderFunc {
	return []converter.HandleRenderFunc{
		t.image,
		t.link,
		t.math,
		t.fencedCode,
		t.preformatted,
		t.indentedCode,
		t.table,
		t.tableCell,
		keep,
		taskCheckbox,
	}
}

var keptTags = map[string]bool{
	"iframe": true, "sub": true, "sup": true, "u": true, "ins": true,
	"del": true, "small": true, "big": true,
}

// keep passes the element through as literal markup.
func keep(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !keptTags[dom.NodeName(n)] {
		return converter.RenderTryNext
	}
	w.WriteString(outerHTML(n))
	return converter.RenderSuccess
}

func outerHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return dom.CollectText(n)
	}
	return buf.String()
}

// taskCheckbox renders a checkbox inside a list item as a GFM task marker.
// Any other input renders nothing.
func taskCheckbox(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if dom.NodeName(n) != "input" {
		return converter.RenderTryNext
	}
	if !strings.EqualFold(attr(n, "type"), "checkbox") || dom.NodeName(n.Parent) != "li" {
		return converter.RenderSuccess
	}
	if _, checked := dom.GetAttribute(n, "checked"); checked {
		w.WriteString("[x] ")
	} else {
		w.WriteString("[ ] ")
	}
	return converter.RenderSuccess
}
