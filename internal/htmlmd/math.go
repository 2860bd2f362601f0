package htmlmd

import (
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const nbsp = "\u00a0"

func isMath(n *html.Node) bool { return dom.NodeName(n) == "math" }

// captureMath renders every formula before whitespace is collapsed.
func (t *transducer) captureMath(_ converter.Context, doc *html.Node) {
	nodes := dom.FindAllNodes(doc, isMath)
	if isMath(doc) {
		nodes = append(nodes, doc)
	}
	for _, n := range nodes {
		t.formulas[n] = t.formula(n)
	}
}

func (t *transducer) math(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !isMath(n) {
		return converter.RenderTryNext
	}
	tex, ok := t.formulas[n]
	if !ok {
		tex = t.formula(n)
	}
	w.WriteString(strings.ReplaceAll(tex, "\n", codeNewline))
	return converter.RenderSuccess
}

// formula renders a MathML element as TeX. An embedded TeX annotation
// wins, then a formula recorded for the element id, then the element's
// text.
func (t *transducer) formula(n *html.Node) string {
	display := attr(n, "display")

	ann := goquery.NewDocumentFromNode(n).Find(`annotation[encoding="application/x-tex"]`).First()
	if ann.Length() > 0 {
		return formatTeX(ann.Text(), display == "inline")
	}
	if id := attr(n, "id"); id != "" {
		if m, ok := t.opts.Math[id]; ok {
			return formatTeX(m.TeX, m.Inline)
		}
	}
	return formatTeX(dom.CollectText(n), display != "block")
}

func formatTeX(tex string, inline bool) string {
	tex = strings.ReplaceAll(strings.TrimSpace(tex), nbsp, "")
	if inline {
		return "$" + strings.ReplaceAll(tex, "\n", " ") + "$"
	}
	return "$$\n" + tex + "\n$$"
}
