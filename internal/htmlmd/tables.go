package htmlmd

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/marker"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	cellBreaks = regexp.MustCompile(`\s*\n+\s*`)
	cellPipes  = strings.NewReplacer(string(marker.MarkerEscaping)+"|", `\|`, "|", `\|`)
)

// table renders a GFM pipe table. A table with several bodies renders
// each body as its own table.
func (t *transducer) table(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if dom.NodeName(n) != "table" {
		return converter.RenderTryNext
	}
	bodies := goquery.NewDocumentFromNode(n).ChildrenFiltered("tbody")
	if bodies.Length() <= 1 {
		w.WriteString(renderRows(ctx, tableRows(n)))
		return converter.RenderSuccess
	}
	bodies.Each(func(_ int, s *goquery.Selection) {
		w.WriteString(renderRows(ctx, tableRows(s.Nodes[0])))
	})
	return converter.RenderSuccess
}

// tableRows collects tr elements directly under n or under its row groups.
func tableRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	for _, ch := range dom.AllChildElements(n) {
		switch dom.NodeName(ch) {
		case "tr":
			rows = append(rows, ch)
		case "thead", "tbody", "tfoot":
			rows = append(rows, tableRows(ch)...)
		}
	}
	return rows
}

func isCell(n *html.Node) bool {
	name := dom.NodeName(n)
	return name == "th" || name == "td"
}

func rowCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for _, ch := range dom.AllChildElements(row) {
		if isCell(ch) {
			cells = append(cells, ch)
		}
	}
	return cells
}

// renderRows renders one table: each cell behind a pipe, the row closed by a
// pipe, and a separator row under the first one.
func renderRows(ctx converter.Context, rows []*html.Node) string {
	lines := make([]string, 0, len(rows)+1)
	for _, row := range rows {
		cells := rowCells(row)
		if len(cells) == 0 {
			continue
		}
		var line strings.Builder
		for _, cell := range cells {
			line.WriteString("| ")
			ctx.RenderNodes(ctx, &line, cell)
		}
		line.WriteString("|")
		lines = append(lines, line.String())
		if len(lines) == 1 {
			lines = append(lines, separatorRow(cells))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}

func separatorRow(header []*html.Node) string {
	var b strings.Builder
	b.WriteString("|")
	for _, cell := range header {
		b.WriteString(" " + alignment(cell) + " |")
	}
	return b.String()
}

func alignment(cell *html.Node) string {
	switch strings.ToLower(attr(cell, "align")) {
	case "left":
		return ":--"
	case "right":
		return "--:"
	case "center":
		return ":-:"
	default:
		return "---"
	}
}

// tableCell renders a cell as its content trimmed onto one line with
// pipes escaped, followed by one space.
func (t *transducer) tableCell(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !isCell(n) {
		return converter.RenderTryNext
	}
	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)
	content := cellBreaks.ReplaceAllString(buf.String(), " ")
	w.WriteString(cellPipes.Replace(strings.TrimSpace(content)) + " ")
	return converter.RenderSuccess
}
