package htmlmd

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/marker"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	codeLangID    = regexp.MustCompile(`^code-lang-(.+)$`)
	codeLangClass = regexp.MustCompile(`(?:^|\s)(?:language|lang)-(\S+)`)
)

// codeIndent stands in for the indentation of indented code lines until
// the output has been trimmed.
const codeIndent = '\uF010'

var (
	codeNewline     = string(marker.MarkerCodeBlockNewline)
	indentedNewline = codeNewline + string(codeIndent)
	indentRestorer  = strings.NewReplacer(string(codeIndent), "    ")
)

// soleCode returns the code element that is the only meaningful child of
// a pre element, or nil.
func soleCode(pre *html.Node) *html.Node {
	if !isPre(pre) {
		return nil
	}
	var code *html.Node
	for ch := pre.FirstChild; ch != nil; ch = ch.NextSibling {
		switch ch.Type {
		case html.ElementNode:
			if dom.NodeName(ch) != "code" || code != nil {
				return nil
			}
			code = ch
		case html.TextNode:
			if strings.TrimSpace(ch.Data) != "" {
				return nil
			}
		}
	}
	return code
}

func (t *transducer) fencedCode(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	code := soleCode(n)
	if t.opts.CodeBlockStyle != CodeBlockFenced || code == nil {
		return converter.RenderTryNext
	}
	w.WriteString(t.fence(innerText(code), codeLanguage(code, n)))
	return converter.RenderSuccess
}

// preformatted fences preformatted text that is not a code block. With
// images inside it renders as an ordinary block so they survive.
func (t *transducer) preformatted(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !isPre(n) || soleCode(n) != nil {
		return converter.RenderTryNext
	}
	if goquery.NewDocumentFromNode(n).Find("img").Length() > 0 {
		w.WriteString("\n\n")
		ctx.RenderChildNodes(ctx, w, n)
		w.WriteString("\n\n")
		return converter.RenderSuccess
	}
	w.WriteString(t.fence(innerText(n), codeLanguage(n)))
	return converter.RenderSuccess
}

func (t *transducer) indentedCode(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	code := soleCode(n)
	if t.opts.CodeBlockStyle != CodeBlockIndented || code == nil {
		return converter.RenderTryNext
	}
	text := strings.ReplaceAll(dom.CollectText(code), "\n", indentedNewline)
	w.WriteString("\n\n" + string(codeIndent) + text + "\n\n")
	return converter.RenderSuccess
}

func restoreIndent(_ converter.Context, content []byte) []byte {
	return []byte(indentRestorer.Replace(string(content)))
}

// fence wraps code in a fence longer than any fence-like run inside it.
// Newlines are marked so the output trimming leaves the body alone.
func (t *transducer) fence(code, lang string) string {
	size := 3
	for _, m := range t.fences.FindAllStringSubmatch(code, -1) {
		if len(m[1]) >= size {
			size = len(m[1]) + 1
		}
	}
	fence := strings.Repeat(t.opts.Fence[:1], size)
	body := strings.ReplaceAll(strings.TrimSuffix(code, "\n"), "\n", codeNewline)
	return "\n\n" + fence + lang + "\n" + body + "\n" + fence + "\n\n"
}

// codeLanguage reads the language from a code-lang-<lang> id, falling back
// to a language-<lang> class on any of the given nodes.
func codeLanguage(nodes ...*html.Node) string {
	for _, n := range nodes {
		if m := codeLangID.FindStringSubmatch(attr(n, "id")); m != nil {
			return m[1]
		}
	}
	for _, n := range nodes {
		if m := codeLangClass.FindStringSubmatch(attr(n, "class")); m != nil {
			return m[1]
		}
	}
	return ""
}
