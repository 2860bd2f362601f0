package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/adrg/frontmatter"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alnah/go-markclip/internal/yamlutil"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrPreview indicates the HTML preview could not be rendered.
var ErrPreview = errors.New("preview rendering failed")

// previewTemplate wraps Goldmark's fragment output in a complete HTML5 document.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// previewMeta is the part of a document's frontmatter the preview reads.
type previewMeta struct {
	Title string `yaml:"title"`
}

// yamlFrontmatter is the only frontmatter markclip templates produce.
var yamlFrontmatter = frontmatter.NewFormat("---", "---", yamlutil.Unmarshal)

// Previewer renders converted Markdown as a standalone HTML page.
type Previewer struct {
	md  goldmark.Markdown
	css string
}

// NewPreviewer creates a Previewer with GFM extensions and syntax highlighting.
// css is embedded in a <style> block of every page; it may be empty.
func NewPreviewer(css string) *Previewer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles keep the page self-contained
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // Generate IDs for headings (TOC anchors)
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)
	return &Previewer{md: md, css: css}
}

// Render converts a Markdown document into an HTML page.
// A leading frontmatter block is stripped from the body; its title, if any,
// becomes the page title. Malformed frontmatter is rendered as Markdown.
// Supports context cancellation via goroutine + select since Goldmark
// doesn't natively support context.
func (p *Previewer) Render(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var meta previewMeta
		body, err := frontmatter.Parse(strings.NewReader(markdown), &meta, yamlFrontmatter)
		if err != nil {
			meta = previewMeta{}
			body = []byte(markdown)
		}

		var buf bytes.Buffer
		if err := p.md.Convert(body, &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrPreview, err)}
			return
		}

		title := meta.Title
		if title == "" {
			title = firstHeading(string(body))
		}
		page := fmt.Sprintf(previewTemplate, html.EscapeString(title), buf.String())
		done <- result{html: InjectCSS(page, p.css)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// firstHeading returns the text of the first level-one heading, or "Document".
func firstHeading(markdown string) string {
	for _, h := range extractHeadings(markdown) {
		if h.Level == 1 {
			return strings.TrimSpace(h.Text)
		}
	}
	return "Document"
}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
func InjectCSS(htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
