package pipeline

import (
	"regexp"
	"strings"
)

// TOCTitle heads a generated table of contents.
const TOCTitle = "## Table of Contents"

var (
	// ATX heading line: one or more '#', whitespace, heading text.
	headingPattern = regexp.MustCompile(`^(#+)\s+(.*)`)

	// Code fence opener or closer, up to three spaces of indentation.
	fencePattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")

	slugStrip = regexp.MustCompile(`[^\w\s-]`)
	slugSpace = regexp.MustCompile(`\s+`)
)

// headingInfo holds extracted heading metadata.
type headingInfo struct {
	Level int
	Slug  string
	Text  string
}

// GenerateTOC builds a nested Markdown list linking every ATX heading in
// markdown, followed by a horizontal rule. Lines inside fenced code blocks
// are ignored. Returns "" when the document has no headings.
func GenerateTOC(markdown string) string {
	headings := extractHeadings(markdown)
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(TOCTitle)
	buf.WriteString("\n\n")
	for i, h := range headings {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(strings.Repeat("  ", h.Level-1))
		buf.WriteString("- [")
		buf.WriteString(h.Text)
		buf.WriteString("](#")
		buf.WriteString(h.Slug)
		buf.WriteString(")")
	}
	buf.WriteString("\n\n---\n\n")
	return buf.String()
}

// extractHeadings returns the ATX headings of markdown in document order.
func extractHeadings(markdown string) []headingInfo {
	var (
		headings []headingInfo
		fence    string
	)
	for _, line := range strings.Split(markdown, "\n") {
		if m := fencePattern.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
			case m[1][0] == fence[0] && len(m[1]) >= len(fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		headings = append(headings, headingInfo{
			Level: len(m[1]),
			Slug:  Slugify(m[2]),
			Text:  m[2],
		})
	}
	return headings
}

// Slugify derives an in-document anchor from heading text: lower-cased,
// punctuation dropped, whitespace runs replaced by a single hyphen.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStrip.ReplaceAllString(s, "")
	return slugSpace.ReplaceAllString(s, "-")
}
