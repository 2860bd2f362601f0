package pipeline

import (
	"regexp"
)

// Precompiled regex patterns for performance.
var (
	// Control, bidi, zero-width and line/paragraph separator characters.
	invisibleChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x{7F}-\x{9F}\x{AD}\x{61C}\x{200B}-\x{200F}\x{2028}\x{2029}\x{FEFF}\x{FFF9}-\x{FFFC}]`)

	// Compress multiple blank lines to max 1
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Finalize applies the last cleanup to an assembled Markdown document.
// Tabs, line feeds and carriage returns are kept.
func Finalize(content string) string {
	content = stripInvisible(content)
	content = compressBlankLines(content)
	return content
}

// stripInvisible removes characters that render as nothing or confuse editors.
func stripInvisible(content string) string {
	return invisibleChars.ReplaceAllString(content, "")
}

// compressBlankLines limits consecutive newlines to 2.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}
