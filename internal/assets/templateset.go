package assets

import "strings"

// TemplateSet holds the templates wrapped around a converted document.
type TemplateSet struct {
	Name        string // Identifier (name or directory path)
	Frontmatter string // Template expanded before the body
	Backmatter  string // Template expanded after the body, may be empty
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in preview style.
const DefaultStyleName = "default"

// File names inside a template set directory.
const (
	frontmatterFile = "frontmatter.md"
	backmatterFile  = "backmatter.md"
)

// trimFinalNewline drops the newline editors add at end of file.
func trimFinalNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
