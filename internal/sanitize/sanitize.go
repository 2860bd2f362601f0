// Package sanitize turns arbitrary strings into names that are safe to use
// as file names and path segments on common filesystems.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Untitled replaces names that sanitize to nothing.
const Untitled = "untitled"

// MaxLength caps a sanitized name, counted in characters.
const MaxLength = 200

var (
	illegalChars   = regexp.MustCompile(`[/?<>\\:*|":]`)
	whitespaceRun  = regexp.MustCompile(`[\s\p{Z}]+`)
	edgeDotsSpaces = regexp.MustCompile(`^[.\s\p{Z}]+|[.\s\p{Z}]+$`)
)

// Name returns a filesystem-safe version of title.
// Characters in disallowed are removed as well, except braces. A title that
// still contains both braces is an unexpanded template and is returned as is.
func Name(title, disallowed string) string {
	if title == "" {
		return Untitled
	}
	if strings.Contains(title, "{") && strings.Contains(title, "}") {
		return title
	}

	name := illegalChars.ReplaceAllString(title, "")
	name = strings.ReplaceAll(name, "\u00a0", " ")
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	for _, r := range disallowed {
		if r == '{' || r == '}' {
			continue
		}
		name = strings.ReplaceAll(name, string(r), "")
	}
	if name == "" {
		return Untitled
	}

	if utf8.RuneCountInString(name) > MaxLength {
		name = string([]rune(name)[:MaxLength])
		name = strings.TrimSpace(name)
	}

	name = edgeDotsSpaces.ReplaceAllString(name, "")
	if name == "" {
		return Untitled
	}
	return name
}

// Path sanitizes every "/"-separated segment of p with Name.
// Empty segments stay empty so leading, trailing and doubled slashes survive.
func Path(p, disallowed string) string {
	if p == "" {
		return ""
	}
	segments := strings.Split(p, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		segments[i] = Name(s, disallowed)
	}
	return strings.Join(segments, "/")
}

// Folder sanitizes p like Path and guarantees a trailing slash.
// An empty p stays empty.
func Folder(p, disallowed string) string {
	p = Path(p, disallowed)
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
