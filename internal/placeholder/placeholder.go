// Package placeholder expands {field} templates against document metadata.
//
// A placeholder is a field name optionally followed by a transform:
//
//	{title}               raw value
//	{title:kebab}         case transform (lower, upper, kebab, mixed-kebab,
//	                      snake, mixed_snake, obsidian-cal, camel, pascal)
//	{date:YYYY-MM-DD}     current time in a moment-style format
//	{keywords:, }         keywords joined with a custom separator
//
// Placeholders that resolve to nothing are removed from the output, and so
// is any {...} left after substitution, including one carried in by a value.
package placeholder

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/alnah/go-markclip/internal/dateutil"
	"github.com/alnah/go-markclip/internal/sanitize"
)

// KeywordsSeparator joins keywords when {keywords} has no explicit separator.
const KeywordsSeparator = ","

var (
	placeholderRe = regexp.MustCompile(`\{([^{}\n]*)\}`)
	dashRun       = regexp.MustCompile(`-{2,}`)
)

// Values is the metadata a template is expanded against.
type Values struct {
	Fields   map[string]string // scalar fields by name
	Keywords []string          // raw keywords for {keywords:SEP}
	Now      time.Time         // reference time for {date:FORMAT}
}

// Expand replaces every placeholder in template with its value.
// When disallowed is non-nil, field values are sanitized against it before
// substitution, so the result is fit for use in file names.
func Expand(template string, v Values, disallowed *string) string {
	if template == "" {
		return ""
	}

	out := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		return resolve(m[1:len(m)-1], v, disallowed)
	})
	return placeholderRe.ReplaceAllLiteralString(out, "")
}

func resolve(inner string, v Values, disallowed *string) string {
	name, arg, hasArg := strings.Cut(inner, ":")

	switch {
	case name == "date" && hasArg:
		if arg == "" {
			return ""
		}
		return dateutil.Format(v.Now, arg)
	case name == "keywords" && hasArg:
		return strings.Join(v.Keywords, unescape(arg))
	}

	value, ok := v.Fields[name]
	if !ok {
		return ""
	}
	if value != "" && disallowed != nil {
		value = sanitize.Name(value, *disallowed)
	}
	if !hasArg {
		return value
	}

	transform, ok := transforms[arg]
	if !ok {
		return ""
	}
	return transform(value)
}

var transforms = map[string]func(string) string{
	"lower":        strings.ToLower,
	"upper":        strings.ToUpper,
	"kebab":        func(s string) string { return strings.ToLower(strings.ReplaceAll(s, " ", "-")) },
	"mixed-kebab":  func(s string) string { return strings.ReplaceAll(s, " ", "-") },
	"snake":        func(s string) string { return strings.ToLower(strings.ReplaceAll(s, " ", "_")) },
	"mixed_snake":  func(s string) string { return strings.ReplaceAll(s, " ", "_") },
	"obsidian-cal": func(s string) string { return dashRun.ReplaceAllString(strings.ReplaceAll(s, " ", "-"), "-") },
	"camel":        func(s string) string { return mapFirst(joinWords(s), unicode.ToLower) },
	"pascal":       func(s string) string { return mapFirst(joinWords(s), unicode.ToUpper) },
}

// joinWords drops each space and upper-cases the character after it.
// A space followed by another space swallows both.
func joinWords(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); i++ {
		if runes[i] == ' ' && i+1 < len(runes) && runes[i+1] != '\n' {
			next := runes[i+1]
			if !unicode.IsSpace(next) {
				b.WriteRune(unicode.ToUpper(next))
			}
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func mapFirst(s string, f func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == '\n' {
		return s
	}
	return string(f(r)) + s[size:]
}

// unescape interprets backslash escapes such as \n in a separator.
// Separators that do not form a valid quoted string are used verbatim.
func unescape(sep string) string {
	if !strings.Contains(sep, `\`) {
		return sep
	}
	s, err := strconv.Unquote(`"` + strings.ReplaceAll(sep, `"`, `\"`) + `"`)
	if err != nil {
		return sep
	}
	return s
}
