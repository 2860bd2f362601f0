// Package dateutil formats timestamps with moment-style format strings.
package dateutil

import (
	"strconv"
	"strings"
	"time"
)

// ISOLayout matches the millisecond UTC form used in document metadata.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// dateTokens maps format tokens to renderers.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token  string
	render func(t time.Time) string
}{
	{"YYYY", func(t time.Time) string { return t.Format("2006") }},
	{"MMMM", func(t time.Time) string { return t.Format("January") }},
	{"dddd", func(t time.Time) string { return t.Format("Monday") }},
	{"DDDD", func(t time.Time) string { return pad(t.YearDay(), 3) }},
	{"SSS", func(t time.Time) string { return pad(t.Nanosecond()/int(time.Millisecond), 3) }},
	{"MMM", func(t time.Time) string { return t.Format("Jan") }},
	{"ddd", func(t time.Time) string { return t.Format("Mon") }},
	{"DDD", func(t time.Time) string { return strconv.Itoa(t.YearDay()) }},
	{"YY", func(t time.Time) string { return t.Format("06") }},
	{"MM", func(t time.Time) string { return t.Format("01") }},
	{"DD", func(t time.Time) string { return t.Format("02") }},
	{"Do", func(t time.Time) string { return ordinal(t.Day()) }},
	{"dd", func(t time.Time) string { return t.Format("Mon")[:2] }},
	{"HH", func(t time.Time) string { return t.Format("15") }},
	{"hh", func(t time.Time) string { return t.Format("03") }},
	{"mm", func(t time.Time) string { return t.Format("04") }},
	{"ss", func(t time.Time) string { return t.Format("05") }},
	{"ZZ", func(t time.Time) string { return t.Format("-0700") }},
	{"WW", func(t time.Time) string { _, w := t.ISOWeek(); return pad(w, 2) }},
	{"M", func(t time.Time) string { return t.Format("1") }},
	{"D", func(t time.Time) string { return t.Format("2") }},
	{"d", func(t time.Time) string { return strconv.Itoa(int(t.Weekday())) }},
	{"H", func(t time.Time) string { return strconv.Itoa(t.Hour()) }},
	{"h", func(t time.Time) string { return t.Format("3") }},
	{"m", func(t time.Time) string { return strconv.Itoa(t.Minute()) }},
	{"s", func(t time.Time) string { return strconv.Itoa(t.Second()) }},
	{"A", func(t time.Time) string { return t.Format("PM") }},
	{"a", func(t time.Time) string { return t.Format("pm") }},
	{"Z", func(t time.Time) string { return t.Format("-07:00") }},
	{"X", func(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) }},
	{"x", func(t time.Time) string { return strconv.FormatInt(t.UnixMilli(), 10) }},
	{"Q", func(t time.Time) string { return strconv.Itoa((int(t.Month())-1)/3 + 1) }},
	{"W", func(t time.Time) string { _, w := t.ISOWeek(); return strconv.Itoa(w) }},
}

// Format renders t using a moment-style format string.
// Tokens: YYYY YY MMMM MMM MM M DDDD DDD DD Do D dddd ddd dd d
// HH H hh h mm m ss s SSS A a Z ZZ X x Q WW W.
// Use brackets to escape literal text: [Date] preserves "Date" literally.
// An unclosed bracket is kept as a literal character.
// Any non-token characters outside brackets are preserved as literals.
func Format(t time.Time, format string) string {
	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			if end := strings.IndexByte(format[i+1:], ']'); end != -1 {
				result.WriteString(format[i+1 : i+1+end])
				i += end + 2
				continue
			}
		}

		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(format[i:], tok.token) {
				result.WriteString(tok.render(t))
				i += len(tok.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String()
}

// ISO returns t in UTC with millisecond precision, e.g. 2024-05-01T08:30:00.000Z.
func ISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}
