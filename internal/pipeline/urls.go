package pipeline

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters removed during URL normalization.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
}

// NormalizeURL resolves href against baseURI and removes tracking query
// parameters. Remaining parameters keep their order. Input that cannot be
// parsed, or a relative href without a usable base, is returned unchanged.
func NormalizeURL(href, baseURI string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}

	if !u.IsAbs() {
		base, err := url.Parse(baseURI)
		if err != nil || !base.IsAbs() {
			return href
		}
		u = base.ResolveReference(u)
	}

	if u.RawQuery != "" {
		u.RawQuery = stripTracking(u.RawQuery)
		u.ForceQuery = false
	}
	return u.String()
}

// stripTracking drops tracking parameters from a raw query string.
func stripTracking(rawQuery string) string {
	pairs := strings.Split(rawQuery, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if trackingParams[key] {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// IsAbsoluteURL reports whether s carries a URL scheme.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

// EncodeURI percent-encodes s the way browsers encode a full URI: reserved
// delimiters such as '/', '?' and '#' are kept, everything outside the
// URI character set is escaped byte by byte as UTF-8.
func EncodeURI(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepInURI(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func keepInURI(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) != -1
}
