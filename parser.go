package markclip

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alnah/go-markclip/internal/dateutil"
	"github.com/alnah/go-markclip/internal/pipeline"
	readability "github.com/go-shiori/go-readability"
)

// Parser extracts the readable article from a serialized document.
type Parser interface {
	Parse(ctx context.Context, document, pageURL string) (*Article, error)
}

// Compile-time interface check.
var _ Parser = ReadabilityParser{}

// ReadabilityParser extracts articles with go-readability. Keywords come
// from the keywords meta tag, and MathML alttext is recorded by element id.
type ReadabilityParser struct{}

// Parse implements Parser.
func (ReadabilityParser) Parse(ctx context.Context, document, pageURL string) (*Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var base *url.URL
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: page URL: %v", ErrParse, err)
		}
		base = u
	}

	art, err := readability.FromReader(strings.NewReader(document), base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	content, err := pipeline.ParseHTML(art.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: article content: %v", ErrParse, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	a := &Article{
		Title:    art.Title,
		Byline:   art.Byline,
		Excerpt:  art.Excerpt,
		SiteName: art.SiteName,
		Lang:     art.Language,
		URL:      pageURL,
		BaseURI:  documentBase(doc, pageURL),
		Dir:      doc.Find("html").AttrOr("dir", ""),
		Keywords: splitKeywords(doc.Find(`meta[name="keywords"]`).AttrOr("content", "")),
		Content:  content,
		Math:     mathAltText(doc),
	}
	if art.PublishedTime != nil {
		a.PublishedTime = dateutil.ISO(*art.PublishedTime)
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		a.PageTitle = t
	}
	return a, nil
}

// documentBase resolves a <base href> against the page URL.
func documentBase(doc *goquery.Document, pageURL string) string {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return pageURL
	}
	return pipeline.NormalizeURL(href, pageURL)
}

func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// mathAltText records the alttext of identified MathML elements, which the
// converter falls back to when no TeX annotation is embedded.
func mathAltText(doc *goquery.Document) map[string]Math {
	out := map[string]Math{}
	doc.Find("math[id][alttext]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		tex, _ := s.Attr("alttext")
		out[id] = Math{TeX: tex, Inline: s.AttrOr("display", "inline") != "block"}
	})
	return out
}
