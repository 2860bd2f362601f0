package markclip

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alnah/go-markclip/internal/htmlmd"
	"golang.org/x/net/html"
)

// Style enums shared with the converter.
type (
	ImageStyle     = htmlmd.ImageStyle
	ImageRefStyle  = htmlmd.ImageRefStyle
	LinkStyle      = htmlmd.LinkStyle
	CodeBlockStyle = htmlmd.CodeBlockStyle
	HeadingStyle   = htmlmd.HeadingStyle
	Math           = htmlmd.Math
)

// Image styles.
const (
	ImageStyleMarkdown         = htmlmd.ImageStyleMarkdown
	ImageStyleObsidian         = htmlmd.ImageStyleObsidian
	ImageStyleObsidianNoFolder = htmlmd.ImageStyleObsidianNoFolder
	ImageStyleBase64           = htmlmd.ImageStyleBase64
	ImageStyleOriginalSource   = htmlmd.ImageStyleOriginalSource
	ImageStyleNone             = htmlmd.ImageStyleNone
)

// Image reference styles.
const (
	ImageRefInline     = htmlmd.ImageRefInline
	ImageRefReferenced = htmlmd.ImageRefReferenced
)

// Link styles.
const (
	LinkStyleInline = htmlmd.LinkStyleInline
	LinkStyleStrip  = htmlmd.LinkStyleStrip
)

// Code block styles.
const (
	CodeBlockFenced   = htmlmd.CodeBlockFenced
	CodeBlockIndented = htmlmd.CodeBlockIndented
)

// Heading styles.
const (
	HeadingATX    = htmlmd.HeadingATX
	HeadingSetext = htmlmd.HeadingSetext
)

// DownloadMode selects who persists the converted document.
type DownloadMode string

const (
	// DownloadModeDownloadsAPI has the deliverer write files, so images
	// are materialized before delivery.
	DownloadModeDownloadsAPI DownloadMode = "downloadsApi"
	// DownloadModeContentLink hands the Markdown over as-is.
	DownloadModeContentLink DownloadMode = "contentLink"
)

// Untitled is used when a document carries no usable title.
const Untitled = "Untitled"

// Article is a parsed document ready for conversion.
type Article struct {
	Title         string
	PageTitle     string // defaults to Title
	Byline        string
	Excerpt       string
	SiteName      string
	BaseURI       string
	URL           string
	TabURL        string
	Lang          string
	Dir           string
	PublishedTime string
	Keywords      []string
	Content       *html.Node
	Math          map[string]Math   // formulas keyed by element id
	Extra         map[string]string // additional template fields
}

// withTitleDefaults returns a copy of a whose titles are never empty.
func (a *Article) withTitleDefaults() *Article {
	cp := Article{}
	if a != nil {
		cp = *a
	}
	if cp.Title == "" && cp.PageTitle == "" {
		cp.Title = cp.SiteName
		if cp.Title == "" {
			cp.Title = Untitled
		}
	}
	if cp.PageTitle == "" {
		cp.PageTitle = cp.Title
	}
	return &cp
}

// fields returns every scalar field addressable from a template.
// URL parts are derived from BaseURI.
func (a *Article) fields() map[string]string {
	f := make(map[string]string, 24+len(a.Extra))
	for k, v := range a.Extra {
		f[k] = v
	}
	f["title"] = a.Title
	f["pageTitle"] = a.PageTitle
	f["byline"] = a.Byline
	f["excerpt"] = a.Excerpt
	f["siteName"] = a.SiteName
	f["baseURI"] = a.BaseURI
	f["url"] = a.URL
	f["tabUrl"] = a.TabURL
	f["lang"] = a.Lang
	f["dir"] = a.Dir
	f["publishedTime"] = a.PublishedTime
	f["keywords"] = strings.Join(a.Keywords, ",")

	if u, err := url.Parse(a.BaseURI); err == nil && u.IsAbs() {
		f["host"] = u.Host
		f["hostname"] = u.Hostname()
		f["origin"] = u.Scheme + "://" + u.Host
		f["pathname"] = u.EscapedPath()
		f["port"] = u.Port()
		f["protocol"] = u.Scheme + ":"
		if u.RawQuery != "" {
			f["search"] = "?" + u.RawQuery
		}
		if u.Fragment != "" {
			f["hash"] = "#" + u.EscapedFragment()
		}
	}
	return f
}

// ImageManifest maps an image source, or a blob handle after
// materialization, to its local filename.
type ImageManifest map[string]string

// Result is a converted document.
type Result struct {
	Markdown string
	Images   ImageManifest
}

// ParseRequest asks the parser to turn a serialized document into an Article.
type ParseRequest struct {
	Document      string // serialized HTML
	URL           string // document location, used as base URI
	TabURL        string // optional location shown to the user
	Selection     string // serialized HTML of the user's selection
	SelectionOnly bool   // convert Selection instead of the extracted article
}

// Timeouts bounds each exchange with an external collaborator.
type Timeouts struct {
	Parse       time.Duration
	Transduce   time.Duration
	Predownload time.Duration
	DownloadURL time.Duration
}

// DefaultTimeouts returns the default exchange bounds.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Parse:       30 * time.Second,
		Transduce:   30 * time.Second,
		Predownload: 60 * time.Second,
		DownloadURL: 30 * time.Second,
	}
}

// Validate rejects negative bounds. Zero means no bound.
func (t Timeouts) Validate() error {
	for name, d := range map[string]time.Duration{
		"parse":        t.Parse,
		"transduce":    t.Transduce,
		"predownload":  t.Predownload,
		"download URL": t.DownloadURL,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s timeout %s", ErrInvalidTimeout, name, d)
		}
	}
	return nil
}
