// Package htmlmd converts an HTML content tree into Markdown.
//
// CommonMark output comes from html-to-markdown. The document rules are
// renderers registered ahead of it and tried in order; a rule that does
// not apply hands the node to the next one. Image rules record each
// downloadable source in a manifest that maps the source URL to a unique
// local filename.
package htmlmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"golang.org/x/net/html"
)

// UnknownExtension marks an image filename whose real extension can only
// be learned from the fetched content type.
const UnknownExtension = ".idunno"

// ImageStyle selects how images are written.
type ImageStyle string

const (
	ImageStyleMarkdown         ImageStyle = "markdown"
	ImageStyleObsidian         ImageStyle = "obsidian"
	ImageStyleObsidianNoFolder ImageStyle = "obsidian-nofolder"
	ImageStyleBase64           ImageStyle = "base64"
	ImageStyleOriginalSource   ImageStyle = "originalSource"
	ImageStyleNone             ImageStyle = "noImage"
)

// IsObsidian reports whether images are written as wiki embeds.
func (s ImageStyle) IsObsidian() bool {
	return s == ImageStyleObsidian || s == ImageStyleObsidianNoFolder
}

// ImageRefStyle selects inline or reference-style image links.
type ImageRefStyle string

const (
	ImageRefInline     ImageRefStyle = "inline"
	ImageRefReferenced ImageRefStyle = "referenced"
)

// LinkStyle selects whether hyperlinks survive conversion.
type LinkStyle string

const (
	LinkStyleInline LinkStyle = "inline"
	LinkStyleStrip  LinkStyle = "stripLinks"
)

// CodeBlockStyle selects fenced or indented code blocks.
type CodeBlockStyle string

const (
	CodeBlockFenced   CodeBlockStyle = "fenced"
	CodeBlockIndented CodeBlockStyle = "indented"
)

// HeadingStyle selects ATX (#) or setext (underlined) headings.
type HeadingStyle string

const (
	HeadingATX    HeadingStyle = "atx"
	HeadingSetext HeadingStyle = "setext"
)

// Math is a pre-extracted formula keyed by element id.
type Math struct {
	TeX    string
	Inline bool
}

// Options controls a single conversion.
type Options struct {
	ImageStyle       ImageStyle
	ImageRefStyle    ImageRefStyle
	LinkStyle        LinkStyle
	CodeBlockStyle   CodeBlockStyle
	HeadingStyle     HeadingStyle
	HR               string
	BulletListMarker string
	Fence            string
	EmDelimiter      string
	StrongDelimiter  string
	Escape           bool

	DownloadImages  bool
	LLMOptimized    bool
	ImagePrefix     string
	DisallowedChars string
	BaseURI         string
	Math            map[string]Math
}

func (o Options) withDefaults() Options {
	if o.ImageStyle == "" {
		o.ImageStyle = ImageStyleMarkdown
	}
	if o.ImageRefStyle == "" {
		o.ImageRefStyle = ImageRefInline
	}
	if o.LinkStyle == "" {
		o.LinkStyle = LinkStyleInline
	}
	if o.CodeBlockStyle == "" {
		o.CodeBlockStyle = CodeBlockFenced
	}
	if o.HeadingStyle == "" {
		o.HeadingStyle = HeadingATX
	}
	if o.HR == "" {
		o.HR = "___"
	}
	if o.BulletListMarker == "" {
		o.BulletListMarker = "-"
	}
	if o.Fence == "" {
		o.Fence = "```"
	}
	if o.EmDelimiter == "" {
		o.EmDelimiter = "_"
	}
	if o.StrongDelimiter == "" {
		o.StrongDelimiter = "**"
	}
	return o
}

// Result is the Markdown body and the image manifest built while
// producing it. Images maps source URL to local filename and is empty
// unless image downloading was requested.
type Result struct {
	Markdown string
	Images   map[string]string
}

// Convert renders content as Markdown. The input tree is not modified.
func Convert(content *html.Node, opts Options) (Result, error) {
	t := newTransducer(opts.withDefaults())
	mode := converter.EscapeModeDisabled
	if t.opts.Escape {
		mode = converter.EscapeModeSmart
	}
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(t.commonmarkOptions()...),
			strikethrough.NewStrikethroughPlugin(strikethrough.WithDelimiter("~")),
		),
		converter.WithEscapeMode(mode),
	)
	t.register(conv)

	md, err := conv.ConvertNode(cloneTree(contentRoot(content)))
	if err != nil {
		return Result{}, fmt.Errorf("converting html to markdown: %w", err)
	}
	return Result{Markdown: t.withReferences(string(md)), Images: t.images.entries()}, nil
}

// transducer holds the state of one conversion: the image manifest, the
// referenced-image footnotes and the math captured before rendering.
type transducer struct {
	opts     Options
	images   *manifest
	refs     []string
	formulas map[*html.Node]string
	fences   *regexp.Regexp
}

func newTransducer(opts Options) *transducer {
	return &transducer{
		opts:     opts,
		images:   newManifest(),
		formulas: map[*html.Node]string{},
		fences:   regexp.MustCompile(`(?m)^ {0,3}(` + regexp.QuoteMeta(opts.Fence[:1]) + `{3,})`),
	}
}

func (t *transducer) commonmarkOptions() []commonmark.OptionFunc {
	heading := commonmark.HeadingStyleATX
	if t.opts.HeadingStyle == HeadingSetext {
		heading = commonmark.HeadingStyleSetext
	}
	return []commonmark.OptionFunc{
		commonmark.WithHeadingStyle(heading),
		commonmark.WithHorizontalRule(t.opts.HR),
		commonmark.WithBulletListMarker(t.opts.BulletListMarker),
		commonmark.WithCodeBlockFence(strings.Repeat(t.opts.Fence[:1], 3)),
		commonmark.WithEmDelimiter(t.opts.EmDelimiter),
		commonmark.WithStrongDelimiter(t.opts.StrongDelimiter),
		commonmark.WithLinkEmptyHrefBehavior(commonmark.LinkBehaviorSkip),
		commonmark.WithListEndComment(false),
	}
}

// withReferences appends the referenced-image footnotes once, after the
// whole document.
func (t *transducer) withReferences(md string) string {
	if len(t.refs) == 0 {
		return md
	}
	refs := strings.Join(t.refs, "\n")
	t.refs = nil
	if md == "" {
		return refs
	}
	return md + "\n\n" + refs
}
