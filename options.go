package markclip

import (
	"fmt"
	"strings"
)

// DefaultFrontmatter is the template written before every document when
// templates are enabled.
const DefaultFrontmatter = "---\n" +
	"created: {date:YYYY-MM-DDTHH:mm:ss} (UTC {date:Z})\n" +
	"tags: [{keywords}]\n" +
	"source: {baseURI}\n" +
	"author: {byline}\n" +
	"---\n\n" +
	"# {pageTitle}\n\n" +
	"> ## Excerpt\n" +
	"> {excerpt}\n\n" +
	"---"

// Options controls one conversion. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	// Templates.
	Frontmatter     string
	Backmatter      string
	Title           string
	ImagePrefix     string
	MdClipsFolder   string
	ObsidianFolder  string
	DisallowedChars string
	IncludeTemplate bool

	// Images.
	DownloadImages bool
	DownloadMode   DownloadMode
	ImageStyle     ImageStyle
	ImageRefStyle  ImageRefStyle

	// Markdown flavour.
	LinkStyle        LinkStyle
	CodeBlockStyle   CodeBlockStyle
	HeadingStyle     HeadingStyle
	HR               string
	BulletListMarker string
	Fence            string
	EmDelimiter      string
	StrongDelimiter  string
	Escape           bool
	IncludeTOC       bool
	LLMOptimized     bool
}

// DefaultOptions returns the default conversion options.
func DefaultOptions() Options {
	return Options{
		Frontmatter:      DefaultFrontmatter,
		Title:            "{pageTitle}",
		ImagePrefix:      "{pageTitle}/",
		DisallowedChars:  "[]#^",
		DownloadMode:     DownloadModeDownloadsAPI,
		ImageStyle:       ImageStyleMarkdown,
		ImageRefStyle:    ImageRefInline,
		LinkStyle:        LinkStyleInline,
		CodeBlockStyle:   CodeBlockFenced,
		HeadingStyle:     HeadingATX,
		HR:               "___",
		BulletListMarker: "-",
		Fence:            "```",
		EmDelimiter:      "_",
		StrongDelimiter:  "**",
		Escape:           true,
	}
}

// Validate checks every enumerated option.
func (o Options) Validate() error {
	switch o.ImageStyle {
	case ImageStyleMarkdown, ImageStyleObsidian, ImageStyleObsidianNoFolder,
		ImageStyleBase64, ImageStyleOriginalSource, ImageStyleNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidImageStyle, o.ImageStyle)
	}

	switch o.ImageRefStyle {
	case ImageRefInline, ImageRefReferenced:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidImageRefStyle, o.ImageRefStyle)
	}

	switch o.LinkStyle {
	case LinkStyleInline, LinkStyleStrip:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLinkStyle, o.LinkStyle)
	}

	switch o.CodeBlockStyle {
	case CodeBlockFenced, CodeBlockIndented:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCodeBlockStyle, o.CodeBlockStyle)
	}

	switch o.HeadingStyle {
	case HeadingATX, HeadingSetext:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHeadingStyle, o.HeadingStyle)
	}

	switch o.DownloadMode {
	case DownloadModeDownloadsAPI, DownloadModeContentLink:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDownloadMode, o.DownloadMode)
	}

	if !isFence(o.Fence) {
		return fmt.Errorf("%w: %q (must be ``` or ~~~)", ErrInvalidFence, o.Fence)
	}

	switch o.BulletListMarker {
	case "-", "*", "+":
	default:
		return fmt.Errorf("%w: %q (must be -, * or +)", ErrInvalidBulletMarker, o.BulletListMarker)
	}

	if o.EmDelimiter != "_" && o.EmDelimiter != "*" {
		return fmt.Errorf("%w: emphasis %q (must be _ or *)", ErrInvalidDelimiter, o.EmDelimiter)
	}
	if o.StrongDelimiter != "**" && o.StrongDelimiter != "__" {
		return fmt.Errorf("%w: strong %q (must be ** or __)", ErrInvalidDelimiter, o.StrongDelimiter)
	}
	if !isRule(o.HR) {
		return fmt.Errorf("%w: %q (needs three of *, - or _)", ErrInvalidRule, o.HR)
	}
	return nil
}

func isRule(s string) bool {
	return strings.Count(s, "*") >= 3 || strings.Count(s, "-") >= 3 || strings.Count(s, "_") >= 3
}

// isFence accepts three or more backticks or tildes.
func isFence(s string) bool {
	if len(s) < 3 {
		return false
	}
	return strings.Trim(s, "`") == "" || strings.Trim(s, "~") == ""
}
