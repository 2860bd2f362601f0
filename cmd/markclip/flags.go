package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// templateFlags holds front/back matter and file naming flags.
type templateFlags struct {
	set        string
	title      string
	folder     string
	disallowed string
	llm        bool
	disabled   bool
}

// markdownFlags holds Markdown flavour flags.
type markdownFlags struct {
	headingStyle   string
	codeBlockStyle string
	fence          string
	linkStyle      string
	bullet         string
	em             string
	strong         string
	hr             string
	noEscape       bool
	toc            bool
}

// imageFlags holds image handling flags.
type imageFlags struct {
	download  bool
	mode      string
	style     string
	refStyle  string
	prefix    string
	rateLimit float64
}

// previewFlags holds HTML preview flags.
type previewFlags struct {
	enabled   bool
	style     string
	assetPath string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	workers   int
	timeout   string
	url       string
	sandbox   bool
	selection string
	templates templateFlags
	markdown  markdownFlags
	images    imageFlags
	preview   previewFlags
}

// linksFlags holds flags for the links command.
type linksFlags struct {
	common commonFlags
	bullet string
	url    string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addTemplateFlags adds template flags to a FlagSet.
func addTemplateFlags(fs *flag.FlagSet, f *templateFlags) {
	fs.StringVar(&f.set, "template", "", "template set name (enables front/back matter)")
	fs.StringVar(&f.title, "title", "", "file name template (default: {pageTitle})")
	fs.StringVar(&f.folder, "folder", "", "folder template for documents and images")
	fs.StringVar(&f.disallowed, "disallowed-chars", "", "characters removed from file names")
	fs.BoolVar(&f.llm, "llm", false, "write LLM-oriented YAML frontmatter")
	fs.BoolVar(&f.disabled, "no-template", false, "disable front/back matter")
}

// addMarkdownFlags adds Markdown flavour flags to a FlagSet.
func addMarkdownFlags(fs *flag.FlagSet, f *markdownFlags) {
	fs.StringVar(&f.headingStyle, "heading-style", "", "heading style: atx, setext")
	fs.StringVar(&f.codeBlockStyle, "code-block-style", "", "code block style: fenced, indented")
	fs.StringVar(&f.fence, "fence", "", "code fence: ``` or ~~~")
	fs.StringVar(&f.linkStyle, "link-style", "", "link style: inline, stripLinks")
	fs.StringVar(&f.bullet, "bullet", "", "bullet list marker: -, *, +")
	fs.StringVar(&f.em, "em", "", "emphasis delimiter: _ or *")
	fs.StringVar(&f.strong, "strong", "", "strong delimiter: ** or __")
	fs.StringVar(&f.hr, "hr", "", "horizontal rule")
	fs.BoolVar(&f.noEscape, "no-escape", false, "do not escape Markdown characters")
	fs.BoolVar(&f.toc, "toc", false, "prepend a table of contents")
}

// addImageFlags adds image flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.BoolVar(&f.download, "download-images", false, "download images next to the document")
	fs.StringVar(&f.mode, "image-mode", "", "download mode: downloadsApi, contentLink")
	fs.StringVar(&f.style, "image-style", "", "image style: markdown, obsidian, obsidian-nofolder, base64, originalSource, noImage")
	fs.StringVar(&f.refStyle, "image-ref-style", "", "image reference style: inline, referenced")
	fs.StringVar(&f.prefix, "image-prefix", "", "image path template (default: {pageTitle}/)")
	fs.Float64Var(&f.rateLimit, "rate-limit", 0, "image requests per second (0 = unlimited)")
}

// addPreviewFlags adds preview flags to a FlagSet.
func addPreviewFlags(fs *flag.FlagSet, f *previewFlags) {
	fs.BoolVar(&f.enabled, "preview", false, "write an HTML preview next to each document")
	fs.StringVar(&f.style, "style", "", "preview stylesheet name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-stage timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.url, "url", "", "page URL used to resolve relative links")
	fs.BoolVar(&f.sandbox, "sandbox", false, "render documents in headless Chrome first")
	fs.StringVar(&f.selection, "selection", "", "HTML file holding the part of the page to convert")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addTemplateFlags(fs, &f.templates)
	addMarkdownFlags(fs, &f.markdown)
	addImageFlags(fs, &f.images)
	addPreviewFlags(fs, &f.preview)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseLinksFlags parses links command flags and returns positional args.
func parseLinksFlags(args []string) (*linksFlags, []string, error) {
	fs := flag.NewFlagSet("links", flag.ContinueOnError)
	f := &linksFlags{}

	fs.StringVar(&f.bullet, "bullet", "-", "bullet list marker: -, *, +")
	fs.StringVar(&f.url, "url", "", "page URL (single input only)")
	fs.BoolVarP(&f.common.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.common.verbose, "verbose", "v", false, "show debug logs")

	fs.Usage = func() { printLinksUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
