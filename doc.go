// Package markclip converts web documents to Markdown.
//
// # Quick Start
//
// Create a converter, parse a document, convert it, and close when done:
//
//	conv, err := markclip.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	article, err := conv.Parse(ctx, markclip.ParseRequest{
//	    Document: page,
//	    URL:      "https://example.com/post",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, article, markclip.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Markdown)
//
// # Conversion Pipeline
//
// A document goes through these stages:
//
//  1. Optional normalization in a rendering sandbox (headless Chrome via go-rod)
//  2. Readability extraction of the article and its metadata
//  3. HTML to Markdown transduction, wrapped in expanded front and back matter
//  4. Optional table of contents
//  5. Image materialization into a blob store when downloads are enabled
//  6. Delivery of the Markdown file and its images
//
// Each exchange is bounded by a timeout, see Timeouts and WithTimeouts.
//
// # Templates
//
// Front matter, back matter, file names and image paths are templates with
// placeholders such as {pageTitle}, {baseURI}, {keywords:, } and
// {date:YYYY-MM-DD}. Text values accept case modifiers like {title:kebab}.
// Use Expand and FormatTitle to apply them outside a conversion.
//
// # Delivery
//
// FileDeliverer writes the Markdown and every image of the manifest under a
// root directory:
//
//	d := conv.NewFileDeliverer("/path/to/notes")
//	location, err := conv.Deliver(ctx, d, article, result, opts)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to share converters, and their
// sandboxes, between workers:
//
//	pool := markclip.NewConverterPool(4, func() (*markclip.Converter, error) {
//	    return markclip.NewConverter(markclip.WithSandbox(markclip.NewRodSandbox(30 * time.Second)))
//	})
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Browser Requirements
//
// Only the rod sandbox needs Chrome/Chromium. The go-rod library downloads a
// managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package markclip
