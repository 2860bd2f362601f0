package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: markclip <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert HTML files to Markdown")
	fmt.Fprintln(w, "  links      Print Markdown links to HTML documents")
	fmt.Fprintln(w, "  doctor     Check the environment and run a conversion self-test")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'markclip help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: markclip convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert HTML files to Markdown. Each document is written as")
	fmt.Fprintln(w, "<folder><title>.md with its images next to it.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file or directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>          Output directory (default: next to input)")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>           Per-stage timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --url <url>             Page URL for resolving relative links")
	fmt.Fprintln(w, "      --selection <file>      Convert this HTML fragment instead of the article")
	fmt.Fprintln(w, "      --sandbox               Render documents in headless Chrome first")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Templates:")
	fmt.Fprintln(w, "      --template <name>       Template set: default, minimal, obsidian")
	fmt.Fprintln(w, "      --no-template           Disable front/back matter")
	fmt.Fprintln(w, "      --title <tpl>           File name template (default: {pageTitle})")
	fmt.Fprintln(w, "      --folder <tpl>          Folder template for documents and images")
	fmt.Fprintln(w, "      --disallowed-chars <s>  Characters removed from file names (default: []#^)")
	fmt.Fprintln(w, "      --llm                   Write LLM-oriented YAML frontmatter")
	fmt.Fprintln(w, "                              Placeholders: {pageTitle}, {title}, {byline}, {excerpt},")
	fmt.Fprintln(w, "                              {baseURI}, {keywords[:sep]}, {date:FORMAT}, ...")
	fmt.Fprintln(w, "                              Case modifiers: {title:kebab}, {title:snake}, ...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Markdown:")
	fmt.Fprintln(w, "      --heading-style <s>     atx, setext")
	fmt.Fprintln(w, "      --code-block-style <s>  fenced, indented")
	fmt.Fprintln(w, "      --fence <s>             ``` or ~~~")
	fmt.Fprintln(w, "      --link-style <s>        inline, stripLinks")
	fmt.Fprintln(w, "      --bullet <s>            -, *, +")
	fmt.Fprintln(w, "      --em <s>                _ or *")
	fmt.Fprintln(w, "      --strong <s>            ** or __")
	fmt.Fprintln(w, "      --hr <s>                Horizontal rule (default: ___)")
	fmt.Fprintln(w, "      --no-escape             Do not escape Markdown characters")
	fmt.Fprintln(w, "      --toc                   Prepend a table of contents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images:")
	fmt.Fprintln(w, "      --download-images       Download images next to the document")
	fmt.Fprintln(w, "      --image-mode <s>        downloadsApi, contentLink")
	fmt.Fprintln(w, "      --image-style <s>       markdown, obsidian, obsidian-nofolder, base64,")
	fmt.Fprintln(w, "                              originalSource, noImage")
	fmt.Fprintln(w, "      --image-ref-style <s>   inline, referenced")
	fmt.Fprintln(w, "      --image-prefix <tpl>    Image path template (default: {pageTitle}/)")
	fmt.Fprintln(w, "      --rate-limit <f>        Image requests per second (0 = unlimited)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Preview:")
	fmt.Fprintln(w, "      --preview               Write an HTML preview next to each document")
	fmt.Fprintln(w, "      --style <name>          Preview stylesheet: default, minimal")
	fmt.Fprintln(w, "      --asset-path <dir>      Custom templates/ and styles/ directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MARKCLIP_CONFIG, MARKCLIP_OUTPUT_DIR, MARKCLIP_TIMEOUT, MARKCLIP_TEMPLATE,")
	fmt.Fprintln(w, "  MARKCLIP_IMAGE_STYLE, MARKCLIP_ASSET_PATH, MARKCLIP_WORKERS, MARKCLIP_RATE_LIMIT")
}

// printLinksUsage prints usage for the links command.
func printLinksUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: markclip links <file>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print a Markdown link to each HTML document, titled by the document.")
	fmt.Fprintln(w, "Several documents are printed as a bullet list.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --bullet <s>    Bullet list marker: -, *, + (default: -)")
	fmt.Fprintln(w, "      --url <url>     Link target (single input only, default: file URL)")
	fmt.Fprintln(w, "  -q, --quiet         Only show errors")
	fmt.Fprintln(w, "  -v, --verbose       Show debug logs")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "links":
		printLinksUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: markclip doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check the browser, environment and built-in assets.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: markclip version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: markclip help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
