package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	markclip "github.com/alnah/go-markclip"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

// runLinksCmd prints Markdown links to HTML documents.
func runLinksCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseLinksFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	log := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	if err := runLinks(ctx, positional, flags, env, log); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runLinks parses each document for its title and writes one link, or a
// bulleted list for several documents.
func runLinks(ctx context.Context, positional []string, flags *linksFlags, env *Environment, log logrus.FieldLogger) error {
	if len(positional) == 0 {
		return ErrNoInput
	}
	if flags.url != "" && len(positional) > 1 {
		return fmt.Errorf("%w: --url", ErrSingleInput)
	}

	o := markclip.DefaultOptions()
	o.BulletListMarker = flags.bullet
	if err := o.Validate(); err != nil {
		return err
	}

	opts := append([]markclip.Option{
		markclip.WithLogger(log),
		markclip.WithClock(env.Now),
	}, env.ConverterOptions...)
	conv, err := markclip.NewConverter(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	links := make([]markclip.Link, 0, len(positional))
	for _, path := range positional {
		if err := validateHTMLExtension(path); err != nil {
			return err
		}
		content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReadHTML, err)
		}

		pageURL := flags.url
		if pageURL == "" {
			pageURL = fileURL(path)
		}
		a, err := conv.Parse(ctx, markclip.ParseRequest{Document: string(content), URL: pageURL})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		title := a.Title
		if title == "" {
			title = markclip.Untitled
		}
		links = append(links, markclip.Link{Title: title, URL: pageURL})
	}

	if len(links) == 1 {
		fmt.Fprintln(env.Stdout, markclip.MarkdownLink(links[0].Title, links[0].URL))
		return nil
	}
	fmt.Fprintln(env.Stdout, markclip.MarkdownLinkList(links, flags.bullet))
	return nil
}
