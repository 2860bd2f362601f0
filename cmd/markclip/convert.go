package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	markclip "github.com/alnah/go-markclip"
	"github.com/alnah/go-markclip/internal/assets"
	"github.com/alnah/go-markclip/internal/config"
	"github.com/alnah/go-markclip/internal/pipeline"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput     = errors.New("no input specified")
	ErrReadHTML    = errors.New("failed to read HTML file")
	ErrWriteOutput = errors.New("failed to write output")
	ErrSingleInput = errors.New("option requires a single input file")
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	opts      markclip.Options
	pageURL   string // overrides the input's file URL
	selection string
	previewer *pipeline.Previewer
}

// runConvertCmd parses flags, runs the conversion and maps errors to exit codes.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	log := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	setMaxProcs(log)

	if err := runConvert(ctx, positional, flags, env, log); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, env *Environment, log logrus.FieldLogger) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(log)

	// Priority: CLI flags > env vars > config file > defaults
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	loader, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return err
	}
	opts, err := buildOptions(cfg, loader)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional)
	if err != nil {
		return err
	}
	files, err := discoverFiles(inputPath, resolveOutputDir(flags.output, cfg))
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no HTML files found in %s", ErrNoInput, inputPath)
	}

	params, err := buildParams(flags, cfg, opts, loader, len(files))
	if err != nil {
		return err
	}

	convOpts, err := converterOptions(cfg, env, log)
	if err != nil {
		return err
	}
	pool := markclip.NewConverterPool(markclip.ResolvePoolSize(cfg.Workers), func() (*markclip.Converter, error) {
		return markclip.NewConverter(convOpts(cfg.Sandbox.Enabled)...)
	})
	defer func() {
		if err := pool.Close(); err != nil {
			log.WithError(err).Warn("closing converters failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"files":    len(files),
		"poolSize": pool.Size(),
	}).Debug("starting conversion")

	results := convertBatch(ctx, pool, files, params)
	return printResults(results, flags.common.quiet, flags.common.verbose, env)
}

// loadConfig loads the config named by flag or environment, or the defaults.
func loadConfig(flagName string, env *envConfig) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	// Template flags
	if flags.templates.set != "" {
		cfg.Templates.Set = flags.templates.set
		cfg.Templates.Enabled = true
	}
	setOption(&cfg.Templates.Title, flags.templates.title)
	setOption(&cfg.Images.Folder, flags.templates.folder)
	setOption(&cfg.Templates.DisallowedChars, flags.templates.disallowed)
	if flags.templates.llm {
		cfg.Templates.LLMOptimized = true
	}

	// Markdown flags
	md := flags.markdown
	setOption(&cfg.Markdown.HeadingStyle, md.headingStyle)
	setOption(&cfg.Markdown.CodeBlockStyle, md.codeBlockStyle)
	setOption(&cfg.Markdown.Fence, md.fence)
	setOption(&cfg.Markdown.LinkStyle, md.linkStyle)
	setOption(&cfg.Markdown.BulletListMarker, md.bullet)
	setOption(&cfg.Markdown.EmDelimiter, md.em)
	setOption(&cfg.Markdown.StrongDelimiter, md.strong)
	setOption(&cfg.Markdown.HR, md.hr)
	if md.noEscape {
		escape := false
		cfg.Markdown.Escape = &escape
	}
	if md.toc {
		cfg.Markdown.TOC = true
	}

	// Image flags
	img := flags.images
	if img.download {
		cfg.Images.Download = true
	}
	setOption(&cfg.Images.Mode, img.mode)
	setOption(&cfg.Images.Style, img.style)
	setOption(&cfg.Images.RefStyle, img.refStyle)
	setOption(&cfg.Images.Prefix, img.prefix)
	if img.rateLimit > 0 {
		cfg.Images.RateLimit = img.rateLimit
	}

	// Preview flags
	if flags.preview.enabled {
		cfg.Preview.Enabled = true
	}
	setOption(&cfg.Preview.Style, flags.preview.style)
	setOption(&cfg.Assets.BasePath, flags.preview.assetPath)

	// Resources
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.timeout != "" {
		cfg.Timeouts = config.TimeoutsConfig{
			Parse:       flags.timeout,
			Transduce:   flags.timeout,
			Predownload: flags.timeout,
			Download:    flags.timeout,
		}
	}
	if flags.sandbox {
		cfg.Sandbox.Enabled = true
	}

	// Disable flags
	if flags.templates.disabled {
		cfg.Templates.Enabled = false
	}
}

// setOption overwrites dst when v is set.
func setOption[T ~string](dst *T, v string) {
	if v != "" {
		*dst = T(v)
	}
}

// buildOptions maps config onto conversion options and validates them.
func buildOptions(cfg *config.Config, loader assets.AssetLoader) (markclip.Options, error) {
	o := markclip.DefaultOptions()

	t := cfg.Templates
	o.IncludeTemplate = t.Enabled
	o.LLMOptimized = t.LLMOptimized
	if t.Set != "" {
		set, err := loader.LoadTemplateSet(t.Set)
		if err != nil {
			return o, err
		}
		o.Frontmatter, o.Backmatter = set.Frontmatter, set.Backmatter
	}
	setOption(&o.Frontmatter, t.Frontmatter)
	setOption(&o.Backmatter, t.Backmatter)
	setOption(&o.Title, t.Title)
	setOption(&o.DisallowedChars, t.DisallowedChars)

	md := cfg.Markdown
	setOption(&o.HeadingStyle, md.HeadingStyle)
	setOption(&o.CodeBlockStyle, md.CodeBlockStyle)
	setOption(&o.Fence, md.Fence)
	setOption(&o.LinkStyle, md.LinkStyle)
	setOption(&o.BulletListMarker, md.BulletListMarker)
	setOption(&o.EmDelimiter, md.EmDelimiter)
	setOption(&o.StrongDelimiter, md.StrongDelimiter)
	setOption(&o.HR, md.HR)
	if md.Escape != nil {
		o.Escape = *md.Escape
	}
	o.IncludeTOC = md.TOC

	img := cfg.Images
	o.DownloadImages = img.Download
	setOption(&o.DownloadMode, img.Mode)
	setOption(&o.ImageStyle, img.Style)
	setOption(&o.ImageRefStyle, img.RefStyle)
	setOption(&o.ImagePrefix, img.Prefix)
	setOption(&o.MdClipsFolder, img.Folder)
	setOption(&o.ObsidianFolder, img.ObsidianFolder)

	return o, o.Validate()
}

// buildParams resolves the per-run inputs shared by every file.
func buildParams(flags *convertFlags, cfg *config.Config, opts markclip.Options, loader assets.AssetLoader, fileCount int) (*conversionParams, error) {
	params := &conversionParams{opts: opts, pageURL: flags.url}

	if fileCount > 1 && flags.url != "" {
		return nil, fmt.Errorf("%w: --url", ErrSingleInput)
	}
	if flags.selection != "" {
		if fileCount > 1 {
			return nil, fmt.Errorf("%w: --selection", ErrSingleInput)
		}
		sel, err := os.ReadFile(flags.selection) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadHTML, err)
		}
		params.selection = string(sel)
	}

	if cfg.Preview.Enabled {
		name := cfg.Preview.Style
		if name == "" {
			name = assets.DefaultStyleName
		}
		css, err := loader.LoadStyle(name)
		if err != nil {
			return nil, err
		}
		params.previewer = pipeline.NewPreviewer(css)
	}
	return params, nil
}

// converterOptions returns a builder for the options of each pooled
// converter. Every call with sandbox set gets its own browser.
func converterOptions(cfg *config.Config, env *Environment, log logrus.FieldLogger) (func(sandbox bool) []markclip.Option, error) {
	parse, transduce, predownload, download, err := cfg.Timeouts.Durations()
	if err != nil {
		return nil, err
	}

	base := []markclip.Option{
		markclip.WithLogger(log),
		markclip.WithClock(env.Now),
		markclip.WithTimeouts(markclip.Timeouts{
			Parse:       parse,
			Transduce:   transduce,
			Predownload: predownload,
			DownloadURL: download,
		}),
	}
	if r, n := cfg.Images.RateLimit, cfg.Images.Concurrency; r > 0 || n > 0 {
		limit := rate.Inf
		if r > 0 {
			limit = rate.Limit(r)
		}
		base = append(base, markclip.WithFetchRate(limit, max(n, 1)))
	}

	sandboxTimeout := parse
	if sandboxTimeout == 0 {
		sandboxTimeout = markclip.DefaultTimeouts().Parse
	}

	return func(sandbox bool) []markclip.Option {
		opts := slices.Clone(base)
		if sandbox {
			opts = append(opts, markclip.WithSandbox(markclip.NewRodSandbox(sandboxTimeout)))
		}
		return append(opts, env.ConverterOptions...)
	}, nil
}

// resolveInputPath determines the input path from args.
func resolveInputPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}
