package markclip

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alnah/go-markclip/internal/bridge"
	"github.com/alnah/go-markclip/internal/htmlmd"
	"github.com/alnah/go-markclip/internal/imagefetch"
	"github.com/alnah/go-markclip/internal/pipeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// Converter orchestrates parsing, conversion and image materialization.
// Create with NewConverter, convert with Convert, and Close when done.
// A Converter is safe for concurrent use.
type Converter struct {
	log      logrus.FieldLogger
	fetcher  imagefetch.Fetcher
	store    *imagefetch.Store
	parser   Parser
	sandbox  *sandboxGuard
	now      func() time.Time
	timeouts Timeouts

	// pending configuration, resolved by NewConverter
	sandboxImpl Sandbox
	fetchRate   rate.Limit
	fetchBurst  int
	fetchLimit  int
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Converter) { c.log = l }
}

// WithFetcher replaces the HTTP image fetcher.
func WithFetcher(f imagefetch.Fetcher) Option {
	return func(c *Converter) { c.fetcher = f }
}

// WithClock sets the time source used by date placeholders.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// WithTimeouts bounds the collaborator exchanges. Zero fields keep their
// defaults.
func WithTimeouts(t Timeouts) Option {
	return func(c *Converter) {
		if t.Parse != 0 {
			c.timeouts.Parse = t.Parse
		}
		if t.Transduce != 0 {
			c.timeouts.Transduce = t.Transduce
		}
		if t.Predownload != 0 {
			c.timeouts.Predownload = t.Predownload
		}
		if t.DownloadURL != 0 {
			c.timeouts.DownloadURL = t.DownloadURL
		}
	}
}

// WithSandbox sets the rendering sandbox used before parsing.
// The default passes documents through unchanged.
func WithSandbox(s Sandbox) Option {
	return func(c *Converter) { c.sandboxImpl = s }
}

// WithParser replaces the readability parser.
func WithParser(p Parser) Option {
	return func(c *Converter) { c.parser = p }
}

// WithBlobStore sets the store that receives materialized images.
func WithBlobStore(s *imagefetch.Store) Option {
	return func(c *Converter) { c.store = s }
}

// WithFetchRate limits the default fetcher to r requests per second and
// caps parallel fetches per document at burst.
func WithFetchRate(r rate.Limit, burst int) Option {
	return func(c *Converter) {
		c.fetchRate = r
		c.fetchBurst = burst
		c.fetchLimit = burst
	}
}

// NewConverter creates a Converter with default configuration.
func NewConverter(opts ...Option) (*Converter, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Converter{
		log:         discard,
		store:       imagefetch.NewStore(),
		parser:      ReadabilityParser{},
		now:         time.Now,
		timeouts:    DefaultTimeouts(),
		sandboxImpl: nopSandbox{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.timeouts.Validate(); err != nil {
		return nil, err
	}

	if c.fetcher == nil {
		fetchOpts := []imagefetch.FetcherOption{imagefetch.WithLogger(c.log)}
		if c.fetchRate > 0 {
			fetchOpts = append(fetchOpts, imagefetch.WithRateLimit(c.fetchRate, max(c.fetchBurst, 1)))
		}
		c.fetcher = imagefetch.NewHTTPFetcher(fetchOpts...)
	}
	c.sandbox = newSandboxGuard(c.sandboxImpl, c.log)
	return c, nil
}

// Store returns the blob store holding materialized images.
func (c *Converter) Store() *imagefetch.Store {
	return c.store
}

// Parse turns a serialized document into an Article, normalizing it in
// the sandbox first. With SelectionOnly the selection replaces the
// extracted content.
func (c *Converter) Parse(ctx context.Context, req ParseRequest) (*Article, error) {
	return bridge.Call(ctx, "parse", c.timeouts.Parse, req, c.parse)
}

func (c *Converter) parse(ctx context.Context, req ParseRequest) (*Article, error) {
	document, err := c.sandbox.normalize(ctx, req.Document)
	if err != nil {
		return nil, err
	}

	a, err := c.parser.Parse(ctx, document, req.URL)
	if err != nil {
		return nil, err
	}

	if req.SelectionOnly && req.Selection != "" {
		content, err := pipeline.ParseHTML(req.Selection)
		if err != nil {
			return nil, fmt.Errorf("%w: selection: %v", ErrParse, err)
		}
		a.Content = content
	}
	if req.TabURL != "" {
		a.TabURL = req.TabURL
	}
	return a, nil
}

// Convert turns an article into Markdown. Images are materialized when
// downloads are enabled and files are written by the deliverer.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, a *Article, o Options) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := o.Validate(); err != nil {
		return nil, err
	}
	if a == nil || a.Content == nil {
		return nil, ErrNoContent
	}

	start := c.now()
	log := c.log.WithField("title", a.Title)
	log.Debug("conversion started")

	res, err := bridge.Call(ctx, "transduce", c.timeouts.Transduce, a,
		func(ctx context.Context, a *Article) (*Result, error) {
			return c.Transduce(ctx, a.Content, o, a)
		})
	if err != nil {
		return nil, err
	}

	if o.DownloadImages && o.DownloadMode == DownloadModeDownloadsAPI {
		res, err = c.Materialize(ctx, res, o)
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"imageCount": len(res.Images),
		"duration":   c.now().Sub(start),
	}).Info("conversion finished")
	return res, nil
}

// Transduce converts content to Markdown, wrapped in front and back
// matter for a. A panic during conversion yields an explanatory document
// instead of an error.
func (c *Converter) Transduce(ctx context.Context, content *html.Node, o Options, a *Article) (result *Result, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrNoContent
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Error("transduction failed")
			result = &Result{Markdown: fmt.Sprintf("Error processing content: %v", r), Images: ImageManifest{}}
			err = nil
		}
	}()

	a = a.withTitleDefaults()
	now := c.now()
	front, back := matter(a, o, now)

	out, err := htmlmd.Convert(content, htmlmd.Options{
		ImageStyle:       o.ImageStyle,
		ImageRefStyle:    o.ImageRefStyle,
		LinkStyle:        o.LinkStyle,
		CodeBlockStyle:   o.CodeBlockStyle,
		HeadingStyle:     o.HeadingStyle,
		HR:               o.HR,
		BulletListMarker: o.BulletListMarker,
		Fence:            o.Fence,
		EmDelimiter:      o.EmDelimiter,
		StrongDelimiter:  o.StrongDelimiter,
		Escape:           o.Escape,
		DownloadImages:   o.DownloadImages,
		LLMOptimized:     o.LLMOptimized,
		ImagePrefix:      imagePrefix(a, o, now),
		DisallowedChars:  o.DisallowedChars,
		BaseURI:          a.BaseURI,
		Math:             a.Math,
	})
	if err != nil {
		return nil, err
	}

	body := out.Markdown
	if o.IncludeTOC {
		body = pipeline.GenerateTOC(body) + body
	}
	return &Result{
		Markdown: pipeline.Finalize(front + body + back),
		Images:   ImageManifest(out.Images),
	}, nil
}

// Materialize fetches every image in r and rewrites its Markdown. The
// returned manifest maps blob handles to filenames, or is empty for the
// base64 style. Any failed fetch fails the whole call.
func (c *Converter) Materialize(ctx context.Context, r *Result, o Options) (*Result, error) {
	if len(r.Images) == 0 {
		return &Result{Markdown: r.Markdown, Images: ImageManifest{}}, nil
	}

	return bridge.Call(ctx, "predownload", c.timeouts.Predownload, r,
		func(ctx context.Context, r *Result) (*Result, error) {
			images, md, err := imagefetch.Materialize(ctx, c.fetcher, c.store, r.Images, r.Markdown,
				imagefetch.Options{Style: o.ImageStyle, Concurrency: c.fetchLimit})
			if err != nil {
				c.log.WithError(err).Warn("image materialization failed")
				return nil, err
			}
			return &Result{Markdown: md, Images: images}, nil
		})
}

// Deliver hands r to d, bounded by the download timeout.
func (c *Converter) Deliver(ctx context.Context, d Deliverer, a *Article, r *Result, o Options) (string, error) {
	location, err := bridge.Call(ctx, "download", c.timeouts.DownloadURL, r,
		func(ctx context.Context, r *Result) (string, error) {
			return d.Deliver(ctx, a, r, o)
		})
	if err != nil {
		return "", err
	}
	c.log.WithFields(logrus.Fields{
		"title":    a.Title,
		"location": location,
	}).Debug("document delivered")
	return location, nil
}

// Close releases the rendering sandbox.
func (c *Converter) Close() error {
	return c.sandbox.close()
}
