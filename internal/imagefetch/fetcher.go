package imagefetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Fetcher retrieves the bytes behind an image source.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (*Image, error)
}

// Fetcher defaults.
const (
	DefaultMaxBytes = 32 << 20
	DefaultRetries  = 2
	DefaultBackoff  = 500 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
	userAgent       = "go-markclip"
)

// HTTPFetcher fetches http(s), file and data sources. Server errors are
// retried with linear backoff; every other failure is final.
type HTTPFetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	retries  int
	backoff  time.Duration
	maxBytes int64
	log      logrus.FieldLogger
}

// Compile-time interface check.
var _ Fetcher = (*HTTPFetcher)(nil)

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithRateLimit caps outgoing requests to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) FetcherOption {
	return func(f *HTTPFetcher) { f.limiter = rate.NewLimiter(r, burst) }
}

// WithRetries sets how often a server error is retried and the base delay.
func WithRetries(n int, backoff time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.retries = max(n, 0)
		f.backoff = backoff
	}
}

// WithMaxBytes caps the size of a single image.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *HTTPFetcher) { f.maxBytes = n }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l logrus.FieldLogger) FetcherOption {
	return func(f *HTTPFetcher) { f.log = l }
}

// NewHTTPFetcher creates an HTTPFetcher with defaults applied before opts.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	f := &HTTPFetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		retries:  DefaultRetries,
		backoff:  DefaultBackoff,
		maxBytes: DefaultMaxBytes,
		log:      discard,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves src.
func (f *HTTPFetcher) Fetch(ctx context.Context, src string) (*Image, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}

	switch u.Scheme {
	case "data":
		return decodeDataURI(src)
	case "file":
		return f.readFile(u.Path)
	case "http", "https":
		return f.fetchHTTP(ctx, src)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, src string) (*Image, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			f.log.WithFields(logrus.Fields{
				"src":     src,
				"attempt": attempt,
				"error":   lastErr,
			}).Debug("retrying image fetch")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.backoff * time.Duration(attempt)):
			}
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		img, retry, err := f.get(ctx, src)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

// get performs one request; retry reports whether the failure is transient.
func (f *HTTPFetcher) get(ctx context.Context, src string) (img *Image, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode >= 500, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	data, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, false, err
	}
	return &Image{Data: data, MIME: detectMIME(resp.Header.Get("Content-Type"), data)}, false, nil
}

func (f *HTTPFetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	return data, nil
}

func (f *HTTPFetcher) readFile(path string) (*Image, error) {
	file, err := os.Open(path) // #nosec G304 -- path comes from the document being converted
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	data, err := f.readLimited(file)
	if err != nil {
		return nil, err
	}
	return &Image{Data: data, MIME: detectMIME("", data)}, nil
}

// detectMIME trusts a declared content type unless it is missing or generic.
func detectMIME(declared string, data []byte) string {
	if mt := baseMediaType(declared); mt != "" && mt != "application/octet-stream" {
		return mt
	}
	return baseMediaType(mimetype.Detect(data).String())
}
