package markclip

// Notes:
// - Tests Converter with mocked collaborators (parser, sandbox, fetcher) so no
//   browser or network access is needed.
// - The clock is injected with WithClock; a clock that panics or sleeps is
//   also the simplest way to drive the recovery and timeout paths.

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-markclip/internal/imagefetch"
	"github.com/alnah/go-markclip/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/net/html"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockParser struct {
	mu       sync.Mutex
	document string
	url      string
	article  *Article
	err      error
}

func (m *mockParser) Parse(_ context.Context, document, pageURL string) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.document = document
	m.url = pageURL
	if m.err != nil {
		return nil, m.err
	}
	a := *m.article
	return &a, nil
}

type mockFetcher struct {
	mu     sync.Mutex
	images map[string]*imagefetch.Image
	calls  []string
}

func (m *mockFetcher) Fetch(_ context.Context, src string) (*imagefetch.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, src)
	img, ok := m.images[src]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return img, nil
}

var fixedNow = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func mustParse(t *testing.T, src string) *html.Node {
	t.Helper()

	n, err := pipeline.ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}
	return n
}

func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()

	log, _ := test.NewNullLogger()
	c, err := NewConverter(append([]Option{WithLogger(log), WithClock(fixedClock)}, opts...)...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// ---------------------------------------------------------------------------
// TestNewConverter - Construction
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		c, err := NewConverter()
		if err != nil {
			t.Fatalf("NewConverter() error = %v", err)
		}
		if diff := cmp.Diff(DefaultTimeouts(), c.timeouts); diff != "" {
			t.Errorf("timeouts mismatch (-want +got):\n%s", diff)
		}
		if c.Store() == nil {
			t.Error("Store() = nil")
		}
		if _, ok := c.fetcher.(*imagefetch.HTTPFetcher); !ok {
			t.Errorf("fetcher = %T, want *imagefetch.HTTPFetcher", c.fetcher)
		}
	})

	t.Run("partial timeouts keep defaults", func(t *testing.T) {
		t.Parallel()

		c, err := NewConverter(WithTimeouts(Timeouts{Parse: time.Second}))
		if err != nil {
			t.Fatalf("NewConverter() error = %v", err)
		}
		want := DefaultTimeouts()
		want.Parse = time.Second
		if diff := cmp.Diff(want, c.timeouts); diff != "" {
			t.Errorf("timeouts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("negative timeout rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewConverter(WithTimeouts(Timeouts{Predownload: -time.Second}))
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("NewConverter() error = %v, want %v", err, ErrInvalidTimeout)
		}
	})

	t.Run("blob store is shared", func(t *testing.T) {
		t.Parallel()

		store := imagefetch.NewStore()
		c, err := NewConverter(WithBlobStore(store))
		if err != nil {
			t.Fatalf("NewConverter() error = %v", err)
		}
		if c.Store() != store {
			t.Error("Store() did not return the injected store")
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvert - Orchestration
// ---------------------------------------------------------------------------

func TestConvert(t *testing.T) {
	t.Parallel()

	article := func() *Article {
		return &Article{
			Title:     "Hi",
			PageTitle: "My Page",
			Byline:    "Ada",
			Keywords:  []string{"go", "web"},
			URL:       "https://example.com/post",
			BaseURI:   "https://example.com/post",
		}
	}

	tests := []struct {
		name    string
		content string
		opts    func(*Options)
		article func(*Article)
		want    string
	}{
		{
			name:    "plain conversion",
			content: "<h1>Hi</h1><p>Hello <em>world</em></p>",
			want:    "# Hi\n\nHello _world_",
		},
		{
			name:    "templates wrap the body",
			content: "<p>Body</p>",
			opts: func(o *Options) {
				o.IncludeTemplate = true
				o.Frontmatter = "---\ntitle: {pageTitle}\nauthor: {byline}\n---"
				o.Backmatter = "Tags: {keywords: #}"
			},
			want: "---\ntitle: My Page\nauthor: Ada\n---\nBody\nTags: go #web",
		},
		{
			name:    "templates ignored when disabled",
			content: "<p>Body</p>",
			opts: func(o *Options) {
				o.Frontmatter = "# {pageTitle}"
			},
			want: "Body",
		},
		{
			name:    "LLM frontmatter",
			content: "<p>Body</p>",
			opts: func(o *Options) {
				o.LLMOptimized = true
				o.IncludeTemplate = true
			},
			article: func(a *Article) {
				a.Byline = ""
				a.Excerpt = `say "hi"`
				a.TabURL = "https://example.com/tab"
				a.Keywords = []string{"go", " web"}
			},
			want: "---\n" +
				"title: \"Hi\"\n" +
				"url: \"https://example.com/tab\"\n" +
				"date: \"2024-05-01T08:30:00.000Z\"\n" +
				"author: \"Unknown\"\n" +
				"excerpt: \"say \\\"hi\\\"\"\n" +
				"tags: [\"go\", \"web\"]\n" +
				"---\n\n" +
				"Body",
		},
		{
			name:    "untitled article",
			content: "<p>Body</p>",
			opts: func(o *Options) {
				o.IncludeTemplate = true
				o.Frontmatter = "# {title}"
			},
			article: func(a *Article) {
				a.Title = ""
				a.PageTitle = ""
			},
			want: "# Untitled\nBody\n",
		},
		{
			name:    "invisible characters stripped",
			content: "<p>a\u200bb</p>",
			want:    "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestConverter(t)
			a := article()
			if tt.article != nil {
				tt.article(a)
			}
			a.Content = mustParse(t, tt.content)
			o := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&o)
			}

			got, err := c.Convert(context.Background(), a, o)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Markdown); diff != "" {
				t.Errorf("Markdown mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvert_IncludeTOC(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t)
	a := &Article{Title: "T", Content: mustParse(t, "<h2>A</h2><p>x</p><h2>B</h2>")}
	o := DefaultOptions()
	o.IncludeTOC = true

	got, err := c.Convert(context.Background(), a, o)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	body := "## A\n\nx\n\n## B"
	if diff := cmp.Diff(TOC(body)+body, got.Markdown); diff != "" {
		t.Errorf("Markdown mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		article *Article
		opts    func(*Options)
		wantErr error
	}{
		{
			name:    "nil article",
			article: nil,
			wantErr: ErrNoContent,
		},
		{
			name:    "article without content",
			article: &Article{Title: "T"},
			wantErr: ErrNoContent,
		},
		{
			name:    "invalid fence",
			article: &Article{Title: "T"},
			opts:    func(o *Options) { o.Fence = "``" },
			wantErr: ErrInvalidFence,
		},
		{
			name:    "invalid image style",
			article: &Article{Title: "T"},
			opts:    func(o *Options) { o.ImageStyle = "png" },
			wantErr: ErrInvalidImageStyle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestConverter(t)
			o := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&o)
			}
			_, err := c.Convert(context.Background(), tt.article, o)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvert_TransduceTimeout(t *testing.T) {
	t.Parallel()

	calls := 0
	slowClock := func() time.Time {
		calls++
		if calls > 1 {
			time.Sleep(200 * time.Millisecond)
		}
		return fixedNow
	}
	log, _ := test.NewNullLogger()
	c, err := NewConverter(WithLogger(log), WithClock(slowClock),
		WithTimeouts(Timeouts{Transduce: 10 * time.Millisecond}))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}

	a := &Article{Title: "T", Content: mustParse(t, "<p>x</p>")}
	_, err = c.Convert(context.Background(), a, DefaultOptions())
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Convert() error = %v, want %v", err, ErrTimeout)
	}
}

func TestConvert_LogsFinish(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	c, err := NewConverter(WithLogger(log), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}

	a := &Article{Title: "Logged", Content: mustParse(t, "<p>x</p>")}
	if _, err := c.Convert(context.Background(), a, DefaultOptions()); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	e := hook.LastEntry()
	if e == nil || e.Message != "conversion finished" {
		t.Fatalf("last log entry = %v, want conversion finished", e)
	}
	if e.Data["title"] != "Logged" {
		t.Errorf("title field = %v, want Logged", e.Data["title"])
	}
	if e.Data["imageCount"] != 0 {
		t.Errorf("imageCount field = %v, want 0", e.Data["imageCount"])
	}
}

// ---------------------------------------------------------------------------
// TestConvert_Images - Download and materialization
// ---------------------------------------------------------------------------

func TestConvert_Images(t *testing.T) {
	t.Parallel()

	const content = `<p><img src="https://example.com/a.png" alt="A"><img src="https://example.com/photo" alt="B"></p>`
	images := map[string]*imagefetch.Image{
		"https://example.com/a.png": {Data: []byte("png"), MIME: "image/png"},
		"https://example.com/photo": {Data: []byte("jpg"), MIME: "image/jpeg"},
	}

	tests := []struct {
		name      string
		opts      func(*Options)
		wantMD    string
		wantNames []string
		wantCalls int
	}{
		{
			name:      "downloads api materializes into the store",
			opts:      func(o *Options) {},
			wantMD:    "![A](My%20Page/a.png)![B](My%20Page/photo.jpg)",
			wantNames: []string{"My Page/a.png", "My Page/photo.jpg"},
			wantCalls: 2,
		},
		{
			name:      "content link keeps sources in the manifest",
			opts:      func(o *Options) { o.DownloadMode = DownloadModeContentLink },
			wantMD:    "![A](My%20Page/a.png)![B](My%20Page/photo.idunno)",
			wantNames: []string{"My Page/a.png", "My Page/photo.idunno"},
			wantCalls: 0,
		},
		{
			name:      "base64 inlines data",
			opts:      func(o *Options) { o.ImageStyle = ImageStyleBase64 },
			wantMD:    "![A](data:image/png;base64,cG5n)![B](data:image/jpeg;base64,anBn)",
			wantNames: nil,
			wantCalls: 2,
		},
		{
			name:      "obsidian no folder",
			opts:      func(o *Options) { o.ImageStyle = ImageStyleObsidianNoFolder },
			wantMD:    "![[a.png]]![[photo.jpg]]",
			wantNames: []string{"My Page/a.png", "My Page/photo.jpg"},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &mockFetcher{images: images}
			c := newTestConverter(t, WithFetcher(f))
			o := DefaultOptions()
			o.DownloadImages = true
			tt.opts(&o)

			a := &Article{Title: "My Page", Content: mustParse(t, content)}
			got, err := c.Convert(context.Background(), a, o)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantMD, got.Markdown); diff != "" {
				t.Errorf("Markdown mismatch (-want +got):\n%s", diff)
			}

			var names []string
			for _, name := range got.Images {
				names = append(names, name)
			}
			if diff := cmp.Diff(tt.wantNames, names, cmpopts.SortSlices(func(a, b string) bool { return a < b }), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("manifest names mismatch (-want +got):\n%s", diff)
			}
			if len(f.calls) != tt.wantCalls {
				t.Errorf("fetch calls = %d, want %d", len(f.calls), tt.wantCalls)
			}
		})
	}
}

func TestConvert_ImageHandlesResolve(t *testing.T) {
	t.Parallel()

	f := &mockFetcher{images: map[string]*imagefetch.Image{
		"https://example.com/a.png": {Data: []byte("png"), MIME: "image/png"},
	}}
	c := newTestConverter(t, WithFetcher(f))
	o := DefaultOptions()
	o.DownloadImages = true

	a := &Article{Title: "T", Content: mustParse(t, `<img src="https://example.com/a.png">`)}
	got, err := c.Convert(context.Background(), a, o)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	for handle := range got.Images {
		if !imagefetch.IsHandle(handle) {
			t.Errorf("manifest key %q is not a blob handle", handle)
		}
		img, ok := c.Store().Get(handle)
		if !ok {
			t.Fatalf("Store().Get(%q) not found", handle)
		}
		if string(img.Data) != "png" {
			t.Errorf("stored data = %q, want %q", img.Data, "png")
		}
	}
}

func TestConvert_ImageFetchFailure(t *testing.T) {
	t.Parallel()

	f := &mockFetcher{images: map[string]*imagefetch.Image{}}
	c := newTestConverter(t, WithFetcher(f))
	o := DefaultOptions()
	o.DownloadImages = true

	a := &Article{Title: "T", Content: mustParse(t, `<img src="https://example.com/missing.png">`)}
	_, err := c.Convert(context.Background(), a, o)
	if !errors.Is(err, ErrImageFetch) {
		t.Fatalf("Convert() error = %v, want %v", err, ErrImageFetch)
	}
	if !strings.Contains(err.Error(), "https://example.com/missing.png") {
		t.Errorf("error %q does not name the source", err)
	}
	if c.Store().Len() != 0 {
		t.Errorf("store holds %d images after failure, want 0", c.Store().Len())
	}
}

// ---------------------------------------------------------------------------
// TestTransduce - Direct transduction
// ---------------------------------------------------------------------------

func TestTransduce_RecoversPanic(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	c, err := NewConverter(WithLogger(log), WithClock(func() time.Time { panic("clock stopped") }))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}

	got, err := c.Transduce(context.Background(), mustParse(t, "<p>x</p>"), DefaultOptions(), &Article{})
	if err != nil {
		t.Fatalf("Transduce() error = %v, want nil", err)
	}
	if got.Markdown != "Error processing content: clock stopped" {
		t.Errorf("Markdown = %q", got.Markdown)
	}
	if len(got.Images) != 0 {
		t.Errorf("Images = %v, want empty", got.Images)
	}
	if e := hook.LastEntry(); e == nil || e.Message != "transduction failed" {
		t.Errorf("last log entry = %v, want transduction failed", e)
	}
}

func TestTransduce_CanceledContext(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Transduce(ctx, mustParse(t, "<p>x</p>"), DefaultOptions(), &Article{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Transduce() error = %v, want context.Canceled", err)
	}
}

func TestMaterialize_EmptyManifest(t *testing.T) {
	t.Parallel()

	f := &mockFetcher{}
	c := newTestConverter(t, WithFetcher(f))

	got, err := c.Materialize(context.Background(), &Result{Markdown: "x"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if got.Markdown != "x" || len(got.Images) != 0 {
		t.Errorf("Materialize() = %+v, want unchanged markdown and empty manifest", got)
	}
	if len(f.calls) != 0 {
		t.Errorf("fetch calls = %d, want 0", len(f.calls))
	}
}

// ---------------------------------------------------------------------------
// TestParse - Sandbox and parser collaboration
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		req         ParseRequest
		wantContent string
		wantTabURL  string
	}{
		{
			name:        "article content",
			req:         ParseRequest{Document: "<p>doc</p>", URL: "https://example.com/"},
			wantContent: "doc",
		},
		{
			name: "selection replaces content",
			req: ParseRequest{
				Document:      "<p>doc</p>",
				URL:           "https://example.com/",
				Selection:     "<p><strong>picked</strong></p>",
				SelectionOnly: true,
			},
			wantContent: "**picked**",
		},
		{
			name: "selection ignored unless requested",
			req: ParseRequest{
				Document:  "<p>doc</p>",
				Selection: "<p>picked</p>",
			},
			wantContent: "doc",
		},
		{
			name:        "tab URL injected",
			req:         ParseRequest{Document: "<p>doc</p>", TabURL: "https://example.com/tab"},
			wantContent: "doc",
			wantTabURL:  "https://example.com/tab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sb := &mockSandbox{transform: func(s string) string { return "<!-- rendered -->" + s }}
			p := &mockParser{article: &Article{Title: "T", Content: mustParse(t, "<p>doc</p>")}}
			c := newTestConverter(t, WithSandbox(sb), WithParser(p))

			a, err := c.Parse(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !strings.HasPrefix(p.document, "<!-- rendered -->") {
				t.Errorf("parser received %q, want sandbox output", p.document)
			}
			if p.url != tt.req.URL {
				t.Errorf("parser URL = %q, want %q", p.url, tt.req.URL)
			}
			if a.TabURL != tt.wantTabURL {
				t.Errorf("TabURL = %q, want %q", a.TabURL, tt.wantTabURL)
			}

			res, err := c.Convert(context.Background(), a, DefaultOptions())
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if res.Markdown != tt.wantContent {
				t.Errorf("Markdown = %q, want %q", res.Markdown, tt.wantContent)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	errParser := errors.New("parser exploded")

	tests := []struct {
		name    string
		sandbox *mockSandbox
		parser  *mockParser
		wantErr error
	}{
		{
			name:    "sandbox start failure",
			sandbox: &mockSandbox{failStarts: 1},
			parser:  &mockParser{article: &Article{}},
			wantErr: errStart,
		},
		{
			name:    "parser failure",
			sandbox: &mockSandbox{},
			parser:  &mockParser{err: errParser},
			wantErr: errParser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestConverter(t, WithSandbox(tt.sandbox), WithParser(tt.parser))
			_, err := c.Parse(context.Background(), ParseRequest{Document: "<p>x</p>"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	sb := &mockSandbox{}
	p := &mockParser{article: &Article{Content: mustParse(t, "<p>x</p>")}}
	c, err := NewConverter(WithSandbox(sb), WithParser(p))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if _, err := c.Parse(context.Background(), ParseRequest{Document: "<p>x</p>"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := sb.closes.Load(); got != 1 {
		t.Errorf("sandbox closed %d times, want 1", got)
	}
}
