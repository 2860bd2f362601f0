package markclip

import (
	"strings"
	"testing"
)

func TestFormatTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		article *Article
		opts    func(*Options)
		want    string
	}{
		{
			name:    "page title sanitized",
			article: &Article{Title: "Hello: World?"},
			want:    "Hello World",
		},
		{
			name:    "slashes in values are removed",
			article: &Article{Title: "A/B", BaseURI: "https://example.com/post"},
			opts:    func(o *Options) { o.Title = "{hostname}/{title}" },
			want:    "example.com/AB",
		},
		{
			name:    "disallowed characters removed",
			article: &Article{Title: "[Draft] #1"},
			want:    "Draft 1",
		},
		{
			name:    "site name when untitled",
			article: &Article{SiteName: "Site"},
			want:    "Site",
		},
		{
			name:    "untitled fallback",
			article: &Article{},
			want:    Untitled,
		},
		{
			name:    "date folder",
			article: &Article{Title: "T"},
			opts:    func(o *Options) { o.Title = "{date:YYYY}/{title}" },
			want:    "2024/T",
		},
		{
			name:    "braces carried in by the title removed",
			article: &Article{Title: "C: {y} notes"},
			want:    "C notes",
		},
		{
			name:    "case transform",
			article: &Article{Title: "Hello World"},
			opts:    func(o *Options) { o.Title = "{title:kebab}" },
			want:    "hello-world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&o)
			}
			if got := formatTitleAt(tt.article, o, fixedNow); got != tt.want {
				t.Errorf("FormatTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatMdClipsFolder(t *testing.T) {
	t.Parallel()

	a := &Article{Title: "T", BaseURI: "https://example.com/post"}

	tests := []struct {
		name string
		opts func(*Options)
		want string
	}{
		{
			name: "empty template",
			want: "",
		},
		{
			name: "expanded with trailing slash",
			opts: func(o *Options) { o.MdClipsFolder = "Clips/{hostname}" },
			want: "Clips/example.com/",
		},
		{
			name: "trailing slash kept",
			opts: func(o *Options) { o.MdClipsFolder = "Clips/" },
			want: "Clips/",
		},
		{
			name: "content link has no folder",
			opts: func(o *Options) {
				o.MdClipsFolder = "Clips"
				o.DownloadMode = DownloadModeContentLink
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&o)
			}
			if got := FormatMdClipsFolder(a, o); got != tt.want {
				t.Errorf("FormatMdClipsFolder() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatObsidianFolder(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.ObsidianFolder = "Vault/{title}"

	got := FormatObsidianFolder(&Article{Title: "Notes: Go"}, o)
	if got != "Vault/Notes Go/" {
		t.Errorf("FormatObsidianFolder() = %q, want %q", got, "Vault/Notes Go/")
	}
}

func TestImagePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		article  *Article
		want     string
	}{
		{
			name:     "default prefix",
			template: "{pageTitle}/",
			article:  &Article{PageTitle: "A: B"},
			want:     "A B/",
		},
		{
			name:     "empty prefix",
			template: "",
			article:  &Article{PageTitle: "A"},
			want:     "",
		},
		{
			name:     "nested prefix",
			template: "assets/{pageTitle}/",
			article:  &Article{PageTitle: "A"},
			want:     "assets/A/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := DefaultOptions()
			o.ImagePrefix = tt.template
			if got := imagePrefix(tt.article, o, fixedNow); got != tt.want {
				t.Errorf("imagePrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	a := &Article{Title: "a/b", Keywords: []string{"x", "y"}}
	empty := ""

	tests := []struct {
		name       string
		template   string
		disallowed *string
		want       string
	}{
		{"raw value", "{title}", nil, "a/b"},
		{"sanitized value", "{title}", &empty, "ab"},
		{"keywords default separator", "{keywords}", nil, "x,y"},
		{"keywords custom separator", "{keywords: | }", nil, "x | y"},
		{"unknown field removed", "[{nope}]", nil, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Expand(tt.template, a, tt.disallowed); got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestExpand_NilArticle(t *testing.T) {
	t.Parallel()

	if got := Expand("x{title}y", nil, nil); got != "xy" {
		t.Errorf("Expand() = %q, want %q", got, "xy")
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		disallowed string
		want       string
	}{
		{"illegal characters", `a:b*c?"d"`, "", "abcd"},
		{"extra disallowed", "[x]#y", "[]#", "xy"},
		{"empty", "", "", "untitled"},
		{"edge dots", "..name..", "", "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Sanitize(tt.in, tt.disallowed); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTOC(t *testing.T) {
	t.Parallel()

	if got := TOC("no headings"); got != "" {
		t.Errorf("TOC() = %q, want empty", got)
	}

	got := TOC("# A\n\n## B")
	for _, want := range []string{"- [A](#a)", "  - [B](#b)"} {
		if !strings.Contains(got, want) {
			t.Errorf("TOC() = %q, missing %q", got, want)
		}
	}
}

func TestLLMFrontmatter_Defaults(t *testing.T) {
	t.Parallel()

	got := llmFrontmatter(&Article{BaseURI: "https://example.com/"}, fixedNow)
	want := "---\n" +
		"title: \"Untitled\"\n" +
		"url: \"https://example.com/\"\n" +
		"date: \"2024-05-01T08:30:00.000Z\"\n" +
		"author: \"Unknown\"\n" +
		"excerpt: \"\"\n" +
		"tags: []\n" +
		"---\n\n"
	if got != want {
		t.Errorf("llmFrontmatter() = %q, want %q", got, want)
	}
}
