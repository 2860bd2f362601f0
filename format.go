package markclip

import (
	"strings"
	"time"

	"github.com/alnah/go-markclip/internal/dateutil"
	"github.com/alnah/go-markclip/internal/pipeline"
	"github.com/alnah/go-markclip/internal/placeholder"
	"github.com/alnah/go-markclip/internal/sanitize"
)

// Sanitize returns a filesystem-safe name. Characters in disallowed are
// removed on top of the fixed illegal set.
func Sanitize(name, disallowed string) string {
	return sanitize.Name(name, disallowed)
}

// Expand replaces {placeholders} in template with article metadata.
// Field values are sanitized when disallowed is non-nil.
func Expand(template string, a *Article, disallowed *string) string {
	return expandAt(template, a, disallowed, time.Now())
}

func expandAt(template string, a *Article, disallowed *string, now time.Time) string {
	if a == nil {
		a = &Article{}
	}
	return placeholder.Expand(template, placeholder.Values{
		Fields:   a.fields(),
		Keywords: a.Keywords,
		Now:      now,
	}, disallowed)
}

// TOC returns a linked table of contents for markdown, or "" when it has
// no headings.
func TOC(markdown string) string {
	return pipeline.GenerateTOC(markdown)
}

// FormatTitle expands the title template into a relative file path
// without extension. Template slashes create folders; slashes inside
// field values are removed.
func FormatTitle(a *Article, o Options) string {
	return formatTitleAt(a, o, time.Now())
}

func formatTitleAt(a *Article, o Options, now time.Time) string {
	disallowed := o.DisallowedChars + "/"
	title := expandAt(o.Title, a.withTitleDefaults(), &disallowed, now)
	return sanitize.Path(title, o.DisallowedChars)
}

// FormatMdClipsFolder expands the download folder template. It is empty
// unless files are written by the deliverer.
func FormatMdClipsFolder(a *Article, o Options) string {
	if o.DownloadMode != DownloadModeDownloadsAPI {
		return ""
	}
	return formatFolder(o.MdClipsFolder, a, o, time.Now())
}

// FormatObsidianFolder expands the Obsidian folder template.
func FormatObsidianFolder(a *Article, o Options) string {
	return formatFolder(o.ObsidianFolder, a, o, time.Now())
}

func formatFolder(template string, a *Article, o Options, now time.Time) string {
	folder := expandAt(template, a.withTitleDefaults(), &o.DisallowedChars, now)
	return sanitize.Folder(folder, o.DisallowedChars)
}

// imagePrefix expands the image prefix template, sanitized per segment.
func imagePrefix(a *Article, o Options, now time.Time) string {
	prefix := expandAt(o.ImagePrefix, a, &o.DisallowedChars, now)
	return sanitize.Path(prefix, o.DisallowedChars)
}

// matter returns the text placed before and after the converted body.
func matter(a *Article, o Options, now time.Time) (front, back string) {
	switch {
	case o.LLMOptimized:
		return llmFrontmatter(a, now), ""
	case o.IncludeTemplate:
		return expandAt(o.Frontmatter, a, nil, now) + "\n", "\n" + expandAt(o.Backmatter, a, nil, now)
	default:
		return "", ""
	}
}

// llmFrontmatter is a fixed YAML header for documents fed to language
// models.
func llmFrontmatter(a *Article, now time.Time) string {
	title := firstNonEmpty(a.Title, Untitled)
	source := firstNonEmpty(a.TabURL, a.URL, a.BaseURI)
	author := firstNonEmpty(a.Byline, "Unknown")
	excerpt := strings.ReplaceAll(a.Excerpt, `"`, `\"`)

	tags := make([]string, len(a.Keywords))
	for i, k := range a.Keywords {
		tags[i] = `"` + strings.TrimSpace(k) + `"`
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString(`title: "` + title + "\"\n")
	b.WriteString(`url: "` + source + "\"\n")
	b.WriteString(`date: "` + dateutil.ISO(now) + "\"\n")
	b.WriteString(`author: "` + author + "\"\n")
	b.WriteString(`excerpt: "` + excerpt + "\"\n")
	b.WriteString("tags: [" + strings.Join(tags, ", ") + "]\n")
	b.WriteString("---\n\n")
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
