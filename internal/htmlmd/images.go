package htmlmd

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/alnah/go-markclip/internal/pipeline"
	"github.com/alnah/go-markclip/internal/sanitize"
	"golang.org/x/net/html"
)

var attributeBreaks = regexp.MustCompile(`(\n+\s*)+`)

// cleanAttribute folds runs of line breaks in an attribute into one.
func cleanAttribute(s string) string {
	return attributeBreaks.ReplaceAllString(s, "\n")
}

func quotedTitle(title string) string {
	title = cleanAttribute(title)
	if title == "" {
		return ""
	}
	return ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

func (t *transducer) image(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if dom.NodeName(n) != "img" || attr(n, "src") == "" {
		return converter.RenderTryNext
	}
	w.WriteString(t.imageMarkdown(n))
	return converter.RenderSuccess
}

func (t *transducer) imageMarkdown(n *html.Node) string {
	src := attr(n, "src")
	if t.opts.LLMOptimized {
		src = pipeline.NormalizeURL(src, t.opts.BaseURI)
		setAttr(n, "src", src)
	}

	if t.opts.DownloadImages {
		name := t.images.assign(src, imageFilename(src, t.opts.ImagePrefix, t.opts.DisallowedChars))
		if t.opts.ImageStyle != ImageStyleOriginalSource && t.opts.ImageStyle != ImageStyleBase64 {
			src = LocalReference(t.opts.ImageStyle, name)
			setAttr(n, "src", src)
		}
	}

	switch {
	case t.opts.ImageStyle == ImageStyleNone:
		return ""
	case t.opts.ImageStyle.IsObsidian():
		return "![[" + src + "]]"
	}

	alt := cleanAttribute(attr(n, "alt"))
	title := quotedTitle(attr(n, "title"))
	if t.opts.ImageRefStyle == ImageRefReferenced {
		id := "fig" + strconv.Itoa(len(t.refs)+1)
		t.refs = append(t.refs, "["+id+"]: "+src+title)
		return "![" + alt + "][" + id + "]"
	}
	return "![" + alt + "](" + src + title + ")"
}

// LocalReference is how a downloaded image named name is referenced from
// Markdown written in the given style. Wiki embeds take raw names, and the
// no-folder variant drops the directory; links are URI-encoded per segment.
func LocalReference(style ImageStyle, name string) string {
	switch {
	case style == ImageStyleObsidianNoFolder:
		return name[strings.LastIndex(name, "/")+1:]
	case style.IsObsidian():
		return name
	default:
		segments := strings.Split(name, "/")
		for i, s := range segments {
			segments[i] = pipeline.EncodeURI(s)
		}
		return strings.Join(segments, "/")
	}
}

// imageFilename derives the local filename for an image source: the last
// path segment without query or fragment, or image.<subtype> for data
// URIs. Names without an extension get UnknownExtension.
func imageFilename(src, prefix, disallowed string) string {
	var name string
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		mime, _, _ := strings.Cut(rest, ",")
		mime, _, _ = strings.Cut(mime, ";")
		_, subtype, _ := strings.Cut(mime, "/")
		name = "image." + subtype
		if subtype == "" {
			name = "image"
		}
	} else {
		path := src
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		name = path[strings.LastIndex(path, "/")+1:]
	}
	if name == "" {
		name = "image"
	}
	if strings.LastIndex(name, ".") <= 0 {
		name += UnknownExtension
	}
	return prefix + sanitize.Name(name, disallowed)
}

// manifest assigns each image source a filename no other source owns.
type manifest struct {
	bySrc map[string]string
	owner map[string]string
}

func newManifest() *manifest {
	return &manifest{bySrc: map[string]string{}, owner: map[string]string{}}
}

// assign returns the filename for src, numbering the candidate when a
// different source already holds it: a.png, a.1.png, a.2.png.
func (m *manifest) assign(src, candidate string) string {
	name := candidate
	for i := 1; ; i++ {
		holder, taken := m.owner[name]
		if !taken || holder == src {
			break
		}
		name = numbered(candidate, i)
	}
	if old, ok := m.bySrc[src]; ok && old != name {
		delete(m.owner, old)
	}
	m.bySrc[src] = name
	m.owner[name] = src
	return name
}

func numbered(name string, i int) string {
	dir, base := "", name
	if slash := strings.LastIndex(name, "/"); slash >= 0 {
		dir, base = name[:slash+1], name[slash+1:]
	}
	n := strconv.Itoa(i)
	if dot := strings.LastIndex(base, "."); dot > 0 {
		return dir + base[:dot] + "." + n + base[dot:]
	}
	return dir + base + "." + n
}

func (m *manifest) entries() map[string]string {
	out := make(map[string]string, len(m.bySrc))
	for src, name := range m.bySrc {
		out[src] = name
	}
	return out
}
