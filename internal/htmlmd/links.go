package htmlmd

import (
	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/alnah/go-markclip/internal/pipeline"
	"golang.org/x/net/html"
)

// link normalizes hrefs for LLM output and strips links when asked to.
// Kept links are written by the CommonMark renderer.
func (t *transducer) link(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	href := attr(n, "href")
	if dom.NodeName(n) != "a" || href == "" {
		return converter.RenderTryNext
	}
	if t.opts.LLMOptimized {
		setAttr(n, "href", pipeline.NormalizeURL(href, t.opts.BaseURI))
	}
	if t.opts.LinkStyle != LinkStyleStrip {
		return converter.RenderTryNext
	}
	ctx.RenderChildNodes(ctx, w, n)
	return converter.RenderSuccess
}
