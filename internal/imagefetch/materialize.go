package imagefetch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alnah/go-markclip/internal/htmlmd"
	"golang.org/x/sync/errgroup"
)

// Options controls how fetched images are written back.
type Options struct {
	// Style decides between data-URI inlining and local references.
	Style htmlmd.ImageStyle
	// Concurrency caps parallel fetches; zero means unlimited.
	Concurrency int
}

// Materialize fetches every source in manifest and rewrites markdown.
//
// With the base64 style each source string is replaced by a data URI and
// the returned manifest is empty. Otherwise each image is stored behind a
// handle in store, names with htmlmd.UnknownExtension get the extension
// of the fetched media type, and the returned manifest maps handle to
// final filename. No rewrite happens unless every fetch succeeds.
func Materialize(ctx context.Context, f Fetcher, store *Store, manifest map[string]string, markdown string, opts Options) (map[string]string, string, error) {
	srcs := make([]string, 0, len(manifest))
	for src := range manifest {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)

	images := make([]*Image, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, src := range srcs {
		g.Go(func() error {
			img, err := f.Fetch(gctx, src)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrFetch, src, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, markdown, err
	}

	out := make(map[string]string, len(srcs))
	rewrites := make(map[string]string, len(srcs))
	if opts.Style == htmlmd.ImageStyleBase64 {
		for i, src := range srcs {
			rewrites[src] = DataURI(images[i])
		}
		return out, replaceLongestFirst(markdown, rewrites), nil
	}

	for i, src := range srcs {
		name := manifest[src]
		if base, ok := strings.CutSuffix(name, htmlmd.UnknownExtension); ok {
			fixed := base + "." + Extension(images[i].MIME)
			rewrites[htmlmd.LocalReference(opts.Style, name)] = htmlmd.LocalReference(opts.Style, fixed)
			name = fixed
		}
		out[store.Put(images[i])] = name
	}
	return out, replaceLongestFirst(markdown, rewrites), nil
}

// replaceLongestFirst applies every rewrite in one pass. Longer keys are
// tried first at each position, so a key that prefixes another never
// splits it.
func replaceLongestFirst(s string, rewrites map[string]string) string {
	if len(rewrites) == 0 {
		return s
	}
	keys := make([]string, 0, len(rewrites))
	for k := range rewrites {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, rewrites[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
