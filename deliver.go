package markclip

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-markclip/internal/fileutil"
	"github.com/alnah/go-markclip/internal/imagefetch"
	"github.com/alnah/go-markclip/internal/sanitize"
)

// Deliverer persists a converted document and its images.
type Deliverer interface {
	// Deliver writes r and returns the location of the Markdown file.
	Deliver(ctx context.Context, a *Article, r *Result, o Options) (string, error)
}

// FileDeliverer writes documents under Root. The Markdown file goes to
// folder + title + ".md" and images go next to it, in the title's folder.
type FileDeliverer struct {
	Root string
	// Store resolves blob handles left by materialization.
	Store *imagefetch.Store
	// Fetcher downloads sources that were not materialized.
	Fetcher imagefetch.Fetcher
}

// NewFileDeliverer returns a FileDeliverer writing under root that resolves
// images through c's blob store and fetcher.
func (c *Converter) NewFileDeliverer(root string) *FileDeliverer {
	return &FileDeliverer{Root: root, Store: c.store, Fetcher: c.fetcher}
}

// Deliver implements Deliverer.
func (d *FileDeliverer) Deliver(ctx context.Context, a *Article, r *Result, o Options) (string, error) {
	title := FormatTitle(a, o)
	folder := FormatMdClipsFolder(a, o)

	name := folder + title + ".md"
	if path.Base(name) == ".md" || strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	mdPath, err := d.resolve(name)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFile(mdPath, []byte(r.Markdown)); err != nil {
		return "", err
	}

	imageDir := folder
	if dir := path.Dir(title); dir != "." {
		imageDir += dir + "/"
	}
	if err := d.writeImages(ctx, imageDir, r.Images, o); err != nil {
		return "", err
	}
	return mdPath, nil
}

func (d *FileDeliverer) writeImages(ctx context.Context, dir string, images ImageManifest, o Options) error {
	keys := make([]string, 0, len(images))
	for k := range images {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := d.load(ctx, key)
		if err != nil {
			return err
		}

		dest, err := d.resolve(dir + sanitize.Path(images[key], o.DisallowedChars))
		if err != nil {
			return err
		}
		if err := fileutil.WriteFile(dest, img.Data); err != nil {
			return err
		}
		if d.Store != nil && imagefetch.IsHandle(key) {
			d.Store.Release(key)
		}
	}
	return nil
}

// load returns the bytes behind a manifest key, either a blob handle or
// an image source.
func (d *FileDeliverer) load(ctx context.Context, key string) (*imagefetch.Image, error) {
	if imagefetch.IsHandle(key) {
		if d.Store == nil {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, key)
		}
		img, ok := d.Store.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, key)
		}
		return img, nil
	}

	if d.Fetcher == nil {
		return nil, fmt.Errorf("%w: %s: no fetcher configured", ErrImageFetch, key)
	}
	img, err := d.Fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageFetch, key, err)
	}
	return img, nil
}

// resolve maps a slash-separated relative name to a path under Root.
func (d *FileDeliverer) resolve(name string) (string, error) {
	root, err := filepath.Abs(d.Root)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}

	p := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(name, "/")))
	if !strings.HasPrefix(p, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes output directory", ErrInvalidFilename, name)
	}
	return p, nil
}
