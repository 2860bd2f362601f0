package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader reads preview styles and template sets from a user
// directory laid out like the embedded assets:
//
//	styles/<name>.css
//	templates/<name>/frontmatter.md
//	templates/<name>/backmatter.md (optional)
type FilesystemLoader struct {
	root string // absolute, symlinks resolved
}

// NewFilesystemLoader returns a loader rooted at dir.
// Returns ErrInvalidBasePath unless dir is a readable directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, root)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{root: root}, nil
}

// LoadStyle reads styles/<name>.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	path, err := f.locate("styles", name+".css")
	if err != nil {
		return "", err
	}
	css, err := read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return css, err
}

// LoadTemplateSet reads templates/<name>/. The frontmatter file is required.
func (f *FilesystemLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir, err := f.locate("templates", name)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}

	front, err := read(filepath.Join(dir, frontmatterFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrIncompleteTemplateSet, name)
	}
	if err != nil {
		return nil, err
	}

	back, err := read(filepath.Join(dir, backmatterFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &TemplateSet{Name: name, Frontmatter: front, Backmatter: back}, nil
}

// locate joins parts under the root and rejects results that leave it,
// following symlinks when the target exists.
func (f *FilesystemLoader) locate(parts ...string) (string, error) {
	path := filepath.Join(append([]string{f.root}, parts...)...)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if !strings.HasPrefix(path, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}
	return path, nil
}

// read returns the file content without its final newline. A missing file
// keeps fs.ErrNotExist in its chain; other failures wrap ErrAssetRead.
func read(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path checked by locate
	if errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrAssetRead, filepath.Base(path), err)
	}
	return trimFinalNewline(string(data)), nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
