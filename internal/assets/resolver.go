package assets

import "errors"

// AssetResolver looks assets up in a custom directory first and falls back
// to the embedded ones when the custom directory lacks them. Validation and
// read errors from the custom directory are returned as is.
type AssetResolver struct {
	custom   AssetLoader // nil without a custom directory
	embedded AssetLoader
}

// NewAssetResolver returns a resolver over the embedded assets, overridden
// by customDir when it is not empty.
func NewAssetResolver(customDir string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customDir == "" {
		return r, nil
	}

	custom, err := NewFilesystemLoader(customDir)
	if err != nil {
		return nil, err
	}
	r.custom = custom
	return r, nil
}

// LoadStyle returns the preview stylesheet called name.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return firstFound(r, AssetLoader.LoadStyle, name)
}

// LoadTemplateSet returns the template set called name.
func (r *AssetResolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	return firstFound(r, AssetLoader.LoadTemplateSet, name)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

func firstFound[T any](r *AssetResolver, load func(AssetLoader, string) (T, error), name string) (T, error) {
	if r.custom != nil {
		v, err := load(r.custom, name)
		if !isNotFound(err) {
			return v, err
		}
	}
	return load(r.embedded, name)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateSetNotFound)
}

var _ AssetLoader = (*AssetResolver)(nil)
