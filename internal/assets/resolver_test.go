package assets

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses embedded only", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if resolver.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
	})

	t.Run("invalid custom path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_Fallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "styles", "default.css"), "custom")
	writeFile(t, filepath.Join(dir, "templates", "mine", "frontmatter.md"), "mine")

	resolver, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	t.Run("custom style overrides embedded", func(t *testing.T) {
		t.Parallel()

		got, err := resolver.LoadStyle(DefaultStyleName)
		if err != nil || got != "custom" {
			t.Errorf("LoadStyle() = %q, %v; want custom", got, err)
		}
	})

	t.Run("missing custom style falls back", func(t *testing.T) {
		t.Parallel()

		if _, err := resolver.LoadStyle("minimal"); err != nil {
			t.Errorf("LoadStyle(minimal) error = %v", err)
		}
	})

	t.Run("custom template set", func(t *testing.T) {
		t.Parallel()

		ts, err := resolver.LoadTemplateSet("mine")
		if err != nil || ts.Frontmatter != "mine" {
			t.Errorf("LoadTemplateSet(mine) = %+v, %v", ts, err)
		}
	})

	t.Run("embedded template set through fallback", func(t *testing.T) {
		t.Parallel()

		if _, err := resolver.LoadTemplateSet(DefaultTemplateSetName); err != nil {
			t.Errorf("LoadTemplateSet(default) error = %v", err)
		}
	})

	t.Run("validation errors do not fall back", func(t *testing.T) {
		t.Parallel()

		_, err := resolver.LoadStyle("../x")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple name", input: "obsidian"},
		{name: "name with hyphen", input: "my-set"},
		{name: "empty name", input: "", wantErr: ErrInvalidAssetName},
		{name: "forward slash", input: "a/b", wantErr: ErrInvalidAssetName},
		{name: "backslash", input: `a\b`, wantErr: ErrInvalidAssetName},
		{name: "dot", input: "a.css", wantErr: ErrInvalidAssetName},
		{name: "too long", input: string(make([]byte, MaxAssetNameLength+1)), wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ValidateAssetName(%q) error = %v", tt.input, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
