// Package assets provides preview styles and document templates.
// Assets can be loaded from embedded files or custom filesystem paths.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # Preview stylesheet
//	└── templates/
//	    └── {name}/
//	        ├── frontmatter.md   # Prepended to the document (required)
//	        └── backmatter.md    # Appended to the document (optional)
//
// Templates use {placeholder} syntax and are expanded per document.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
