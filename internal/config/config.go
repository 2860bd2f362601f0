package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-markclip/internal/fileutil"
	"github.com/alnah/go-markclip/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTemplateLength = 10000 // Front or back matter template
	MaxPatternLength  = 500   // Title, folder and prefix templates
	MaxCharsLength    = 100   // Disallowed character set
	MaxPathLength     = 4096  // Directory paths
	MaxNameLength     = 100   // Asset names
	MaxWorkers        = 8     // Converter pool cap
)

// Config holds all configuration for a clipping session.
type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Markdown  MarkdownConfig  `yaml:"markdown"`
	Images    ImagesConfig    `yaml:"images"`
	Output    OutputConfig    `yaml:"output"`
	Preview   PreviewConfig   `yaml:"preview"`
	Assets    AssetsConfig    `yaml:"assets"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
	Workers   int             `yaml:"workers"` // 0 = auto
}

// TemplatesConfig defines the text written around each document.
type TemplatesConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Set             string `yaml:"set"`         // Template set name (empty = built-in frontmatter)
	Frontmatter     string `yaml:"frontmatter"` // Overrides the set's frontmatter
	Backmatter      string `yaml:"backmatter"`  // Overrides the set's backmatter
	Title           string `yaml:"title"`       // File name template (default: {pageTitle})
	DisallowedChars string `yaml:"disallowedChars"`
	LLMOptimized    bool   `yaml:"llmOptimized"`
}

// MarkdownConfig defines the Markdown flavour.
type MarkdownConfig struct {
	HeadingStyle     string `yaml:"headingStyle"`   // "atx", "setext"
	CodeBlockStyle   string `yaml:"codeBlockStyle"` // "fenced", "indented"
	Fence            string `yaml:"fence"`          // "```" or "~~~"
	LinkStyle        string `yaml:"linkStyle"`      // "inline", "stripLinks"
	BulletListMarker string `yaml:"bulletListMarker"`
	EmDelimiter      string `yaml:"emDelimiter"`
	StrongDelimiter  string `yaml:"strongDelimiter"`
	HR               string `yaml:"hr"`
	Escape           *bool  `yaml:"escape"` // nil = true
	TOC              bool   `yaml:"toc"`
}

// ImagesConfig defines image handling.
type ImagesConfig struct {
	Download       bool    `yaml:"download"`
	Mode           string  `yaml:"mode"`     // "downloadsApi", "contentLink"
	Style          string  `yaml:"style"`    // "markdown", "obsidian", "obsidian-nofolder", "base64", "originalSource", "noImage"
	RefStyle       string  `yaml:"refStyle"` // "inline", "referenced"
	Prefix         string  `yaml:"prefix"`   // Image path template (default: {pageTitle}/)
	Folder         string  `yaml:"folder"`   // Download folder template
	ObsidianFolder string  `yaml:"obsidianFolder"`
	RateLimit      float64 `yaml:"rateLimit"` // Requests per second, 0 = unlimited
	Concurrency    int     `yaml:"concurrency"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = current directory
}

// PreviewConfig defines the optional HTML preview.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"` // Stylesheet name or path (empty = default)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// SandboxConfig defines the headless browser used to render documents.
type SandboxConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TimeoutsConfig bounds each stage. Values are Go durations such as "30s".
type TimeoutsConfig struct {
	Parse       string `yaml:"parse"`
	Transduce   string `yaml:"transduce"`
	Predownload string `yaml:"predownload"`
	Download    string `yaml:"download"`
}

// Durations parses every timeout. Empty values are zero.
func (t TimeoutsConfig) Durations() (parse, transduce, predownload, download time.Duration, err error) {
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"timeouts.parse", t.Parse, &parse},
		{"timeouts.transduce", t.Transduce, &transduce},
		{"timeouts.predownload", t.Predownload, &predownload},
		{"timeouts.download", t.Download, &download},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, perr := time.ParseDuration(f.value)
		if perr != nil || d <= 0 {
			return 0, 0, 0, 0, fmt.Errorf("%w: %s: %q (must be a positive duration)", ErrInvalidValue, f.name, f.value)
		}
		*f.dst = d
	}
	return parse, transduce, predownload, download, nil
}

// Validate checks field lengths and enumerated values. Enumerations are
// checked again, with the library's sentinels, when options are built.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	lengths := []struct {
		name  string
		value string
		max   int
	}{
		{"templates.frontmatter", c.Templates.Frontmatter, MaxTemplateLength},
		{"templates.backmatter", c.Templates.Backmatter, MaxTemplateLength},
		{"templates.title", c.Templates.Title, MaxPatternLength},
		{"templates.set", c.Templates.Set, MaxNameLength},
		{"templates.disallowedChars", c.Templates.DisallowedChars, MaxCharsLength},
		{"images.prefix", c.Images.Prefix, MaxPatternLength},
		{"images.folder", c.Images.Folder, MaxPatternLength},
		{"images.obsidianFolder", c.Images.ObsidianFolder, MaxPatternLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"preview.style", c.Preview.Style, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, f := range lengths {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}
	if c.Images.RateLimit < 0 {
		return fmt.Errorf("%w: images.rateLimit: must be >= 0, got %g", ErrInvalidValue, c.Images.RateLimit)
	}
	if c.Images.Concurrency < 0 {
		return fmt.Errorf("%w: images.concurrency: must be >= 0, got %d", ErrInvalidValue, c.Images.Concurrency)
	}
	if _, _, _, _, err := c.Timeouts.Durations(); err != nil {
		return err
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that leaves every option to the
// library defaults.
func DefaultConfig() *Config {
	return &Config{
		Templates: TemplatesConfig{Enabled: false},
		Images:    ImagesConfig{Download: false},
		Preview:   PreviewConfig{Enabled: false},
		Sandbox:   SandboxConfig{Enabled: false},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, $XDG_CONFIG_HOME/go-markclip/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-markclip", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
