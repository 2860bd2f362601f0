package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-markclip/internal/config"
	"github.com/sirupsen/logrus"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // MARKCLIP_CONFIG: config file name or path
	OutputDir  string        // MARKCLIP_OUTPUT_DIR: default output directory
	Timeout    time.Duration // MARKCLIP_TIMEOUT: per-stage timeout

	// Tier 2 - Conversion
	TemplateSet string // MARKCLIP_TEMPLATE: template set name
	ImageStyle  string // MARKCLIP_IMAGE_STYLE: image style
	AssetPath   string // MARKCLIP_ASSET_PATH: custom asset directory

	// Tier 3 - Resources
	Workers   int     // MARKCLIP_WORKERS: parallel workers
	RateLimit float64 // MARKCLIP_RATE_LIMIT: image requests per second
}

// knownEnvVars lists valid MARKCLIP_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"MARKCLIP_CONFIG":     true,
	"MARKCLIP_OUTPUT_DIR": true,
	"MARKCLIP_TIMEOUT":    true,
	// Tier 2 - Conversion
	"MARKCLIP_TEMPLATE":    true,
	"MARKCLIP_IMAGE_STYLE": true,
	"MARKCLIP_ASSET_PATH":  true,
	// Tier 3 - Resources
	"MARKCLIP_WORKERS":    true,
	"MARKCLIP_RATE_LIMIT": true,
	// Diagnostics
	"MARKCLIP_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("MARKCLIP_CONFIG"),
		OutputDir:   os.Getenv("MARKCLIP_OUTPUT_DIR"),
		TemplateSet: os.Getenv("MARKCLIP_TEMPLATE"),
		ImageStyle:  os.Getenv("MARKCLIP_IMAGE_STYLE"),
		AssetPath:   os.Getenv("MARKCLIP_ASSET_PATH"),
	}

	if timeout := os.Getenv("MARKCLIP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MARKCLIP_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if rate := os.Getenv("MARKCLIP_RATE_LIMIT"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil && r > 0 {
			cfg.RateLimit = r
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MARKCLIP_* variables.
// Helps catch typos like MARKCLIP_WORKER instead of MARKCLIP_WORKERS.
func warnUnknownEnvVars(log logrus.FieldLogger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "MARKCLIP_") {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			log.WithField("name", name).Warn("unknown environment variable (typo?)")
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Timeout > 0 {
		for _, field := range []*string{
			&cfg.Timeouts.Parse,
			&cfg.Timeouts.Transduce,
			&cfg.Timeouts.Predownload,
			&cfg.Timeouts.Download,
		} {
			if *field == "" {
				*field = env.Timeout.String()
			}
		}
	}

	// Template set (auto-enable)
	if env.TemplateSet != "" && cfg.Templates.Set == "" {
		cfg.Templates.Set = env.TemplateSet
		cfg.Templates.Enabled = true
	}
	if env.ImageStyle != "" && cfg.Images.Style == "" {
		cfg.Images.Style = env.ImageStyle
	}
	if env.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = env.AssetPath
	}

	if env.Workers > 0 && cfg.Workers == 0 {
		cfg.Workers = env.Workers
	}
	if env.RateLimit > 0 && cfg.Images.RateLimit == 0 {
		cfg.Images.RateLimit = env.RateLimit
	}
}
