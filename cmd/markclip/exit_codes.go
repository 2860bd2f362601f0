package main

import (
	"errors"
	"os"

	markclip "github.com/alnah/go-markclip"
	"github.com/alnah/go-markclip/internal/assets"
	"github.com/alnah/go-markclip/internal/config"
	"github.com/alnah/go-markclip/internal/hints"
)

// Exit codes for the markclip CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Rendering sandbox errors
	ExitNetwork = 5 // Image fetch failures and timeouts
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Sandbox errors (exit 4)
	if errors.Is(err, markclip.ErrBrowserConnect) ||
		errors.Is(err, markclip.ErrPageCreate) ||
		errors.Is(err, markclip.ErrPageLoad) {
		return ExitBrowser
	}

	// Network errors (exit 5)
	if errors.Is(err, markclip.ErrImageFetch) ||
		errors.Is(err, markclip.ErrTimeout) {
		return ExitNetwork
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadHTML) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, markclip.ErrInvalidImageStyle) ||
		errors.Is(err, markclip.ErrInvalidImageRefStyle) ||
		errors.Is(err, markclip.ErrInvalidLinkStyle) ||
		errors.Is(err, markclip.ErrInvalidCodeBlockStyle) ||
		errors.Is(err, markclip.ErrInvalidHeadingStyle) ||
		errors.Is(err, markclip.ErrInvalidDownloadMode) ||
		errors.Is(err, markclip.ErrInvalidFence) ||
		errors.Is(err, markclip.ErrInvalidBulletMarker) ||
		errors.Is(err, markclip.ErrInvalidDelimiter) ||
		errors.Is(err, markclip.ErrInvalidTimeout) ||
		errors.Is(err, markclip.ErrInvalidFilename) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateSetNotFound) ||
		errors.Is(err, assets.ErrIncompleteTemplateSet) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidExtension) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, markclip.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, markclip.ErrTimeout):
		return hints.ForTimeout()
	case errors.Is(err, markclip.ErrImageFetch):
		return hints.ForImageFetch()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, assets.ErrTemplateSetNotFound):
		return hints.ForTemplateSetNotFound(assets.TemplateSetNames())
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, ErrWriteOutput), errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
