package markclip

import (
	"errors"

	"github.com/alnah/go-markclip/internal/bridge"
	"github.com/alnah/go-markclip/internal/imagefetch"
)

// Sentinel errors for library operations.
var (
	ErrNoContent      = errors.New("article has no content")
	ErrParse          = errors.New("document parsing failed")
	ErrInvalidTimeout = errors.New("invalid timeout")

	// Exchange failures.
	ErrTimeout   = bridge.ErrTimeout
	ErrTransport = bridge.ErrTransport

	// Image materialization failures.
	ErrImageFetch = imagefetch.ErrFetch

	// Rendering sandbox failures.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Options validation errors.
	ErrInvalidImageStyle     = errors.New("invalid image style")
	ErrInvalidImageRefStyle  = errors.New("invalid image reference style")
	ErrInvalidLinkStyle      = errors.New("invalid link style")
	ErrInvalidCodeBlockStyle = errors.New("invalid code block style")
	ErrInvalidHeadingStyle   = errors.New("invalid heading style")
	ErrInvalidDownloadMode   = errors.New("invalid download mode")
	ErrInvalidFence          = errors.New("invalid code fence")
	ErrInvalidBulletMarker   = errors.New("invalid bullet list marker")
	ErrInvalidDelimiter      = errors.New("invalid emphasis delimiter")
	ErrInvalidRule           = errors.New("invalid horizontal rule")

	// Delivery errors.
	ErrInvalidFilename = errors.New("invalid filename")
	ErrImageNotFound   = errors.New("image handle not found")
)
