package imagefetch

import "errors"

// Sentinel errors for image fetching.
var (
	ErrFetch             = errors.New("image fetch failed")
	ErrUnsupportedSource = errors.New("unsupported image source")
	ErrTooLarge          = errors.New("image exceeds size limit")
	ErrStatus            = errors.New("unexpected HTTP status")
)
