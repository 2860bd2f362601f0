package imagefetch

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

var imageExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// Extension maps an image media type to a file extension, defaulting to jpg.
func Extension(mimeType string) string {
	if ext, ok := imageExtensions[baseMediaType(mimeType)]; ok {
		return ext
	}
	return "jpg"
}

func baseMediaType(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// DataURI encodes img as a base64 data URI.
func DataURI(img *Image) string {
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// decodeDataURI parses a data: URI into an Image.
func decodeDataURI(src string) (*Image, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data URI", ErrUnsupportedSource)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URI without payload", ErrUnsupportedSource)
	}

	mediaType, isBase64 := header, false
	if m, found := strings.CutSuffix(header, ";base64"); found {
		mediaType, isBase64 = m, true
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		data = []byte(unescaped)
	}
	return &Image{Data: data, MIME: baseMediaType(mediaType)}, nil
}
