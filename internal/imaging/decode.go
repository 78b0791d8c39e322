package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// DecodeBase64 decodes a base64-encoded photo payload into an image.
//
// Parameters:
//   - data: Base64 string, with or without a "data:image/...;base64," prefix.
//     Standard and URL-safe alphabets are both accepted.
//
// Returns:
//   - image.Image: The decoded raster. The concrete type depends on the
//     container format (e.g. *image.NRGBA, *image.YCbCr).
//   - error: Non-nil if the payload is not valid base64 or not a decodable
//     PNG, JPEG, or GIF image.
//
// The returned image is never nil on success and is treated as immutable by
// every downstream stage.
func DecodeBase64(data string) (image.Image, error) {
	// Browser canvas exports prefix the payload with a data URL header.
	if idx := strings.Index(data, ","); idx >= 0 && strings.HasPrefix(data, "data:") {
		data = data[idx+1:]
	}
	data = strings.TrimSpace(data)

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 image data: %w", err)
		}
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}

// EncodePNGBase64 encodes an image as a base64 PNG string, the format the
// frontend renders annotated overlays from.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
