package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// maxPictureBytes caps uploads at 5 MiB. Plenty for an avatar.
const maxPictureBytes = 5 << 20

// Validate checks that data is a decodable image in a supported format
// (jpeg, png, gif, or webp) and within the size cap. Returns the detected
// format name.
func Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}
	if len(data) > maxPictureBytes {
		return "", fmt.Errorf("image exceeds %d byte limit", maxPictureBytes)
	}

	// DecodeConfig reads only the header, so oversized dimensions or
	// malformed pixel data past the header are caught cheaply.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unsupported image format: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("image has invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return format, nil
}
