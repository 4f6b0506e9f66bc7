// Package imaging reads image metadata with libvips.
package imaging

import (
	"fmt"

	"github.com/h2non/bimg"
)

// Dimensions returns the pixel width and height of an encoded image.
func Dimensions(data []byte) (int, int, error) {
	size, err := bimg.NewImage(data).Size()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image size: %w", err)
	}
	return size.Width, size.Height, nil
}
