package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// EncodeFormat selects the output codec for WriteImage.
type EncodeFormat int

const (
	FormatPNG EncodeFormat = iota
	FormatJPEG
)

// FormatFromPath picks an EncodeFormat from a file's extension, the way
// the teacher's render command dispatches on *imgPath's suffix.
func FormatFromPath(path string) EncodeFormat {
	if strings.HasSuffix(path, ".jpg") || strings.HasSuffix(path, ".jpeg") {
		return FormatJPEG
	}
	return FormatPNG
}

// WriteImage encodes img to w in the given format.
func WriteImage(w io.Writer, img image.Image, format EncodeFormat) error {
	switch format {
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpeg.DefaultQuality})
	case FormatPNG:
		return png.Encode(w, img)
	default:
		return fmt.Errorf("render: unknown encode format %d", format)
	}
}
