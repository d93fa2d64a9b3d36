// internal/pkg/imaging/compress.go

// Package imaging re-encodes inbound photos to keep the asset store small.
// Compression is best-effort: callers always get bytes back, and never
// bytes larger than what they passed in.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension bounds the longest edge of a stored photo.
	MaxDimension = 1600
	// JPEGQuality is the re-encode quality for photographic content.
	JPEGQuality = 80
)

// Compress decodes, downscales and re-encodes raw image bytes as JPEG.
// Undecodable input, or a result larger than the input, yields the
// original bytes unchanged.
func Compress(data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	img = downscale(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return data
	}
	if buf.Len() >= len(data) {
		return data
	}
	return buf.Bytes()
}

// downscale resizes img so its longest edge is at most MaxDimension,
// preserving aspect ratio. Smaller images pass through.
func downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxDimension && h <= MaxDimension {
		return img
	}

	if w >= h {
		h = h * MaxDimension / w
		w = MaxDimension
	} else {
		w = w * MaxDimension / h
		h = MaxDimension
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
