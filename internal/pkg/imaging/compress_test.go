package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvikram/stocktrack-be/internal/pkg/imaging"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), uint8((x * y) % 256), 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompress(t *testing.T) {
	t.Run("oversized_image_is_downscaled", func(t *testing.T) {
		in := pngBytes(t, imaging.MaxDimension*2, 400)
		out := imaging.Compress(in)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.LessOrEqual(t, cfg.Width, imaging.MaxDimension)
		assert.LessOrEqual(t, cfg.Height, imaging.MaxDimension)
	})

	t.Run("never_larger_than_input", func(t *testing.T) {
		in := pngBytes(t, 800, 600)
		out := imaging.Compress(in)
		assert.LessOrEqual(t, len(out), len(in))
	})

	t.Run("garbage_passes_through_unchanged", func(t *testing.T) {
		in := []byte("not an image at all")
		assert.Equal(t, in, imaging.Compress(in))
	})
}
