// Package testutil generates the synthetic images the test suites run
// techniques against.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ImageSize represents common image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	SmallSize  = ImageSize{64, 48}
	MediumSize = ImageSize{320, 240}
	LargeSize  = ImageSize{1024, 768}
)

// GenerateGradientImage produces a horizontal grayscale ramp rendered
// into an RGBA image. Useful anywhere a smooth, deterministic input is
// needed.
func GenerateGradientImage(size ImageSize) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			v := uint8(x * 255 / max(size.Width-1, 1))
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// GenerateBimodalImage produces an image whose histogram has two well
// separated modes: a dark left half and a bright right half, with mild
// deterministic noise. Otsu splits it cleanly down the middle.
func GenerateBimodalImage(size ImageSize) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			base := 40
			if x >= size.Width/2 {
				base = 210
			}
			v := uint8(base + rng.Intn(21) - 10)
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// GenerateColorBlocksImage produces four solid color quadrants, a
// natural fixture for cluster-based segmentation.
func GenerateColorBlocksImage(size ImageSize) *image.RGBA {
	colors := []color.RGBA{
		{220, 40, 40, 255},
		{40, 220, 40, 255},
		{40, 40, 220, 255},
		{220, 220, 40, 255},
	}

	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			idx := 0
			if x >= size.Width/2 {
				idx++
			}
			if y >= size.Height/2 {
				idx += 2
			}
			img.SetRGBA(x, y, colors[idx])
		}
	}
	return img
}

// GenerateNoisyImage produces salt-and-pepper noise over a mid-gray
// background, the canonical median-filter input.
func GenerateNoisyImage(size ImageSize, noiseFraction float64) *image.RGBA {
	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			v := uint8(128)
			if rng.Float64() < noiseFraction {
				if rng.Intn(2) == 0 {
					v = 0
				} else {
					v = 255
				}
			}
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// WritePNG writes img into dir under name and returns the full path.
func WritePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	require.NoError(t, png.Encode(f, img))
	return path
}

// EncodePNGBytes returns img encoded as PNG bytes.
func EncodePNGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
