package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/testutil"
)

func TestIsSupportedImage(t *testing.T) {
	supported := []string{
		"photo.jpg", "photo.JPG", "scan.jpeg", "icon.png",
		"legacy.bmp", "scan.tif", "scan.tiff", "/some/dir/a.PNG",
	}
	for _, path := range supported {
		assert.True(t, IsSupportedImage(path), path)
	}

	unsupported := []string{"anim.gif", "doc.pdf", "noext", "archive.tar.gz"}
	for _, path := range unsupported {
		assert.False(t, IsSupportedImage(path), path)
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePNG(t, dir, "input.png", testutil.GenerateGradientImage(testutil.SmallSize))

	img, meta, err := LoadImage(path)
	require.NoError(t, err)
	require.NotNil(t, img)

	assert.Equal(t, path, meta.Path)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, testutil.SmallSize.Width, meta.Width)
	assert.Equal(t, testutil.SmallSize.Height, meta.Height)
	assert.Greater(t, meta.SizeBytes, int64(0))
	assert.InDelta(t, float64(meta.Width)/float64(meta.Height), meta.AspectRatio, 0.001)
}

func TestLoadImageErrors(t *testing.T) {
	var procErr *ImageProcessingError

	_, _, err := LoadImage("")
	require.Error(t, err)
	assert.True(t, errors.As(err, &procErr))
	assert.Equal(t, "load", procErr.Operation)

	_, _, err = LoadImage("document.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	_, _, err = LoadImage("/nonexistent/input.png")
	assert.Error(t, err)
}

func TestLoadImageCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o600))

	_, _, err := LoadImage(path)
	require.Error(t, err)

	var procErr *ImageProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "decode", procErr.Operation)
}

func TestDecodeImage(t *testing.T) {
	data := testutil.EncodePNGBytes(t, testutil.GenerateGradientImage(testutil.SmallSize))

	img, err := DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, testutil.SmallSize.Width, img.Bounds().Dx())

	_, err = DecodeImage(nil)
	assert.Error(t, err)

	_, err = DecodeImage([]byte("garbage"))
	assert.Error(t, err)
}

func TestSaveImageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := testutil.GenerateGradientImage(testutil.SmallSize)

	for _, name := range []string{"out.png", "out.jpg", "nested/deeper/out.png"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveImage(src, path, 90), name)

		img, _, err := LoadImage(path)
		require.NoError(t, err, name)
		assert.Equal(t, testutil.SmallSize.Width, img.Bounds().Dx(), name)
		assert.Equal(t, testutil.SmallSize.Height, img.Bounds().Dy(), name)
	}
}

func TestSaveImageErrors(t *testing.T) {
	dir := t.TempDir()
	src := testutil.GenerateGradientImage(testutil.SmallSize)

	assert.Error(t, SaveImage(nil, filepath.Join(dir, "out.png"), 90))
	assert.Error(t, SaveImage(src, "", 90))
	assert.Error(t, SaveImage(src, filepath.Join(dir, "out.webp"), 90))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input     string
		dir       string
		technique string
		format    string
		want      string
	}{
		{"photo.png", "", "grayscale", "png", "photo_grayscale.png"},
		{"/data/in/photo.jpg", "", "sharpen", "png", "/data/in/photo_sharpen.png"},
		{"/data/in/photo.png", "/out", "otsu-threshold", "png", "/out/photo_otsu-threshold.png"},
		{"scan.tiff", "results", "kmeans-cluster", "jpeg", "results/scan_kmeans-cluster.jpg"},
		{"noext", "", "grayscale", "png", "noext_grayscale.png"},
	}

	for _, tt := range tests {
		got := OutputPath(tt.input, tt.dir, tt.technique, tt.format)
		assert.Equal(t, filepath.FromSlash(tt.want), got)
	}
}

func TestImageProcessingErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ImageProcessingError{Operation: "save", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "save")
	assert.Contains(t, err.Error(), "boom")
}
