package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path        string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	AspectRatio float64
}

// LoadImage opens and decodes an image file, returning the image and metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		err := &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
		return nil, ImageMetadata{}, err
	}

	f, err := os.Open(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing image file: %v\n", err)
		}
	}()

	fi, statErr := f.Stat()
	if statErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: statErr}
	}

	img, format, decErr := image.Decode(f)
	if decErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: decErr}
	}

	b := img.Bounds()
	meta := ImageMetadata{
		Path:        path,
		Format:      format,
		SizeBytes:   fi.Size(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		AspectRatio: float64(b.Dx()) / float64(b.Dy()),
	}

	return img, meta, nil
}

// DecodeImage decodes in-memory encoded image bytes.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &ImageProcessingError{Operation: "decode", Err: errors.New("no image data")}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageProcessingError{Operation: "decode", Err: err}
	}
	return img, nil
}

// SaveImage writes img to path. The encoder is chosen from the
// extension; quality applies to JPEG only.
func SaveImage(img image.Image, path string, jpegQuality int) error {
	if img == nil {
		return &ImageProcessingError{Operation: "save", Err: errors.New("input image is nil")}
	}
	if path == "" {
		return &ImageProcessingError{Operation: "save", Err: errors.New("empty path")}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return &ImageProcessingError{Operation: "save", Err: err}
		}
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = imaging.Save(img, path, imaging.JPEGQuality(jpegQuality))
	case ".png", ".bmp", ".tif", ".tiff":
		err = imaging.Save(img, path)
	default:
		err = fmt.Errorf("unsupported output format: %s", filepath.Ext(path))
	}
	if err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	return nil
}

// OutputPath derives a result file path from the input path: the input
// base name gains a technique suffix and the configured extension, and
// lands in dir (input's directory when dir is empty).
func OutputPath(inputPath, dir, techniqueName, format string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	ext := "." + strings.TrimPrefix(strings.ToLower(format), ".")
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, techniqueName, ext))
}
