// Package vision bridges between Go's image.Image world and the OpenCV
// matrix representation used by every technique. All Mats handed out by
// this package are owned by the caller and must be closed.
package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// MinDimension is the smallest width/height an input may have. Kernels
// are at least 3x3, so anything smaller cannot be processed.
const MinDimension = 3

var (
	// ErrEmptyMat indicates a Mat with no pixel data.
	ErrEmptyMat = errors.New("empty mat")

	// ErrNilImage indicates a nil input image.
	ErrNilImage = errors.New("input image is nil")
)

// FromImage loads a Go image into a 3-channel BGR Mat.
func FromImage(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), ErrNilImage
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("image to mat conversion failed: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), ErrEmptyMat
	}

	return mat, nil
}

// FromBytes decodes encoded image bytes (PNG, JPEG, BMP, ...) straight
// into a 3-channel BGR Mat.
func FromBytes(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), errors.New("no image data")
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("image decode failed: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), errors.New("image decode produced no pixels")
	}

	return mat, nil
}

// ToImage extracts a Mat back into a displayable Go image.
func ToImage(mat gocv.Mat) (image.Image, error) {
	if mat.Empty() {
		return nil, ErrEmptyMat
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("mat to image conversion failed: %w", err)
	}
	return img, nil
}

// EncodePNG encodes a Mat as PNG bytes.
func EncodePNG(mat gocv.Mat) ([]byte, error) {
	if mat.Empty() {
		return nil, ErrEmptyMat
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	defer buf.Close()

	// The native buffer is released on Close, copy out.
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// EnsureGray returns a single-channel view of src. The returned Mat is
// always a new allocation the caller must close, whether or not a color
// conversion was required.
func EnsureGray(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), ErrEmptyMat
	}

	if src.Channels() == 1 {
		return src.Clone(), nil
	}

	dst := gocv.NewMat()
	switch src.Channels() {
	case 3:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &dst, gocv.ColorBGRAToGray)
	default:
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	if dst.Empty() {
		dst.Close()
		return gocv.NewMat(), errors.New("grayscale conversion produced no pixels")
	}
	return dst, nil
}

// Validate rejects Mats a technique cannot process.
func Validate(mat gocv.Mat) error {
	if mat.Empty() {
		return ErrEmptyMat
	}
	if mat.Cols() < MinDimension || mat.Rows() < MinDimension {
		return fmt.Errorf("image too small: %dx%d (minimum %dx%d)",
			mat.Cols(), mat.Rows(), MinDimension, MinDimension)
	}
	return nil
}
