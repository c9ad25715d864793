package technique

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

// Sharpen applies an unsharp 3x3 kernel. Strength scales the kernel's
// edge emphasis; 1.0 is the classic [0 -1 0; -1 5 -1; 0 -1 0].
type Sharpen struct{}

func (s *Sharpen) Name() string { return "sharpen" }

func (s *Sharpen) Kind() Kind { return KindFilter }

func (s *Sharpen) Description() string {
	return "Edge-emphasizing 3x3 convolution"
}

func (s *Sharpen) Apply(ctx context.Context, src gocv.Mat, p Params) (gocv.Mat, error) {
	if err := checkContext(ctx); err != nil {
		return gocv.NewMat(), err
	}
	if err := vision.Validate(src); err != nil {
		return gocv.NewMat(), err
	}
	if p.SharpenStrength <= 0 {
		return gocv.NewMat(), fmt.Errorf("sharpen strength must be > 0, got %g", p.SharpenStrength)
	}

	kernel, err := sharpenKernel(p.SharpenStrength)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer kernel.Close()

	dst := gocv.NewMat()
	gocv.Filter2D(src, &dst, -1, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)
	return dst, nil
}

// sharpenKernel builds the convolution kernel for the given strength.
// The weights always sum to 1 so overall brightness is preserved.
func sharpenKernel(strength float64) (gocv.Mat, error) {
	kernel := gocv.Zeros(3, 3, gocv.MatTypeCV32F)
	if kernel.Empty() {
		kernel.Close()
		return gocv.NewMat(), fmt.Errorf("kernel allocation failed")
	}

	edge := float32(-strength)
	center := float32(1 + 4*strength)

	kernel.SetFloatAt(0, 1, edge)
	kernel.SetFloatAt(1, 0, edge)
	kernel.SetFloatAt(1, 1, center)
	kernel.SetFloatAt(1, 2, edge)
	kernel.SetFloatAt(2, 1, edge)

	return kernel, nil
}
