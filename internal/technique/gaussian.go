package technique

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

// GaussianBlur smooths the input with a Gaussian kernel.
type GaussianBlur struct{}

func (g *GaussianBlur) Name() string { return "gaussian-blur" }

func (g *GaussianBlur) Kind() Kind { return KindFilter }

func (g *GaussianBlur) Description() string {
	return "Smooth with a Gaussian kernel"
}

// Apply blurs src. Kernel size 1 is a no-op clone. Sigma 0 lets the
// library derive sigma from the kernel size.
func (g *GaussianBlur) Apply(ctx context.Context, src gocv.Mat, p Params) (gocv.Mat, error) {
	if err := checkContext(ctx); err != nil {
		return gocv.NewMat(), err
	}
	if err := vision.Validate(src); err != nil {
		return gocv.NewMat(), err
	}

	k := p.GaussianKernel
	if k < 1 || k%2 == 0 {
		return gocv.NewMat(), fmt.Errorf("gaussian kernel size must be odd and >= 1, got %d", k)
	}
	if p.GaussianSigma < 0 {
		return gocv.NewMat(), fmt.Errorf("gaussian sigma must be >= 0, got %g", p.GaussianSigma)
	}
	if k == 1 {
		return src.Clone(), nil
	}

	dst := gocv.NewMat()
	gocv.GaussianBlur(src, &dst, image.Pt(k, k), p.GaussianSigma, p.GaussianSigma, gocv.BorderDefault)
	return dst, nil
}
