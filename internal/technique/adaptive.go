package technique

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

// AdaptiveThreshold binarizes against a per-neighborhood Gaussian
// weighted mean, which copes with uneven lighting where a global
// threshold cannot.
type AdaptiveThreshold struct{}

func (a *AdaptiveThreshold) Name() string { return "adaptive-threshold" }

func (a *AdaptiveThreshold) Kind() Kind { return KindSegmentation }

func (a *AdaptiveThreshold) Description() string {
	return "Gaussian adaptive binarization"
}

func (a *AdaptiveThreshold) Apply(ctx context.Context, src gocv.Mat, p Params) (gocv.Mat, error) {
	if err := checkContext(ctx); err != nil {
		return gocv.NewMat(), err
	}
	if err := vision.Validate(src); err != nil {
		return gocv.NewMat(), err
	}

	block := p.AdaptiveBlock
	if block < 3 || block%2 == 0 {
		return gocv.NewMat(), fmt.Errorf("adaptive block size must be odd and >= 3, got %d", block)
	}

	gray, err := vision.EnsureGray(src)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	dst := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &dst, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinary, block, float32(p.AdaptiveC))

	return dst, nil
}
