package technique

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

// MedianBlur replaces each pixel with the median of its neighborhood,
// the classic salt-and-pepper noise remover.
type MedianBlur struct{}

func (m *MedianBlur) Name() string { return "median-blur" }

func (m *MedianBlur) Kind() Kind { return KindFilter }

func (m *MedianBlur) Description() string {
	return "Median neighborhood smoothing"
}

func (m *MedianBlur) Apply(ctx context.Context, src gocv.Mat, p Params) (gocv.Mat, error) {
	if err := checkContext(ctx); err != nil {
		return gocv.NewMat(), err
	}
	if err := vision.Validate(src); err != nil {
		return gocv.NewMat(), err
	}

	k := p.MedianKernel
	if k < 1 || k%2 == 0 {
		return gocv.NewMat(), fmt.Errorf("median kernel size must be odd and >= 1, got %d", k)
	}
	if k == 1 {
		return src.Clone(), nil
	}

	dst := gocv.NewMat()
	gocv.MedianBlur(src, &dst, k)
	return dst, nil
}
