package technique

import (
	"context"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

// OtsuThreshold binarizes the image at the global threshold Otsu's
// method selects from the histogram.
type OtsuThreshold struct{}

func (o *OtsuThreshold) Name() string { return "otsu-threshold" }

func (o *OtsuThreshold) Kind() Kind { return KindSegmentation }

func (o *OtsuThreshold) Description() string {
	return "Global Otsu binarization"
}

func (o *OtsuThreshold) Apply(ctx context.Context, src gocv.Mat, _ Params) (gocv.Mat, error) {
	if err := checkContext(ctx); err != nil {
		return gocv.NewMat(), err
	}
	if err := vision.Validate(src); err != nil {
		return gocv.NewMat(), err
	}

	gray, err := vision.EnsureGray(src)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	dst := gocv.NewMat()
	selected := gocv.Threshold(gray, &dst, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	slog.Debug("otsu threshold selected", "threshold", selected)

	return dst, nil
}
