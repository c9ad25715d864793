package technique

import (
	"context"

	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

// Grayscale converts the input to a single luminance channel.
type Grayscale struct{}

func (g *Grayscale) Name() string { return "grayscale" }

func (g *Grayscale) Kind() Kind { return KindFilter }

func (g *Grayscale) Description() string {
	return "Convert to a single luminance channel"
}

// Apply converts src to grayscale. A source that is already
// single-channel comes back as a clone.
func (g *Grayscale) Apply(ctx context.Context, src gocv.Mat, _ Params) (gocv.Mat, error) {
	if err := checkContext(ctx); err != nil {
		return gocv.NewMat(), err
	}
	if err := vision.Validate(src); err != nil {
		return gocv.NewMat(), err
	}

	return vision.EnsureGray(src)
}
