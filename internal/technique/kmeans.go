package technique

import (
	"context"
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

// KMeansCluster quantizes the image into K dominant colors, segmenting
// it into K regions. Pixels are clustered in BGR space and repainted
// with their cluster center.
type KMeansCluster struct{}

func (k *KMeansCluster) Name() string { return "kmeans-cluster" }

func (k *KMeansCluster) Kind() Kind { return KindSegmentation }

func (k *KMeansCluster) Description() string {
	return "K-means color quantization segmentation"
}

func (k *KMeansCluster) Apply(ctx context.Context, src gocv.Mat, p Params) (gocv.Mat, error) {
	if err := checkContext(ctx); err != nil {
		return gocv.NewMat(), err
	}
	if err := vision.Validate(src); err != nil {
		return gocv.NewMat(), err
	}
	if p.KMeansClusters < 2 {
		return gocv.NewMat(), fmt.Errorf("kmeans clusters must be >= 2, got %d", p.KMeansClusters)
	}
	if p.KMeansAttempts < 1 {
		return gocv.NewMat(), fmt.Errorf("kmeans attempts must be >= 1, got %d", p.KMeansAttempts)
	}
	if p.KMeansMaxIter < 1 {
		return gocv.NewMat(), fmt.Errorf("kmeans max iterations must be >= 1, got %d", p.KMeansMaxIter)
	}
	if src.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("kmeans clustering needs a 3-channel image, got %d channels", src.Channels())
	}

	rows, cols := src.Rows(), src.Cols()

	// One sample row per pixel, one column per channel.
	reshaped := src.Reshape(1, rows*cols)
	defer reshaped.Close()

	samples := gocv.NewMat()
	defer samples.Close()
	reshaped.ConvertTo(&samples, gocv.MatTypeCV32F)

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.MaxIter+gocv.EPS, p.KMeansMaxIter, 1.0)
	gocv.KMeans(samples, p.KMeansClusters, &labels, criteria, p.KMeansAttempts,
		gocv.KMeansPPCenters, &centers)

	if labels.Rows() != rows*cols || centers.Rows() < p.KMeansClusters {
		return gocv.NewMat(), fmt.Errorf("kmeans produced %d labels and %d centers for %d pixels",
			labels.Rows(), centers.Rows(), rows*cols)
	}

	return paintClusters(src, labels, centers)
}

// paintClusters rebuilds the image with each pixel replaced by its
// cluster center color.
func paintClusters(src, labels, centers gocv.Mat) (gocv.Mat, error) {
	rows, cols := src.Rows(), src.Cols()
	dst := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	if dst.Empty() {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("result allocation failed")
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cluster := int(labels.GetIntAt(y*cols+x, 0))
			for ch := 0; ch < 3; ch++ {
				dst.SetUCharAt3(y, x, ch, clampByte(centers.GetFloatAt(cluster, ch)))
			}
		}
	}

	return dst, nil
}

func clampByte(v float32) uint8 {
	r := math.Round(float64(v))
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}
