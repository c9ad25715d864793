package technique

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/config"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/testutil"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

func defaultParams() Params {
	return ParamsFromConfig(config.DefaultConfig().Processing)
}

func gradientMat(t *testing.T) gocv.Mat {
	t.Helper()
	mat, err := vision.FromImage(testutil.GenerateGradientImage(testutil.SmallSize))
	require.NoError(t, err)
	return mat
}

func TestGrayscaleApply(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	dst, err := (&Grayscale{}).Apply(context.Background(), src, defaultParams())
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, 1, dst.Channels())
	assert.Equal(t, src.Rows(), dst.Rows())
	assert.Equal(t, src.Cols(), dst.Cols())
	// Source is untouched.
	assert.Equal(t, 3, src.Channels())
}

func TestGrayscaleApplyAlreadyGray(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	gray, err := vision.EnsureGray(src)
	require.NoError(t, err)
	defer gray.Close()

	dst, err := (&Grayscale{}).Apply(context.Background(), gray, defaultParams())
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, 1, dst.Channels())
}

func TestGaussianBlurApply(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	dst, err := (&GaussianBlur{}).Apply(context.Background(), src, defaultParams())
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, src.Rows(), dst.Rows())
	assert.Equal(t, src.Cols(), dst.Cols())
	assert.Equal(t, src.Channels(), dst.Channels())
}

func TestGaussianBlurKernelOne(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	p := defaultParams()
	p.GaussianKernel = 1

	dst, err := (&GaussianBlur{}).Apply(context.Background(), src, p)
	require.NoError(t, err)
	defer dst.Close()

	// Kernel size 1 clones the input unchanged.
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(src, dst, &diff)
	sum := diff.Sum()
	assert.Zero(t, sum.Val1+sum.Val2+sum.Val3+sum.Val4)
}

func TestGaussianBlurInvalidKernel(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	p := defaultParams()
	p.GaussianKernel = 4

	_, err := (&GaussianBlur{}).Apply(context.Background(), src, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kernel size must be odd")
}

func TestMedianBlurRemovesNoise(t *testing.T) {
	src, err := vision.FromImage(testutil.GenerateNoisyImage(testutil.SmallSize, 0.05))
	require.NoError(t, err)
	defer src.Close()

	dst, err := (&MedianBlur{}).Apply(context.Background(), src, defaultParams())
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, src.Rows(), dst.Rows())
	assert.Equal(t, src.Cols(), dst.Cols())
}

func TestMedianBlurInvalidKernel(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	p := defaultParams()
	p.MedianKernel = 0

	_, err := (&MedianBlur{}).Apply(context.Background(), src, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kernel size must be odd")
}

func TestSharpenApply(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	dst, err := (&Sharpen{}).Apply(context.Background(), src, defaultParams())
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, src.Rows(), dst.Rows())
	assert.Equal(t, src.Cols(), dst.Cols())
	assert.Equal(t, src.Channels(), dst.Channels())
}

func TestSharpenInvalidStrength(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	p := defaultParams()
	p.SharpenStrength = 0

	_, err := (&Sharpen{}).Apply(context.Background(), src, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strength must be > 0")
}

func TestOtsuThresholdBinarizes(t *testing.T) {
	src, err := vision.FromImage(testutil.GenerateBimodalImage(testutil.SmallSize))
	require.NoError(t, err)
	defer src.Close()

	dst, err := (&OtsuThreshold{}).Apply(context.Background(), src, defaultParams())
	require.NoError(t, err)
	defer dst.Close()

	require.Equal(t, 1, dst.Channels())
	assertBinary(t, dst)

	// A bimodal image splits into both classes.
	nonZero := gocv.CountNonZero(dst)
	total := dst.Rows() * dst.Cols()
	assert.Greater(t, nonZero, 0)
	assert.Less(t, nonZero, total)
}

func TestAdaptiveThresholdBinarizes(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	dst, err := (&AdaptiveThreshold{}).Apply(context.Background(), src, defaultParams())
	require.NoError(t, err)
	defer dst.Close()

	require.Equal(t, 1, dst.Channels())
	assertBinary(t, dst)
}

func TestAdaptiveThresholdInvalidBlock(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	for _, block := range []int{1, 2, 10} {
		p := defaultParams()
		p.AdaptiveBlock = block

		_, err := (&AdaptiveThreshold{}).Apply(context.Background(), src, p)
		require.Error(t, err, "block size %d", block)
		assert.Contains(t, err.Error(), "block size must be odd")
	}
}

func TestKMeansClusterQuantizes(t *testing.T) {
	src, err := vision.FromImage(testutil.GenerateColorBlocksImage(testutil.SmallSize))
	require.NoError(t, err)
	defer src.Close()

	p := defaultParams()
	p.KMeansClusters = 4

	dst, err := (&KMeansCluster{}).Apply(context.Background(), src, p)
	require.NoError(t, err)
	defer dst.Close()

	require.Equal(t, 3, dst.Channels())
	assert.Equal(t, src.Rows(), dst.Rows())
	assert.Equal(t, src.Cols(), dst.Cols())

	// The output holds at most K distinct colors.
	colors := make(map[[3]uint8]struct{})
	for y := 0; y < dst.Rows(); y++ {
		for x := 0; x < dst.Cols(); x++ {
			var c [3]uint8
			for ch := 0; ch < 3; ch++ {
				c[ch] = dst.GetUCharAt3(y, x, ch)
			}
			colors[c] = struct{}{}
		}
	}
	assert.LessOrEqual(t, len(colors), p.KMeansClusters)
	assert.GreaterOrEqual(t, len(colors), 2)
}

func TestKMeansClusterInvalidParams(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr string
	}{
		{"single cluster", func(p *Params) { p.KMeansClusters = 1 }, "clusters must be >= 2"},
		{"zero attempts", func(p *Params) { p.KMeansAttempts = 0 }, "attempts must be >= 1"},
		{"zero iterations", func(p *Params) { p.KMeansMaxIter = 0 }, "max iterations must be >= 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultParams()
			tt.mutate(&p)

			_, err := (&KMeansCluster{}).Apply(context.Background(), src, p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestKMeansClusterRejectsGray(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	gray, err := vision.EnsureGray(src)
	require.NoError(t, err)
	defer gray.Close()

	_, err = (&KMeansCluster{}).Apply(context.Background(), gray, defaultParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3-channel")
}

func TestApplyEmptyMat(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	for _, tech := range All() {
		_, err := tech.Apply(context.Background(), empty, defaultParams())
		assert.Error(t, err, tech.Name())
	}
}

func TestApplyCancelledContext(t *testing.T) {
	src := gradientMat(t)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, tech := range All() {
		_, err := tech.Apply(ctx, src, defaultParams())
		assert.ErrorIs(t, err, context.Canceled, tech.Name())
	}
}

// assertBinary checks that every pixel is either 0 or 255.
func assertBinary(t *testing.T, mat gocv.Mat) {
	t.Helper()
	for y := 0; y < mat.Rows(); y++ {
		for x := 0; x < mat.Cols(); x++ {
			v := mat.GetUCharAt(y, x)
			if v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
}
