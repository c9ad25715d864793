package technique

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/config"
)

func TestGetKnownTechniques(t *testing.T) {
	names := []string{
		"grayscale", "gaussian-blur", "median-blur", "sharpen",
		"otsu-threshold", "adaptive-threshold", "kmeans-cluster",
	}
	for _, name := range names {
		tech, err := Get(name)
		require.NoError(t, err, "Get(%q)", name)
		assert.Equal(t, name, tech.Name())
		assert.NotEmpty(t, tech.Description())
	}
}

func TestGetUnknownTechnique(t *testing.T) {
	_, err := Get("emboss")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown technique")
	// The error names the valid alternatives.
	assert.Contains(t, err.Error(), "grayscale")
	assert.Contains(t, err.Error(), "kmeans-cluster")
}

func TestAllOrdering(t *testing.T) {
	all := All()
	require.Len(t, all, 7)

	// Filters first, then segmentation, each family alphabetical.
	var kinds []Kind
	for _, tech := range all {
		kinds = append(kinds, tech.Kind())
	}
	assert.Equal(t, []Kind{
		KindFilter, KindFilter, KindFilter, KindFilter,
		KindSegmentation, KindSegmentation, KindSegmentation,
	}, kinds)

	assert.Equal(t, []string{
		"gaussian-blur", "grayscale", "median-blur", "sharpen",
		"adaptive-threshold", "kmeans-cluster", "otsu-threshold",
	}, Names())
}

func TestKinds(t *testing.T) {
	filters := []string{"grayscale", "gaussian-blur", "median-blur", "sharpen"}
	for _, name := range filters {
		tech, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, KindFilter, tech.Kind(), name)
	}

	segmentation := []string{"otsu-threshold", "adaptive-threshold", "kmeans-cluster"}
	for _, name := range segmentation {
		tech, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, KindSegmentation, tech.Kind(), name)
	}
}

func TestParamsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Processing
	p := ParamsFromConfig(cfg)

	assert.Equal(t, cfg.Gaussian.KernelSize, p.GaussianKernel)
	assert.Equal(t, cfg.Gaussian.Sigma, p.GaussianSigma)
	assert.Equal(t, cfg.Median.KernelSize, p.MedianKernel)
	assert.Equal(t, cfg.Sharpen.Strength, p.SharpenStrength)
	assert.Equal(t, cfg.Adaptive.BlockSize, p.AdaptiveBlock)
	assert.Equal(t, cfg.Adaptive.C, p.AdaptiveC)
	assert.Equal(t, cfg.KMeans.Clusters, p.KMeansClusters)
	assert.Equal(t, cfg.KMeans.Attempts, p.KMeansAttempts)
	assert.Equal(t, cfg.KMeans.MaxIter, p.KMeansMaxIter)
}

func TestCheckContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := checkContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
