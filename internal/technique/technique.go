// Package technique implements the seven processing operations the
// application exposes: four filters and three segmentation methods.
// Each operation delegates its pixel work to OpenCV through gocv; this
// package only validates parameters, dispatches the right library call,
// and keeps Mat lifetimes straight.
package technique

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/config"
)

// Kind distinguishes the two technique families.
type Kind string

const (
	KindFilter       Kind = "filter"
	KindSegmentation Kind = "segmentation"
)

// Params carries the tunable parameters for all techniques. Each
// technique reads only the fields it understands.
type Params struct {
	GaussianKernel  int
	GaussianSigma   float64
	MedianKernel    int
	SharpenStrength float64
	AdaptiveBlock   int
	AdaptiveC       float64
	KMeansClusters  int
	KMeansAttempts  int
	KMeansMaxIter   int
}

// ParamsFromConfig fills Params from configured processing defaults.
func ParamsFromConfig(cfg config.ProcessingConfig) Params {
	return Params{
		GaussianKernel:  cfg.Gaussian.KernelSize,
		GaussianSigma:   cfg.Gaussian.Sigma,
		MedianKernel:    cfg.Median.KernelSize,
		SharpenStrength: cfg.Sharpen.Strength,
		AdaptiveBlock:   cfg.Adaptive.BlockSize,
		AdaptiveC:       cfg.Adaptive.C,
		KMeansClusters:  cfg.KMeans.Clusters,
		KMeansAttempts:  cfg.KMeans.Attempts,
		KMeansMaxIter:   cfg.KMeans.MaxIter,
	}
}

// Technique is a single processing operation. Apply returns a new Mat
// owned by the caller; the source Mat is never modified or closed.
type Technique interface {
	Name() string
	Kind() Kind
	Description() string
	Apply(ctx context.Context, src gocv.Mat, p Params) (gocv.Mat, error)
}

// registry holds the fixed technique enumeration.
var registry = buildRegistry()

func buildRegistry() map[string]Technique {
	techniques := []Technique{
		&Grayscale{},
		&GaussianBlur{},
		&MedianBlur{},
		&Sharpen{},
		&OtsuThreshold{},
		&AdaptiveThreshold{},
		&KMeansCluster{},
	}

	m := make(map[string]Technique, len(techniques))
	for _, t := range techniques {
		m[t.Name()] = t
	}
	return m
}

// Get returns the technique registered under name.
func Get(name string) (Technique, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown technique: %q (valid: %s)", name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// All returns every registered technique, filters first, each family
// alphabetical.
func All() []Technique {
	out := make([]Technique, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind() != out[j].Kind() {
			return out[i].Kind() == KindFilter
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Names returns the canonical technique names in All() order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name()
	}
	return names
}

// checkContext returns the context error, if any, before a native call
// is dispatched.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
