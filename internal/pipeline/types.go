package pipeline

import (
	"image"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/technique"
)

// Request selects the technique and its parameters for one run.
type Request struct {
	Technique string
	Params    technique.Params
}

// Result is the outcome of processing a single image.
type Result struct {
	// Image is the processed output.
	Image image.Image

	Technique string
	Kind      technique.Kind

	InputWidth   int
	InputHeight  int
	OutputWidth  int
	OutputHeight int

	// Downscaled reports whether the input was reduced to the configured
	// maximum dimension before processing.
	Downscaled bool

	Processing Timing
}

// Timing captures per-stage durations in nanoseconds.
type Timing struct {
	LoadNs    int64 `json:"load_ns"`
	ProcessNs int64 `json:"process_ns"`
	ExtractNs int64 `json:"extract_ns"`
	TotalNs   int64 `json:"total_ns"`
}

// ProgressCallback reports sequential multi-file progress.
type ProgressCallback func(done, total int, path string)
