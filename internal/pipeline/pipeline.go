// Package pipeline orchestrates one processing run: load the image into
// the vision library's matrix representation, dispatch the selected
// technique, extract the result back to a Go image, and release the
// native buffers.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/config"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/technique"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/utils"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/vision"
)

// Processor runs techniques against images.
type Processor struct {
	maxDimension  int
	defaultParams technique.Params
}

// Builder assembles a Processor with a fluent API.
type Builder struct {
	cfg config.ProcessingConfig
}

// NewBuilder returns a Builder seeded with application defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: config.DefaultConfig().Processing}
}

// WithConfig replaces the processing defaults wholesale.
func (b *Builder) WithConfig(cfg config.ProcessingConfig) *Builder {
	b.cfg = cfg
	return b
}

// WithMaxDimension overrides the pre-processing downscale bound.
// Zero disables downscaling.
func (b *Builder) WithMaxDimension(px int) *Builder {
	b.cfg.MaxDimension = px
	return b
}

// Build validates the configuration and returns the Processor.
func (b *Builder) Build() (*Processor, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processing configuration: %w", err)
	}
	return &Processor{
		maxDimension:  b.cfg.MaxDimension,
		defaultParams: technique.ParamsFromConfig(b.cfg),
	}, nil
}

// DefaultParams returns the processor's configured technique parameters,
// the starting point for per-request overrides.
func (p *Processor) DefaultParams() technique.Params {
	return p.defaultParams
}

// ProcessImage runs the requested technique against img.
func (p *Processor) ProcessImage(ctx context.Context, img image.Image, req Request) (*Result, error) {
	if img == nil {
		return nil, vision.ErrNilImage
	}

	t, err := technique.Get(req.Technique)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	inputW := img.Bounds().Dx()
	inputH := img.Bounds().Dy()

	img, downscaled := p.downscale(img)

	loadStart := time.Now()
	src, err := vision.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("loading image into matrix failed: %w", err)
	}
	defer src.Close()
	loadNs := time.Since(loadStart).Nanoseconds()

	processStart := time.Now()
	dst, err := t.Apply(ctx, src, req.Params)
	if err != nil {
		return nil, fmt.Errorf("technique %s failed: %w", t.Name(), err)
	}
	defer dst.Close()
	processNs := time.Since(processStart).Nanoseconds()

	extractStart := time.Now()
	out, err := vision.ToImage(dst)
	if err != nil {
		return nil, fmt.Errorf("extracting result failed: %w", err)
	}
	extractNs := time.Since(extractStart).Nanoseconds()

	res := &Result{
		Image:        out,
		Technique:    t.Name(),
		Kind:         t.Kind(),
		InputWidth:   inputW,
		InputHeight:  inputH,
		OutputWidth:  out.Bounds().Dx(),
		OutputHeight: out.Bounds().Dy(),
		Downscaled:   downscaled,
		Processing: Timing{
			LoadNs:    loadNs,
			ProcessNs: processNs,
			ExtractNs: extractNs,
			TotalNs:   time.Since(start).Nanoseconds(),
		},
	}

	slog.Debug("processed image",
		"technique", res.Technique,
		"input", fmt.Sprintf("%dx%d", inputW, inputH),
		"output", fmt.Sprintf("%dx%d", res.OutputWidth, res.OutputHeight),
		"downscaled", downscaled,
		"total_ms", res.Processing.TotalNs/1e6)

	return res, nil
}

// ProcessBytes decodes encoded image bytes and runs the technique.
func (p *Processor) ProcessBytes(ctx context.Context, data []byte, req Request) (*Result, error) {
	img, err := utils.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return p.ProcessImage(ctx, img, req)
}

// ProcessFile loads the image at path and runs the technique.
func (p *Processor) ProcessFile(ctx context.Context, path string, req Request) (*Result, error) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return p.ProcessImage(ctx, img, req)
}

// ProcessFiles runs the technique over several files sequentially,
// reporting progress after each one. Processing continues past
// per-file failures; errors are returned alongside their paths.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string, req Request, progress ProgressCallback) ([]FileResult, error) {
	results := make([]FileResult, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := p.ProcessFile(ctx, path, req)
		results = append(results, FileResult{Path: path, Result: res, Err: err})

		if progress != nil {
			progress(i+1, len(paths), path)
		}
	}
	return results, nil
}

// FileResult pairs one input path with its outcome.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// downscale bounds img to the configured maximum dimension, preserving
// aspect ratio. Returns the (possibly original) image and whether a
// resize happened.
func (p *Processor) downscale(img image.Image) (image.Image, bool) {
	if p.maxDimension <= 0 {
		return img, false
	}

	b := img.Bounds()
	if b.Dx() <= p.maxDimension && b.Dy() <= p.maxDimension {
		return img, false
	}

	return imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos), true
}
