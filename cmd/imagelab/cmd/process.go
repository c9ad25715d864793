package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/config"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/pipeline"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/technique"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/utils"
)

const (
	outputFormatPNG  = "png"
	outputFormatJPEG = "jpeg"
)

// processCmd represents the process command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Apply a filtering or segmentation technique to images",
	Long: `Process one or more image files with the selected technique and write
the results to disk.

Supported formats: JPEG, PNG, BMP, TIFF

Examples:
  imagelab process --technique grayscale photo.jpg
  imagelab process --technique median-blur --kernel-size 5 *.png
  imagelab process --technique kmeans-cluster --clusters 6 scan.png --output seg.png`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		techniqueName, _ := cmd.Flags().GetString("technique")
		if techniqueName == "" {
			return fmt.Errorf("no technique selected (valid: %s)", strings.Join(technique.Names(), ", "))
		}
		if _, err := technique.Get(techniqueName); err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		outputDir := cfg.Output.Dir
		if cmd.Flags().Changed("output-dir") {
			outputDir, _ = cmd.Flags().GetString("output-dir")
		}
		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		if format != outputFormatPNG && format != outputFormatJPEG {
			return fmt.Errorf("invalid output format: %s (must be png or jpeg)", format)
		}
		if outputFile != "" && len(args) > 1 {
			return errors.New("--output requires exactly one input file, use --output-dir for multiple files")
		}

		params, err := buildParams(cmd, cfg.Processing)
		if err != nil {
			return err
		}

		for _, path := range args {
			if !utils.IsSupportedImage(path) {
				return fmt.Errorf("unsupported image file: %s", path)
			}
		}

		proc, err := pipeline.NewBuilder().WithConfig(cfg.Processing).Build()
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		req := pipeline.Request{Technique: techniqueName, Params: params}

		progress := func(done, total int, path string) {
			if total > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] %s\n", done, total, path)
			}
		}

		results, err := proc.ProcessFiles(ctx, args, req, progress)
		if err != nil {
			return err
		}

		var failed int
		for _, fr := range results {
			if fr.Err != nil {
				failed++
				slog.Error("Processing failed", "file", fr.Path, "error", fr.Err)
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", fr.Path, fr.Err)
				continue
			}

			dest := outputFile
			if dest == "" {
				dest = utils.OutputPath(fr.Path, outputDir, techniqueName, format)
			}
			if err := utils.SaveImage(fr.Result.Image, dest, cfg.Output.JPEGQuality); err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", fr.Path, err)
				continue
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %dx%d, %d ms)\n",
				fr.Path, dest, fr.Result.Technique,
				fr.Result.OutputWidth, fr.Result.OutputHeight,
				fr.Result.Processing.TotalNs/1e6)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

// buildParams starts from the configured defaults and applies flag
// overrides.
func buildParams(cmd *cobra.Command, cfg config.ProcessingConfig) (technique.Params, error) {
	p := technique.ParamsFromConfig(cfg)

	if cmd.Flags().Changed("kernel-size") {
		n, _ := cmd.Flags().GetInt("kernel-size")
		p.GaussianKernel = n
		p.MedianKernel = n
	}
	if cmd.Flags().Changed("sigma") {
		p.GaussianSigma, _ = cmd.Flags().GetFloat64("sigma")
	}
	if cmd.Flags().Changed("strength") {
		p.SharpenStrength, _ = cmd.Flags().GetFloat64("strength")
	}
	if cmd.Flags().Changed("block-size") {
		p.AdaptiveBlock, _ = cmd.Flags().GetInt("block-size")
	}
	if cmd.Flags().Changed("c") {
		p.AdaptiveC, _ = cmd.Flags().GetFloat64("c")
	}
	if cmd.Flags().Changed("clusters") {
		p.KMeansClusters, _ = cmd.Flags().GetInt("clusters")
	}

	return p, nil
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("technique", "t", "",
		fmt.Sprintf("technique to apply (%s)", strings.Join(technique.Names(), ", ")))
	processCmd.Flags().StringP("output", "o", "", "output file (single input only)")
	processCmd.Flags().String("output-dir", "", "output directory (default: alongside input)")
	processCmd.Flags().StringP("format", "f", "png", "output format (png, jpeg)")

	processCmd.Flags().Int("kernel-size", 0, "kernel size override for gaussian-blur and median-blur (odd)")
	processCmd.Flags().Float64("sigma", -1, "sigma override for gaussian-blur (0 derives from kernel size)")
	processCmd.Flags().Float64("strength", -1, "strength override for sharpen")
	processCmd.Flags().Int("block-size", 0, "block size override for adaptive-threshold (odd, >= 3)")
	processCmd.Flags().Float64("c", -1000, "constant override for adaptive-threshold")
	processCmd.Flags().Int("clusters", 0, "cluster count override for kmeans-cluster (>= 2)")
}

// GetProcessCommand returns the process command for testing purposes.
func GetProcessCommand() *cobra.Command {
	return processCmd
}
