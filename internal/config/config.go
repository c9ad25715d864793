package config

import (
	"fmt"
	"strings"
)

// DefaultConfig returns a Config populated with the application defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Verbose:  false,
		Processing: ProcessingConfig{
			MaxDimension: 4096,
			Gaussian: GaussianConfig{
				KernelSize: 15,
				Sigma:      0,
			},
			Median: MedianConfig{
				KernelSize: 9,
			},
			Sharpen: SharpenConfig{
				Strength: 1.0,
			},
			Adaptive: AdaptiveConfig{
				BlockSize: 11,
				C:         2,
			},
			KMeans: KMeansConfig{
				Clusters: 4,
				Attempts: 3,
				MaxIter:  20,
			},
		},
		Output: OutputConfig{
			Format:      "png",
			Dir:         "",
			JPEGQuality: 90,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     25,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
	}
}

// Validate checks the configuration for invalid values and returns a
// descriptive error for the first problem found.
func (c *Config) Validate() error {
	if err := c.validateGlobal(); err != nil {
		return err
	}
	if err := c.Processing.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

func (c *Config) validateGlobal() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level: %q (must be one of: debug, info, warn, error)", c.LogLevel)
	}
}

// Validate checks processing defaults.
func (p *ProcessingConfig) Validate() error {
	if p.MaxDimension < 0 {
		return fmt.Errorf("invalid max dimension: %d (must be >= 0)", p.MaxDimension)
	}
	if err := validateOddKernel("gaussian.kernel_size", p.Gaussian.KernelSize); err != nil {
		return err
	}
	if p.Gaussian.Sigma < 0 {
		return fmt.Errorf("invalid gaussian sigma: %g (must be >= 0)", p.Gaussian.Sigma)
	}
	if err := validateOddKernel("median.kernel_size", p.Median.KernelSize); err != nil {
		return err
	}
	if p.Sharpen.Strength <= 0 {
		return fmt.Errorf("invalid sharpen strength: %g (must be > 0)", p.Sharpen.Strength)
	}
	if p.Adaptive.BlockSize < 3 || p.Adaptive.BlockSize%2 == 0 {
		return fmt.Errorf("invalid adaptive block size: %d (must be odd and >= 3)", p.Adaptive.BlockSize)
	}
	if p.KMeans.Clusters < 2 {
		return fmt.Errorf("invalid kmeans clusters: %d (must be >= 2)", p.KMeans.Clusters)
	}
	if p.KMeans.Attempts < 1 {
		return fmt.Errorf("invalid kmeans attempts: %d (must be >= 1)", p.KMeans.Attempts)
	}
	if p.KMeans.MaxIter < 1 {
		return fmt.Errorf("invalid kmeans max iterations: %d (must be >= 1)", p.KMeans.MaxIter)
	}
	return nil
}

func validateOddKernel(name string, v int) error {
	if v < 1 || v%2 == 0 {
		return fmt.Errorf("invalid %s: %d (must be odd and >= 1)", name, v)
	}
	return nil
}

// Validate checks output settings.
func (o *OutputConfig) Validate() error {
	switch strings.ToLower(o.Format) {
	case "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("invalid output format: %q (must be png or jpeg)", o.Format)
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality: %d (must be between 1 and 100)", o.JPEGQuality)
	}
	return nil
}

// Validate checks server settings.
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", s.Port)
	}
	if s.MaxUploadMB < 1 {
		return fmt.Errorf("invalid max upload size: %d MB (must be >= 1)", s.MaxUploadMB)
	}
	if s.TimeoutSec < 1 {
		return fmt.Errorf("invalid timeout: %d (must be >= 1)", s.TimeoutSec)
	}
	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must be >= 0)", s.ShutdownTimeout)
	}
	return nil
}
