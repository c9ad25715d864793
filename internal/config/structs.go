package config

// Config represents the complete configuration for the imagelab
// application. It covers all commands (process, techniques, serve) and
// supports loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Processing configuration
	Processing ProcessingConfig `mapstructure:"processing" yaml:"processing" json:"processing"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// ProcessingConfig contains defaults for the seven techniques and the
// shared pre-processing stage.
type ProcessingConfig struct {
	// Inputs larger than this on either axis are downscaled before the
	// technique runs. Zero disables downscaling.
	MaxDimension int `mapstructure:"max_dimension" yaml:"max_dimension" json:"max_dimension"`

	Gaussian GaussianConfig `mapstructure:"gaussian" yaml:"gaussian" json:"gaussian"`
	Median   MedianConfig   `mapstructure:"median" yaml:"median" json:"median"`
	Sharpen  SharpenConfig  `mapstructure:"sharpen" yaml:"sharpen" json:"sharpen"`
	Adaptive AdaptiveConfig `mapstructure:"adaptive" yaml:"adaptive" json:"adaptive"`
	KMeans   KMeansConfig   `mapstructure:"kmeans" yaml:"kmeans" json:"kmeans"`
}

// GaussianConfig contains Gaussian blur defaults.
type GaussianConfig struct {
	KernelSize int     `mapstructure:"kernel_size" yaml:"kernel_size" json:"kernel_size"`
	Sigma      float64 `mapstructure:"sigma" yaml:"sigma" json:"sigma"`
}

// MedianConfig contains median blur defaults.
type MedianConfig struct {
	KernelSize int `mapstructure:"kernel_size" yaml:"kernel_size" json:"kernel_size"`
}

// SharpenConfig contains sharpening defaults.
type SharpenConfig struct {
	Strength float64 `mapstructure:"strength" yaml:"strength" json:"strength"`
}

// AdaptiveConfig contains adaptive threshold defaults.
type AdaptiveConfig struct {
	BlockSize int     `mapstructure:"block_size" yaml:"block_size" json:"block_size"`
	C         float64 `mapstructure:"c" yaml:"c" json:"c"`
}

// KMeansConfig contains k-means segmentation defaults.
type KMeansConfig struct {
	Clusters int `mapstructure:"clusters" yaml:"clusters" json:"clusters"`
	Attempts int `mapstructure:"attempts" yaml:"attempts" json:"attempts"`
	MaxIter  int `mapstructure:"max_iter" yaml:"max_iter" json:"max_iter"`
}

// OutputConfig contains output settings for the process command.
type OutputConfig struct {
	// Format of the result image written to disk: png or jpeg.
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// Directory results are written to when --output is not given.
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
	// JPEG quality (1-100) when Format is jpeg.
	JPEGQuality int `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}
