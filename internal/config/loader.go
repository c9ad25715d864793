package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "imagelab"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "IMAGELAB"
)

// Loader handles loading configuration from files, environment
// variables, and command-line flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader backed by the global
// viper instance so that cobra flag bindings are visible.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from the default search paths, environment
// variables, and defaults, then validates the result.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Get returns a value from the configuration.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/imagelab")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "imagelab"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "imagelab"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("processing.max_dimension", defaults.Processing.MaxDimension)
	l.v.SetDefault("processing.gaussian.kernel_size", defaults.Processing.Gaussian.KernelSize)
	l.v.SetDefault("processing.gaussian.sigma", defaults.Processing.Gaussian.Sigma)
	l.v.SetDefault("processing.median.kernel_size", defaults.Processing.Median.KernelSize)
	l.v.SetDefault("processing.sharpen.strength", defaults.Processing.Sharpen.Strength)
	l.v.SetDefault("processing.adaptive.block_size", defaults.Processing.Adaptive.BlockSize)
	l.v.SetDefault("processing.adaptive.c", defaults.Processing.Adaptive.C)
	l.v.SetDefault("processing.kmeans.clusters", defaults.Processing.KMeans.Clusters)
	l.v.SetDefault("processing.kmeans.attempts", defaults.Processing.KMeans.Attempts)
	l.v.SetDefault("processing.kmeans.max_iter", defaults.Processing.KMeans.MaxIter)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.dir", defaults.Output.Dir)
	l.v.SetDefault("output.jpeg_quality", defaults.Output.JPEGQuality)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", "imagelab"))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "imagelab"))
	}

	paths = append(paths, "/etc/imagelab")

	return paths
}
