package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/config"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "imagelab",
	Short: "Image filtering and segmentation toolkit",
	Long: `Apply predefined filtering and segmentation techniques to images.

Four filters (grayscale, gaussian-blur, median-blur, sharpen) and three
segmentation techniques (otsu-threshold, adaptive-threshold,
kmeans-cluster) are available, all backed by OpenCV.

Examples:
  imagelab process --technique gaussian-blur photo.jpg
  imagelab process --technique otsu-threshold *.png --output-dir out/
  imagelab techniques --format json
  imagelab serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.PersistentFlags().GetBool("version")
		if v {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "imagelab", version.String())
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/imagelab, /etc/imagelab)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}

		var logLevel slog.Level
		if globalConfig.Verbose {
			logLevel = slog.LevelDebug
		} else {
			switch globalConfig.LogLevel {
			case "debug":
				logLevel = slog.LevelDebug
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}

	// Re-unmarshal so flag bindings registered after the initial load
	// are reflected.
	loader := GetConfigLoader()
	var cfg config.Config
	if err := loader.GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}

	return &cfg
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}
