package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	karttaerrors "github.com/yairfalse/kartta/internal/errors"
	"github.com/yairfalse/kartta/internal/logger"
	"github.com/yairfalse/kartta/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kartta",
	Short: "Map your service architecture from request traces",
	Long: `KARTTA - the map your services draw for themselves.

Kartta reads the traces your services already emit, infers the service
architecture they imply, and tracks how that architecture drifts over time.
Like 'git diff' for your service map.

TYPICAL FLOW:
  kartta discover       # Fetch traces and infer the current architecture
  kartta drift a b      # Compare two architecture snapshots
  kartta history        # List recorded snapshots and their drift
  kartta trend          # Stability and growth across the history

Exit codes follow Unix conventions: drift comparisons exit 1 when the
detected drift is HIGH or CRITICAL, so CI pipelines can gate on them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			runVersion(cmd, []string{})
			return nil
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(karttaerrors.GetExitCode(err))
	}
}

func init() {
	rootCmd.SilenceErrors = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kartta/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("output", "text", "output format (text, json, yaml, markdown)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("version", false, "show version information")

	// Bind flags to viper
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	// Add subcommands
	rootCmd.AddCommand(newDiscoverCommand())
	rootCmd.AddCommand(newDriftCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newTrendCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return karttaerrors.New(karttaerrors.ErrorTypeConfiguration, karttaerrors.SourceConfig,
			"failed to load configuration").
			WithCause(err.Error()).
			WithSolutions(
				"Check the config file syntax",
				"Remove the config file to fall back to defaults",
			).
			WithHelp("kartta --help")
	}

	if err := cfg.ExpandPaths(); err != nil {
		return karttaerrors.New(karttaerrors.ErrorTypeConfiguration, karttaerrors.SourceConfig,
			"failed to expand config paths").WithCause(err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return karttaerrors.New(karttaerrors.ErrorTypeConfiguration, karttaerrors.SourceConfig,
			"configuration is invalid").
			WithCause(err.Error()).
			WithHelp("kartta --help")
	}

	return nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// newLogger builds the command logger from global flags and config.
func newLogger(cmd *cobra.Command) logger.Logger {
	level := cfg.Logging.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return logger.New(os.Stderr, level)
}

func noColorEnabled(cmd *cobra.Command) bool {
	if flagged, _ := cmd.Flags().GetBool("no-color"); flagged {
		return true
	}
	return cfg.Output.NoColor
}
