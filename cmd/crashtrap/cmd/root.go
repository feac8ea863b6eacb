package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/crashtrap"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "crashtrap",
	Short: "Capture fatal faults into shareable dump files",
	Long: `crashtrap hooks the process-wide fatal-fault path and writes a dump
file when the program dies: identity header, fault description, recent
log, Go runtime backtrace and (where gdb is available) an extended
native backtrace.

The CLI doubles as a workbench around those dump files: crash a process
on purpose, inspect and watch the artifact directory, run a small
collector server, and submit artifacts to one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: crashtrap.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().String("artifact-dir", "",
		"directory crash artifacts are written to (default: system temp dir)")
	rootCmd.PersistentFlags().String("prefix", "",
		"artifact filename prefix (default: executable name)")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("artifacts.dir", rootCmd.PersistentFlags().Lookup("artifact-dir"))
	_ = viper.BindPFlag("artifacts.prefix", rootCmd.PersistentFlags().Lookup("prefix"))
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("crashtrap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/crashtrap")
	}

	viper.SetEnvPrefix("CRASHTRAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setConfigDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	return nil
}

func setConfigDefaults() {
	viper.SetDefault("artifacts.max", 10)
	viper.SetDefault("debugger.name", "gdb")
	viper.SetDefault("debugger.frame_offset", 4)
	viper.SetDefault("collector.addr", "http://localhost:8480")
	viper.SetDefault("collector.listen.host", "localhost")
	viper.SetDefault("collector.listen.port", 8480)
	viper.SetDefault("collector.dir", defaultCollectorDir())
}

func defaultCollectorDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "crashtrap", "reports")
	}
	return filepath.Join(os.TempDir(), "crashtrap-reports")
}

// newLogger builds the process logger from the effective configuration.
func newLogger() *logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = viper.GetString("log.level")
	cfg.Format = viper.GetString("log.format")
	return logging.New(cfg)
}

// artifactSettings resolves the artifact directory and prefix the same way
// handler installation would.
func artifactSettings() (dir, prefix string) {
	defaults := crashtrap.DefaultConfig()
	dir = viper.GetString("artifacts.dir")
	if dir == "" {
		dir = defaults.ArtifactDir
	}
	prefix = viper.GetString("artifacts.prefix")
	if prefix == "" {
		prefix = defaults.Prefix
	}
	return dir, prefix
}
