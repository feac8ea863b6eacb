package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/crashtrap"
)

var (
	initForce bool
	initPath  string
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default configuration file",
	Long: `Write a crashtrap.yaml with the default configuration. The file is
searched for in the current directory and $HOME/.config/crashtrap.`,
	RunE: runInitConfig,
}

// configFile mirrors the keys every command reads through viper.
type configFile struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Artifacts struct {
		Dir    string `yaml:"dir"`
		Prefix string `yaml:"prefix"`
		Max    int    `yaml:"max"`
	} `yaml:"artifacts"`
	Debugger struct {
		Name        string `yaml:"name"`
		FrameOffset int    `yaml:"frame_offset"`
	} `yaml:"debugger"`
	Collector struct {
		Addr   string `yaml:"addr"`
		Listen struct {
			Host string `yaml:"host"`
			Port int    `yaml:"port"`
		} `yaml:"listen"`
		Dir string `yaml:"dir"`
	} `yaml:"collector"`
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
	initConfigCmd.Flags().StringVar(&initPath, "path", "crashtrap.yaml", "where to write the configuration")
}

func defaultConfigFile() configFile {
	defaults := crashtrap.DefaultConfig()

	var cfg configFile
	cfg.Log.Level = "info"
	cfg.Log.Format = "auto"
	cfg.Artifacts.Dir = defaults.ArtifactDir
	cfg.Artifacts.Prefix = defaults.Prefix
	cfg.Artifacts.Max = defaults.MaxArtifacts
	cfg.Debugger.Name = defaults.Debugger
	cfg.Debugger.FrameOffset = defaults.FrameOffset
	cfg.Collector.Addr = "http://localhost:8480"
	cfg.Collector.Listen.Host = "localhost"
	cfg.Collector.Listen.Port = 8480
	cfg.Collector.Dir = defaultCollectorDir()
	return cfg
}

func runInitConfig(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(initPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", initPath)
	}

	data, err := yaml.Marshal(defaultConfigFile())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	header := []byte("# crashtrap configuration\n\n")
	if err := atomicWriteFile(initPath, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Println("Wrote", initPath)
	fmt.Println("Run 'crashtrap doctor' to verify the setup")
	return nil
}
