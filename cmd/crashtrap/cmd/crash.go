package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/crashtrap"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/dumpinfo"
)

var crashSignal string

var crashCmd = &cobra.Command{
	Use:   "crash",
	Short: "Crash this process on purpose",
	Long: `Install the fault handler, then raise the chosen fatal signal against
this process. The handler writes a dump file and the process dies with
the signal's default disposition, exactly as a real crash would.

Useful for verifying the capture pipeline end to end: run it, then
inspect the artifact with 'crashtrap latest --cat'.`,
	RunE: runCrash,
}

func init() {
	rootCmd.AddCommand(crashCmd)
	crashCmd.Flags().StringVar(&crashSignal, "signal", "SIGSEGV",
		"fatal signal to raise (SIGSEGV, SIGABRT, SIGBUS, ...)")
}

func runCrash(_ *cobra.Command, _ []string) error {
	logger := newLogger()
	dir, prefix := artifactSettings()

	h, err := crashtrap.Install(crashtrap.Config{
		ArtifactDir:  dir,
		Prefix:       prefix,
		Version:      appVersion,
		Debugger:     viper.GetString("debugger.name"),
		FrameOffset:  viper.GetInt("debugger.frame_offset"),
		MaxArtifacts: viper.GetInt("artifacts.max"),
		Info: dumpinfo.New(os.Args, dumpinfo.Options{
			Version: appVersion,
			Ring:    logger.Ring(),
		}),
		Logger: logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("installing handler: %w", err)
	}
	if !h.Active() {
		return fmt.Errorf("fault capture is not active on this platform")
	}

	// A few records so the artifact's recent-log section has content.
	logger.Info("crash requested", "signal", crashSignal)
	logger.Info("artifact directory", "dir", h.ArtifactDir(), "prefix", h.Prefix())
	logger.Warn("raising fatal signal against this process")

	return raiseSelf(crashSignal)
}
