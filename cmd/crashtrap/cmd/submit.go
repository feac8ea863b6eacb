package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/collector"
)

var (
	submitProgram string
	submitSignal  string
)

var submitCmd = &cobra.Command{
	Use:   "submit <artifact>",
	Short: "Upload a crash artifact to the collector server",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVar(&submitProgram, "program", "", "program name to record with the report")
	submitCmd.Flags().StringVar(&submitSignal, "signal", "", "signal name to record with the report")
	submitCmd.Flags().String("server", "", "collector server URL")

	_ = viper.BindPFlag("collector.addr", submitCmd.Flags().Lookup("server"))
}

func runSubmit(_ *cobra.Command, args []string) error {
	serverURL := viper.GetString("collector.addr")
	hostname, _ := os.Hostname()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rep, err := collector.Submit(ctx, serverURL, args[0], collector.Meta{
		Program:  submitProgram,
		Signal:   submitSignal,
		Hostname: hostname,
	})
	if err != nil {
		return fmt.Errorf("submitting %s: %w", args[0], err)
	}

	fmt.Printf("Submitted %s\n", args[0])
	fmt.Printf("  id:     %s\n", rep.ID)
	fmt.Printf("  sha256: %s\n", rep.SHA256)
	fmt.Printf("  server: %s\n", serverURL)
	return nil
}
