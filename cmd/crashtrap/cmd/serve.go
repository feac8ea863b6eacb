package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/collector"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the crash-report collector server",
	Long: `Run a small HTTP server that accepts crash-artifact uploads, spools
them to disk and indexes their metadata. Clients reach it through
'crashtrap submit' or 'crashtrap watch --submit'.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen-host", "", "host to listen on")
	serveCmd.Flags().Int("listen-port", 0, "port to listen on")
	serveCmd.Flags().String("dir", "", "spool directory for received reports")

	_ = viper.BindPFlag("collector.listen.host", serveCmd.Flags().Lookup("listen-host"))
	_ = viper.BindPFlag("collector.listen.port", serveCmd.Flags().Lookup("listen-port"))
	_ = viper.BindPFlag("collector.dir", serveCmd.Flags().Lookup("dir"))
}

func runServe(_ *cobra.Command, _ []string) error {
	logger := newLogger()

	dir := viper.GetString("collector.dir")
	if dir == "" {
		dir = defaultCollectorDir()
	}

	store, err := collector.NewStore(dir)
	if err != nil {
		return fmt.Errorf("opening report store: %w", err)
	}
	defer func() { _ = store.Close() }()

	cfg := collector.DefaultConfig()
	if host := viper.GetString("collector.listen.host"); host != "" {
		cfg.Host = host
	}
	if port := viper.GetInt("collector.listen.port"); port != 0 {
		cfg.Port = port
	}

	srv := collector.NewServer(cfg, store, logger.WithComponent("collector").Logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	logger.Info("collector serving", "addr", srv.Addr(), "dir", dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	stop()

	return srv.Shutdown(context.Background())
}
