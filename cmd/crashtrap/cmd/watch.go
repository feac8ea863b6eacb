package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/artifact"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/collector"
)

var watchSubmit bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the artifact directory for new crash dumps",
	Long: `Watch the artifact directory and report every new crash artifact as it
appears. With --submit, each finished artifact is also uploaded to the
configured collector server.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchSubmit, "submit", false,
		"upload new artifacts to the collector server")
}

func runWatch(_ *cobra.Command, _ []string) error {
	logger := newLogger()
	dir, prefix := artifactSettings()
	serverURL := viper.GetString("collector.addr")

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for crash artifacts",
		"dir", dir,
		"prefix", prefix,
		"submit", watchSubmit,
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !artifact.Matches(name, prefix) {
				continue
			}

			// The crashing process is still appending sections;
			// it dies when the artifact is complete.
			waitForQuiet(ctx, event.Name)

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			logger.Info("new crash artifact", "path", event.Name, "size", info.Size())

			if !watchSubmit {
				continue
			}
			hostname, _ := os.Hostname()
			rep, err := collector.Submit(ctx, serverURL, event.Name, collector.Meta{
				Program:  prefix,
				Hostname: hostname,
			})
			if err != nil {
				logger.Error("submitting artifact failed",
					"path", event.Name,
					"error", err,
				)
				continue
			}
			logger.Info("artifact submitted", "id", rep.ID, "server", serverURL)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// waitForQuiet waits until the file size stops changing between polls, or
// the context is cancelled.
func waitForQuiet(ctx context.Context, path string) {
	var last int64 = -1
	for i := 0; i < 60; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == last {
			return
		}
		last = info.Size()
	}
}
