package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/crashtrap"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/whereis"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the crash capture setup",
	Long:  "Verify that the pieces of the capture pipeline are available on this machine.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type probe struct {
	name     string
	required bool
	run      func(ctx context.Context) (string, error)
}

type probeResult struct {
	detail string
	err    error
}

func runDoctor(_ *cobra.Command, _ []string) error {
	dir, prefix := artifactSettings()
	debugger := viper.GetString("debugger.name")
	collectorAddr := viper.GetString("collector.addr")

	probes := []probe{
		{
			name:     "platform fault hook",
			required: true,
			run: func(context.Context) (string, error) {
				return probePlatform()
			},
		},
		{
			name:     "artifact directory",
			required: true,
			run: func(context.Context) (string, error) {
				return probeArtifactDir(dir)
			},
		},
		{
			name:     "program path",
			required: true,
			run: func(context.Context) (string, error) {
				path, err := os.Executable()
				if err != nil {
					return "", fmt.Errorf("not resolvable: %w", err)
				}
				return path, nil
			},
		},
		{
			name: fmt.Sprintf("debugger (%s)", debugger),
			run: func(context.Context) (string, error) {
				path, ok := whereis.Locate(debugger)
				if !ok {
					return "", fmt.Errorf("not found in PATH, extended backtraces disabled")
				}
				return path, nil
			},
		},
		{
			name: "collector server",
			run: func(ctx context.Context) (string, error) {
				return probeCollector(ctx, collectorAddr)
			},
		},
	}

	fmt.Println("Checking crash capture setup...")
	fmt.Println()

	results := make([]probeResult, len(probes))
	g, gctx := errgroup.WithContext(context.Background())
	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			detail, err := p.run(gctx)
			results[i] = probeResult{detail: detail, err: err}
			return nil
		})
	}
	_ = g.Wait()

	requiredOk := true
	for i, p := range probes {
		res := results[i]
		icon := "✓"
		detail := res.detail
		suffix := ""

		if res.err != nil {
			detail = res.err.Error()
			if p.required {
				icon = "✗"
				requiredOk = false
			} else {
				icon = "○"
				suffix = " (optional)"
			}
		}

		if detail != "" {
			fmt.Printf("  %s %s: %s%s\n", icon, p.name, detail, suffix)
		} else {
			fmt.Printf("  %s %s%s\n", icon, p.name, suffix)
		}
	}

	fmt.Println()
	fmt.Printf("Artifacts: %s (prefix %q)\n", dir, prefix)
	fmt.Println()

	if !requiredOk {
		fmt.Println("Some required pieces are missing")
		return fmt.Errorf("doctor check failed")
	}

	fmt.Println("Crash capture is ready")
	return nil
}

func probePlatform() (string, error) {
	if len(crashtrap.DefaultSignals()) > 0 {
		return fmt.Sprintf("%s signal handler", runtime.GOOS), nil
	}
	if runtime.GOOS == "windows" {
		return "windows exception filter", nil
	}
	return "", fmt.Errorf("no fault hook on %s", runtime.GOOS)
}

func probeArtifactDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("not creatable: %w", err)
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return "", fmt.Errorf("not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return dir, nil
}

func probeCollector(ctx context.Context, addr string) (string, error) {
	if addr == "" {
		return "", fmt.Errorf("not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := strings.TrimRight(addr, "/") + "/healthz"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("bad address: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unhealthy: %s", resp.Status)
	}
	return addr, nil
}
