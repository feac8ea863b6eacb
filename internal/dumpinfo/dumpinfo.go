// Package dumpinfo supplies the contextual sections of a crash artifact:
// a precomputed system/program header and a bounded ring of recent log
// records.
//
// All system probing happens in New, at install time. The write methods
// only print state that already exists, so they are safe to call from a
// fault handler.
package dumpinfo

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Options configures Info collection.
type Options struct {
	// Version is the host program's version string. Empty means the main
	// module version from build info, when available.
	Version string

	// Ring is the recent-log buffer rendered by WriteRecentLog. Nil means
	// the log section degrades to an explanatory note.
	Ring *Ring

	// SkipHardware disables the host/CPU/memory/GPU probes. Probing is
	// best-effort anyway; this exists for tests and minimal environments.
	SkipHardware bool
}

// Info holds everything the artifact's header and log sections need,
// captured once at install time.
type Info struct {
	header string
	ring   *Ring
}

// New captures program identity, runtime details and host hardware for
// argv. Hardware probes are best-effort: anything that fails is simply
// omitted from the header.
func New(argv []string, opts Options) *Info {
	var b strings.Builder

	program := ""
	if len(argv) > 0 {
		program = argv[0]
	}
	fmt.Fprintf(&b, "Program: %s\n", program)
	fmt.Fprintf(&b, "Command line: %s\n", strings.Join(argv, " "))
	fmt.Fprintf(&b, "Version: %s\n", versionString(opts.Version))
	fmt.Fprintf(&b, "Dump ID: %s\n", uuid.New().String())
	fmt.Fprintf(&b, "PID: %d\n", os.Getpid())
	fmt.Fprintf(&b, "Started: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if rev := vcsRevision(); rev != "" {
		fmt.Fprintf(&b, "Build: %s\n", rev)
	}

	if !opts.SkipHardware {
		writeHostLine(&b)
		writeCPULine(&b)
		writeMemoryLine(&b)
		writeGPULines(&b)
	}

	return &Info{
		header: b.String(),
		ring:   opts.Ring,
	}
}

// WriteHeader writes the precomputed header block.
func (i *Info) WriteHeader(w io.Writer) error {
	_, err := io.WriteString(w, i.header)
	return err
}

// WriteRecentLog renders the ring's records, oldest first. When no ring is
// attached, or the ring is mid-write at fault time, an explanatory note is
// written instead; the section never blocks.
func (i *Info) WriteRecentLog(w io.Writer) error {
	if i.ring == nil {
		_, err := io.WriteString(w, "No log history available.\n")
		return err
	}
	return i.ring.writeTo(w)
}

func versionString(v string) string {
	if v != "" {
		return v
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "unknown"
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev, modified string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				modified = " (modified)"
			}
		}
	}
	if rev == "" {
		return ""
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev + modified
}

func writeHostLine(b *strings.Builder) {
	info, err := host.Info()
	if err != nil {
		return
	}
	fmt.Fprintf(b, "OS: %s %s %s (kernel %s) %s\n",
		info.OS, info.Platform, info.PlatformVersion, info.KernelVersion, info.KernelArch)
	fmt.Fprintf(b, "Host: %s\n", info.Hostname)
}

func writeCPULine(b *strings.Builder) {
	infos, err := cpu.Info()
	if err != nil || len(infos) == 0 {
		return
	}
	model := strings.TrimSpace(infos[0].ModelName)
	cores, _ := cpu.Counts(false)
	threads, _ := cpu.Counts(true)
	fmt.Fprintf(b, "CPU: %s (%d cores, %d threads)\n", model, cores, threads)
}

func writeMemoryLine(b *strings.Builder) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return
	}
	fmt.Fprintf(b, "Memory: %.0f MB total, %.0f MB used (%.1f%%)\n",
		float64(vm.Total)/1024/1024, float64(vm.Used)/1024/1024, vm.UsedPercent)
}

func writeGPULines(b *strings.Builder) {
	info, err := ghw.GPU()
	if err != nil || info == nil {
		return
	}
	for _, card := range info.GraphicsCards {
		name := ""
		if card.DeviceInfo != nil {
			switch {
			case card.DeviceInfo.Vendor != nil && card.DeviceInfo.Product != nil:
				name = strings.TrimSpace(card.DeviceInfo.Vendor.Name + " " + card.DeviceInfo.Product.Name)
			case card.DeviceInfo.Product != nil:
				name = strings.TrimSpace(card.DeviceInfo.Product.Name)
			case card.DeviceInfo.Vendor != nil:
				name = strings.TrimSpace(card.DeviceInfo.Vendor.Name)
			}
		}
		if name == "" {
			name = fmt.Sprintf("GPU %d", card.Index)
		}
		fmt.Fprintf(b, "GPU: %s\n", name)
	}
}
