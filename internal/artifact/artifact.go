// Package artifact manages crash dump files on disk: collision-safe
// creation at fault time, fixed-path creation for minidumps, listing,
// and install-time pruning.
//
// Artifacts are plain files in a flat directory, named with a
// program-identifying prefix: <prefix>.gdmp-<unique> for text dumps,
// <prefix>.mdmp for the single Windows minidump.
package artifact

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	textInfix     = ".gdmp-"
	minidumpExt   = ".mdmp"
	lockName      = ".prune.lock"
	dirPerm       = 0o750
	minidumpPerm  = 0o600
	defaultPrefix = "crashtrap"
)

// Entry describes one artifact on disk.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Name returns the artifact's base filename.
func (e Entry) Name() string {
	return filepath.Base(e.Path)
}

// Create opens a new uniquely named text artifact in dir. The directory is
// created on demand; a collision with an existing file is impossible by
// construction. Called at fault time only.
func Create(dir, prefix string) (*os.File, error) {
	dir, prefix = applyDefaults(dir, prefix)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}
	f, err := os.CreateTemp(dir, prefix+textInfix+"*")
	if err != nil {
		return nil, fmt.Errorf("creating artifact: %w", err)
	}
	return f, nil
}

// FixedPath returns the single fixed minidump path for dir and prefix.
func FixedPath(dir, prefix string) string {
	dir, prefix = applyDefaults(dir, prefix)
	return filepath.Join(dir, prefix+minidumpExt)
}

// CreateFixed truncate-creates the fixed-path artifact, overwriting any
// previous crash's file.
func CreateFixed(dir, prefix string) (*os.File, error) {
	dir, prefix = applyDefaults(dir, prefix)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}
	f, err := os.OpenFile(FixedPath(dir, prefix), os.O_RDWR|os.O_CREATE|os.O_TRUNC, minidumpPerm)
	if err != nil {
		return nil, fmt.Errorf("creating artifact: %w", err)
	}
	return f, nil
}

// List returns all artifacts for prefix in dir, newest first. A missing
// directory is reported as an empty list, not an error.
func List(dir, prefix string) ([]Entry, error) {
	dir, prefix = applyDefaults(dir, prefix)
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading artifact dir: %w", err)
	}

	var entries []Entry
	for _, e := range dirents {
		if e.IsDir() || !Matches(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Latest returns the newest artifact for prefix in dir.
func Latest(dir, prefix string) (Entry, error) {
	entries, err := List(dir, prefix)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("no artifacts found")
	}
	return entries[0], nil
}

// Read returns the contents of the named artifact. The name is resolved
// strictly inside dir, so a crafted name cannot escape the artifact
// directory.
func Read(dir, name string) ([]byte, error) {
	dir, _ = applyDefaults(dir, "")
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening artifact dir: %w", err)
	}
	defer func() { _ = root.Close() }()

	data, err := root.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	return data, nil
}

// Prune removes the oldest artifacts beyond keep. It runs at install time
// only, under an advisory file lock so concurrently starting processes do
// not race; when another process holds the lock the prune is skipped.
// Removal failures are logged and never escalated.
func Prune(dir, prefix string, keep int, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if keep <= 0 {
		keep = 10
	}
	dir, prefix = applyDefaults(dir, prefix)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	lock := flock.New(filepath.Join(dir, prefix+lockName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking artifact dir: %w", err)
	}
	if !locked {
		return nil
	}
	defer func() { _ = lock.Unlock() }()

	entries, err := List(dir, prefix)
	if err != nil {
		return err
	}
	for _, old := range entries[min(keep, len(entries)):] {
		if err := os.Remove(old.Path); err != nil {
			logger.Warn("failed to remove old artifact",
				"path", old.Path,
				"error", err,
			)
		}
	}
	return nil
}

// Matches reports whether a base filename is an artifact for prefix.
func Matches(name, prefix string) bool {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return strings.HasPrefix(name, prefix+textInfix) || name == prefix+minidumpExt
}

func applyDefaults(dir, prefix string) (string, string) {
	if dir == "" {
		dir = os.TempDir()
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return dir, prefix
}
