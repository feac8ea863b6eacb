// Package clip copies text (artifact paths, mostly) to wherever the user
// can paste it from: the native clipboard, the terminal via OSC52, or a
// temp file when neither works.
package clip

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Method is the mechanism that ended up holding the copied text.
type Method string

const (
	MethodNative Method = "native" // OS clipboard via github.com/atotto/clipboard
	MethodOSC52  Method = "osc52"  // terminal clipboard via OSC52 escape sequence
	MethodFile   Method = "file"   // temp file fallback
)

// Result reports how the text was made pasteable.
type Result struct {
	Method   Method
	FilePath string // only set when Method == MethodFile
}

// These vars exist for testability.
var (
	nativeCopy = func(text string) error { return atotto.WriteAll(text) }
	osc52Copy  = copyOSC52
)

// Copy makes text pasteable, trying the native clipboard first, then the
// OSC52 terminal sequence (covers SSH and WSL sessions), then a temp file.
func Copy(text string) (Result, error) {
	if err := nativeCopy(text); err == nil {
		return Result{Method: MethodNative}, nil
	}

	if err := osc52Copy(text); err == nil {
		return Result{Method: MethodOSC52}, nil
	}

	path, err := copyToFile(text)
	if err != nil {
		return Result{}, err
	}
	return Result{Method: MethodFile, FilePath: path}, nil
}

// Terminals commonly cap OSC52 payloads; stay under the usual limits.
const osc52LimitBytes = 100_000

func copyOSC52(text string) error {
	if text == "" {
		return errors.New("empty clipboard text")
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return errors.New("stderr is not a terminal")
	}
	if len(text) > osc52LimitBytes {
		return fmt.Errorf("text too large for OSC52 (%d bytes > %d)", len(text), osc52LimitBytes)
	}

	seq := osc52.New(text).Limit(osc52LimitBytes)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if os.Getenv("STY") != "" {
		seq = seq.Screen()
	}

	// Stderr so the sequence does not land in bubbletea's stdout renderer.
	_, err := seq.WriteTo(os.Stderr)
	return err
}

func copyToFile(text string) (path string, err error) {
	f, err := os.CreateTemp("", "crashtrap-clipboard-*.txt")
	if err != nil {
		return "", err
	}
	path = f.Name()
	defer func() {
		_ = f.Close()
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = f.WriteString(text); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}

	return filepath.Clean(path), nil
}
