// Package tui is the interactive crash-artifact browser: a selectable list
// of the artifact directory's dumps with a raw-text viewer overlay.
// Artifact contents are displayed verbatim.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/artifact"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/clip"
)

// maxViewBytes caps how much of an artifact the viewer loads.
const maxViewBytes = 1024 * 1024

// Injectable for tests.
var copyText = clip.Copy

// Model is the browser's bubbletea model.
type Model struct {
	dir    string
	prefix string

	entries  []artifact.Entry
	selected int

	viewport viewport.Model
	viewing  bool
	viewName string

	width  int
	height int
	ready  bool

	status string
	err    error
}

// New creates a browser over the artifacts for prefix in dir.
func New(dir, prefix string) Model {
	m := Model{dir: dir, prefix: prefix}
	m.reload()
	return m
}

func (m *Model) reload() {
	entries, err := artifact.List(m.dir, m.prefix)
	m.entries = entries
	m.err = err
	if m.selected >= len(entries) {
		m.selected = len(entries) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 4
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.viewing {
		switch msg.String() {
		case "q", "esc":
			m.viewing = false
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		case "c":
			m.copySelected()
			return m, nil
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.entries)-1 {
			m.selected++
		}
	case "enter":
		m.openSelected()
	case "c":
		m.copySelected()
	case "r":
		m.reload()
		m.status = "Reloaded"
	}
	return m, nil
}

func (m *Model) openSelected() {
	if len(m.entries) == 0 {
		return
	}
	entry := m.entries[m.selected]

	data, err := artifact.Read(m.dir, entry.Name())
	if err != nil {
		m.status = fmt.Sprintf("Cannot read %s: %v", entry.Name(), err)
		return
	}

	truncated := false
	if len(data) > maxViewBytes {
		data = data[:maxViewBytes]
		truncated = true
	}

	content := string(data)
	if truncated {
		content += fmt.Sprintf("\n\n[truncated, showing first %d bytes]\n", maxViewBytes)
	}

	m.viewName = entry.Name()
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
	m.viewing = true
	m.status = ""
}

func (m *Model) copySelected() {
	if len(m.entries) == 0 {
		return
	}
	path := m.entries[m.selected].Path

	res, err := copyText(path)
	if err != nil {
		m.status = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	switch res.Method {
	case clip.MethodFile:
		m.status = fmt.Sprintf("Clipboard unavailable, path written to %s", res.FilePath)
	default:
		m.status = fmt.Sprintf("Path copied (%s)", res.Method)
	}
}

// View renders the browser.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.viewing {
		var b strings.Builder
		b.WriteString(viewerTitleStyle.Render(m.viewName))
		b.WriteString("\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("↑/↓ scroll · c copy path · q back"))
		if m.status != "" {
			b.WriteString("  ")
			b.WriteString(statusStyle.Render(m.status))
		}
		return b.String()
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Crash artifacts — %s (prefix %q)", m.dir, m.prefix)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(fmt.Sprintf("Error: %v\n", m.err))
	}

	if len(m.entries) == 0 {
		b.WriteString(mutedStyle.Render("No artifacts yet."))
		b.WriteString("\n")
	}

	for i, e := range m.entries {
		row := fmt.Sprintf("%s  %8s  %s",
			e.ModTime.Format("2006-01-02 15:04:05"),
			formatSize(e.Size),
			e.Name(),
		)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + row))
		} else {
			b.WriteString(rowStyle.Render("  " + row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("↑/↓ select · enter view · c copy path · r reload · q quit"))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}
	return b.String()
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
