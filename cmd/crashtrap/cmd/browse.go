package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse crash artifacts interactively",
	Long: `Open an interactive browser over the artifact directory: pick a dump
from the list, read its raw contents, copy its path.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(_ *cobra.Command, _ []string) error {
	dir, prefix := artifactSettings()

	p := tea.NewProgram(
		tui.New(dir, prefix),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
