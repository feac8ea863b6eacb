package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/artifact"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/clip"
)

var (
	latestCat  bool
	latestAll  bool
	latestCopy bool
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent crash artifact",
	RunE:  runLatest,
}

func init() {
	rootCmd.AddCommand(latestCmd)
	latestCmd.Flags().BoolVar(&latestCat, "cat", false, "print the artifact contents to stdout")
	latestCmd.Flags().BoolVar(&latestAll, "all", false, "list every artifact instead of only the newest")
	latestCmd.Flags().BoolVar(&latestCopy, "copy", false, "copy the artifact path to the clipboard")
}

func runLatest(_ *cobra.Command, _ []string) error {
	dir, prefix := artifactSettings()

	if latestAll {
		entries, err := artifact.List(dir, prefix)
		if err != nil {
			return fmt.Errorf("listing artifacts: %w", err)
		}
		if len(entries) == 0 {
			fmt.Printf("No artifacts for prefix %q in %s\n", prefix, dir)
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %8d  %s\n", e.ModTime.Format("2006-01-02 15:04:05"), e.Size, e.Path)
		}
		return nil
	}

	entry, err := artifact.Latest(dir, prefix)
	if err != nil {
		return fmt.Errorf("no artifacts for prefix %q in %s", prefix, dir)
	}

	if latestCat {
		data, err := artifact.Read(dir, entry.Name())
		if err != nil {
			return fmt.Errorf("reading artifact: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	fmt.Printf("%s  %8d  %s\n", entry.ModTime.Format("2006-01-02 15:04:05"), entry.Size, entry.Path)

	if latestCopy {
		res, err := clip.Copy(entry.Path)
		if err != nil {
			return fmt.Errorf("copying path: %w", err)
		}
		if res.Method == clip.MethodFile {
			fmt.Printf("Clipboard unavailable, path written to %s\n", res.FilePath)
		} else {
			fmt.Printf("Path copied (%s)\n", res.Method)
		}
	}
	return nil
}
