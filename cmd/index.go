package cmd

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagWorkers   int
	flagListFiles bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load the project and report which files are in scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openProject()
		if err != nil {
			return err
		}
		stats := idx.Stats()
		f := formatter(idx)

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Project %s\n\n", idx.Root())
		if p := idx.Project(); p != nil {
			fmt.Fprintf(&sb, "Config: `%s`\n\n", f.Relative(p.Path))
		} else {
			sb.WriteString("Config: none, using include/exclude globs\n\n")
		}
		fmt.Fprintf(&sb, "Files: %d total, %d loaded, %d skipped, %d with syntax errors  \n",
			stats.FilesTotal, stats.FilesLoaded, stats.FilesSkipped, stats.FilesWithErrors)
		fmt.Fprintf(&sb, "Done in %s\n", stats.Duration.Round(time.Millisecond))
		if flagListFiles {
			sb.WriteString("\n")
			for _, path := range idx.ListFiles() {
				fmt.Fprintf(&sb, "- `%s`\n", f.Relative(path))
			}
		}
		return printReport(sb.String())
	},
}

func init() {
	indexCmd.Flags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "parallel file readers")
	indexCmd.Flags().BoolVar(&flagListFiles, "files", false, "list every loaded file")
	rootCmd.AddCommand(indexCmd)
}
