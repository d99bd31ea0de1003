package cmd

import (
	"github.com/spf13/cobra"

	"tsrefactor/internal/unused"
)

var (
	flagUnusedExports bool
	flagUnusedPrivate bool
	flagUnusedStats   bool
	flagEntryPoints   []string
)

var unusedCmd = &cobra.Command{
	Use:   "unused",
	Short: "Report entities nothing references",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := settings.UnusedOptions()
		if cmd.Flags().Changed("entry") {
			opts.EntryPoints = flagEntryPoints
		}

		idx, err := openProject()
		if err != nil {
			return err
		}
		var results []unused.Result
		switch {
		case flagUnusedExports && !flagUnusedPrivate:
			results, err = unused.FindUnusedExports(idx, opts)
		case flagUnusedPrivate && !flagUnusedExports:
			results, err = unused.FindUnusedPrivate(idx, opts)
		default:
			results, err = unused.FindUnused(idx, opts)
		}
		if err != nil {
			return err
		}

		f := formatter(idx)
		if flagUnusedStats {
			return printReport("## Unused entities\n\n" + f.Stats(unused.Summarize(results)))
		}
		return printReport(f.Unused(results))
	},
}

func init() {
	unusedCmd.Flags().BoolVar(&flagUnusedExports, "exports", false, "only exported entities")
	unusedCmd.Flags().BoolVar(&flagUnusedPrivate, "private", false, "only non-exported entities")
	unusedCmd.Flags().BoolVar(&flagUnusedStats, "stats", false, "print counts only")
	unusedCmd.Flags().StringSliceVar(&flagEntryPoints, "entry", nil, "entry-point file names (default index, main)")
	rootCmd.AddCommand(unusedCmd)
}
