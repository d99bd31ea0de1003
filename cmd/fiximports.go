package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsrefactor/internal/fiximports"
	"tsrefactor/internal/tui"
)

var flagFixCheck bool

var fixImportsCmd = &cobra.Command{
	Use:   "fix-imports",
	Short: "Add missing imports for names exported elsewhere in the project",
	Long: "Scan every file for unresolved names and modules. Names with exactly one exported " +
		"match are imported automatically; with several, a picker is shown on a terminal and the " +
		"name is skipped otherwise.",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openProject()
		if err != nil {
			return err
		}
		analysis, err := fiximports.Analyze(idx)
		if err != nil {
			return err
		}
		f := formatter(idx)
		if flagFixCheck || len(analysis.Fixable) == 0 {
			return printReport(f.Imports(analysis))
		}

		for _, fix := range analysis.Fixable {
			if len(fix.Candidates) < 2 {
				continue
			}
			if !interactive() {
				fmt.Fprintln(os.Stderr, tui.Warn(fmt.Sprintf("skipping %s in %s: %d candidates",
					fix.Error.MissingName, f.Relative(fix.Error.File), len(fix.Candidates))))
				continue
			}
			title := fmt.Sprintf("Import %s into %s", fix.Error.MissingName, f.Relative(fix.Error.File))
			items := make([]tui.Item, len(fix.Candidates))
			for i, c := range fix.Candidates {
				items[i] = tui.EntityItem(idx.Root(), c)
			}
			i, err := tui.Pick(title, items, tui.Options{Output: os.Stderr})
			if err != nil {
				return err
			}
			if i >= 0 {
				fix.Selected = fix.Candidates[i]
			}
		}

		res, err := fiximports.FixMultiple(idx, analysis.Fixable, fiximports.Options{Quote: settings.QuoteByte()})
		if err != nil {
			return err
		}
		md := f.Fixes(res)
		if len(analysis.Unfixable) > 0 {
			md += "\n" + f.Imports(&fiximports.Analysis{Unfixable: analysis.Unfixable})
		}
		return printReport(md)
	},
}

func init() {
	fixImportsCmd.Flags().BoolVar(&flagFixCheck, "check", false, "report problems without changing files")
	rootCmd.AddCommand(fixImportsCmd)
}
