package cmd

import (
	"github.com/spf13/cobra"

	"tsrefactor/internal/extract"
)

var extractSelector entitySelector

var extractCmd = &cobra.Command{
	Use:   "extract <name> <target-file>",
	Short: "Move an entity to another file and rewire its imports",
	Long: "Move a top-level declaration to target-file, creating it if needed. " +
		"The imports it depends on move with it and every importer is pointed at the new file.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openProject()
		if err != nil {
			return err
		}
		e, err := extractSelector.resolve(idx, args[0])
		if err != nil {
			return err
		}
		res, err := extract.Extract(idx, e, args[1])
		if err != nil {
			return err
		}
		return printReport(formatter(idx).Extract(res))
	},
}

func init() {
	extractSelector.register(extractCmd)
	rootCmd.AddCommand(extractCmd)
}
