package cmd

import (
	"github.com/spf13/cobra"

	"tsrefactor/internal/rename"
)

var (
	refsSelector   entitySelector
	renameSelector entitySelector
	flagDryRun     bool
)

var refsCmd = &cobra.Command{
	Use:   "refs <name>",
	Short: "List every reference to an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openProject()
		if err != nil {
			return err
		}
		e, err := refsSelector.resolve(idx, args[0])
		if err != nil {
			return err
		}
		refs, err := rename.Preview(idx, e)
		if err != nil {
			return err
		}
		return printReport(formatter(idx).References(e, refs))
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename an entity and every reference to it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openProject()
		if err != nil {
			return err
		}
		e, err := renameSelector.resolve(idx, args[0])
		if err != nil {
			return err
		}
		if flagDryRun {
			refs, err := rename.Preview(idx, e)
			if err != nil {
				return err
			}
			return printReport(formatter(idx).References(e, refs))
		}
		res, err := rename.Rename(idx, e, args[1])
		if err != nil {
			return err
		}
		return printReport(formatter(idx).Rename(res))
	},
}

func init() {
	refsSelector.register(refsCmd)
	renameSelector.register(renameCmd)
	renameCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "list the references that would change")
	rootCmd.AddCommand(refsCmd, renameCmd)
}
