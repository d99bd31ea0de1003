package cmd

import (
	"github.com/spf13/cobra"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/search"
)

var (
	flagSearchRegex    bool
	flagSearchKind     string
	flagSearchFile     string
	flagSearchExported bool
	flagSearchPrivate  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [name]",
	Short: "Find entities by name, kind, export state or file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := search.Options{Regex: flagSearchRegex, File: flagSearchFile}
		if len(args) == 1 {
			opts.Name = args[0]
		}
		if flagSearchKind != "" {
			k, err := entity.ParseKind(flagSearchKind)
			if err != nil {
				return err
			}
			opts.Kind = k
		}
		switch {
		case flagSearchExported && !flagSearchPrivate:
			opts.Exported = search.Bool(true)
		case flagSearchPrivate && !flagSearchExported:
			opts.Exported = search.Bool(false)
		}

		idx, err := openProject()
		if err != nil {
			return err
		}
		res, err := search.Search(idx, opts)
		if err != nil {
			return err
		}
		return printReport(formatter(idx).Search(res))
	},
}

func init() {
	searchCmd.Flags().BoolVarP(&flagSearchRegex, "regex", "r", false, "treat name as a regular expression")
	searchCmd.Flags().StringVarP(&flagSearchKind, "kind", "k", "", "function, class, variable, interface, type or enum")
	searchCmd.Flags().StringVarP(&flagSearchFile, "file", "f", "", "only files whose path contains this")
	searchCmd.Flags().BoolVar(&flagSearchExported, "exported", false, "only exported entities")
	searchCmd.Flags().BoolVar(&flagSearchPrivate, "private", false, "only non-exported entities")
	rootCmd.AddCommand(searchCmd)
}
