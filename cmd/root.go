package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tsrefactor/internal/config"
	"tsrefactor/internal/entity"
	"tsrefactor/internal/index"
	"tsrefactor/internal/report"
	"tsrefactor/internal/search"
	"tsrefactor/internal/tui"
)

var (
	flagRoot          string
	flagTSConfig      string
	flagSettings      string
	flagInclude       []string
	flagExclude       []string
	flagRequireConfig bool
	flagVerbose       bool
	flagNoInput       bool
)

var (
	logger   *logrus.Logger
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:           "tsrefactor",
	Short:         "Project-wide refactoring for TypeScript",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		if flagVerbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}

		s, err := config.Load(flagRoot, flagSettings)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("include") {
			s.Include = flagInclude
		}
		if cmd.Flags().Changed("exclude") {
			s.Exclude = flagExclude
		}
		if cmd.Flags().Changed("require-config") {
			s.RequireConfig = flagRequireConfig
		}
		settings = s
		if s.File != "" {
			logger.WithField("file", s.File).Debug("settings loaded")
		}
		return nil
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tui.Error("error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagRoot, "root", ".", "project root directory")
	pf.StringVar(&flagTSConfig, "tsconfig", "", "tsconfig.json path (default <root>/tsconfig.json if present)")
	pf.StringVar(&flagSettings, "settings", "", "settings file (default <root>/"+config.FileName+" or ~/"+config.FileName+")")
	pf.StringSliceVar(&flagInclude, "include", nil, "include globs when no tsconfig is used")
	pf.StringSliceVar(&flagExclude, "exclude", nil, "exclude globs when no tsconfig is used")
	pf.BoolVar(&flagRequireConfig, "require-config", false, "fail when no tsconfig.json is found")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&flagNoInput, "no-input", false, "never prompt, even on a terminal")
}

// openProject loads the project index, with a spinner on a terminal.
func openProject() (*index.Index, error) {
	cfg := settings.IndexConfig(flagRoot, flagTSConfig)
	cfg.Logger = logger
	cfg.Workers = flagWorkers
	idx := index.New(cfg)
	if interactive() {
		if _, err := tui.LoadWithSpinner(idx, tui.Options{Output: os.Stderr}); err != nil {
			return nil, err
		}
		return idx, nil
	}
	if _, err := idx.Load(); err != nil {
		return nil, err
	}
	return idx, nil
}

func interactive() bool {
	return !flagNoInput && report.IsTerminal(os.Stdin) && report.IsTerminal(os.Stderr)
}

func printReport(md string) error {
	return report.Write(os.Stdout, md)
}

func formatter(idx *index.Index) report.Formatter {
	return report.Formatter{Root: idx.Root()}
}

// entitySelector narrows a name to one entity.
type entitySelector struct {
	file string
	line int
	kind string
}

func (s *entitySelector) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.file, "file", "", "only entities whose path contains this")
	cmd.Flags().IntVar(&s.line, "line", 0, "only the entity declared on this line")
	cmd.Flags().StringVar(&s.kind, "kind", "", "only entities of this kind")
}

// resolve finds the single entity named name. Several matches are offered
// in the picker on a terminal and rejected otherwise.
func (s *entitySelector) resolve(idx *index.Index, name string) (*entity.Entity, error) {
	var kind entity.Kind
	if s.kind != "" {
		k, err := entity.ParseKind(s.kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	found, err := search.Exact(idx, name)
	if err != nil {
		return nil, err
	}
	var matches []*entity.Entity
	for _, e := range found {
		if s.file != "" && !strings.Contains(e.FilePath, s.file) {
			continue
		}
		if (s.line != 0 && e.Line != s.line) || (kind != 0 && e.Kind != kind) {
			continue
		}
		matches = append(matches, e)
	}

	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(matches) == 0:
		return nil, fmt.Errorf("no entity named %s", name)
	case interactive():
		e, err := tui.PickEntity(idx.Root(), matches, tui.Options{Output: os.Stderr})
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, errors.New("cancelled")
		}
		return e, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d entities named %s; narrow with --file, --line or --kind:", len(matches), name)
	for _, e := range matches {
		item := tui.EntityItem(idx.Root(), e)
		fmt.Fprintf(&b, "\n  %s (%s)", item.Label, item.Detail)
	}
	return nil, errors.New(b.String())
}
