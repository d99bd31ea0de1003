// Package config loads tool settings from .tsrefactor.yaml and TSREFACTOR_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"tsrefactor/internal/index"
	"tsrefactor/internal/unused"
)

// FileName is the settings file looked up in the project root, then $HOME.
const FileName = ".tsrefactor.yaml"

// Settings are the tool-level options. CLI flags override them.
type Settings struct {
	Include          []string `mapstructure:"include"`
	Exclude          []string `mapstructure:"exclude"`
	EntryPoints      []string `mapstructure:"entry_points"`
	Globals          []string `mapstructure:"globals"`
	DefinitionWindow int      `mapstructure:"definition_window"`
	// Quote is "single", "double" or empty to follow each file.
	Quote         string `mapstructure:"quote"`
	RequireConfig bool   `mapstructure:"require_config"`

	// File is the settings file that was read, if any.
	File string `mapstructure:"-"`
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	return &Settings{
		EntryPoints:      append([]string(nil), unused.DefaultEntryPoints...),
		DefinitionWindow: 1,
	}
}

// Load reads settings for the project at root. An explicit path must exist;
// otherwise a missing settings file leaves the defaults in place.
func Load(root, path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	s := Default()
	v.SetDefault("include", s.Include)
	v.SetDefault("exclude", s.Exclude)
	v.SetDefault("entry_points", s.EntryPoints)
	v.SetDefault("globals", s.Globals)
	v.SetDefault("definition_window", s.DefinitionWindow)
	v.SetDefault("quote", s.Quote)
	v.SetDefault("require_config", s.RequireConfig)

	v.SetEnvPrefix("TSREFACTOR")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		if root != "" {
			v.AddConfigPath(root)
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	s.File = v.ConfigFileUsed()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks enumerated values.
func (s *Settings) Validate() error {
	switch s.Quote {
	case "", "single", "double":
	default:
		return fmt.Errorf("settings: quote must be single or double, got %q", s.Quote)
	}
	if s.DefinitionWindow < 0 {
		return fmt.Errorf("settings: definition_window must not be negative")
	}
	return nil
}

// QuoteByte maps Quote to the character used in rendered imports, or zero.
func (s *Settings) QuoteByte() byte {
	switch s.Quote {
	case "single":
		return '\''
	case "double":
		return '"'
	}
	return 0
}

// IndexConfig builds the project index configuration for root.
func (s *Settings) IndexConfig(root, tsconfigPath string) index.Config {
	cfg := index.Config{
		Root:          root,
		ConfigPath:    tsconfigPath,
		RequireConfig: s.RequireConfig,
		Include:       s.Include,
		Globals:       s.Globals,
	}
	// An empty list from the settings file keeps the default excludes.
	if len(s.Exclude) > 0 {
		cfg.Exclude = s.Exclude
	}
	return cfg
}

// UnusedOptions builds the unused-detector options.
func (s *Settings) UnusedOptions() unused.Options {
	return unused.Options{
		EntryPoints:      s.EntryPoints,
		DefinitionWindow: s.DefinitionWindow,
	}
}
