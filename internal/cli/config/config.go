package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dphaener/golisp/internal/environment"
)

// Config holds golisp's project-level settings, loaded from golisp.yml or
// golisp.yaml.
type Config struct {
	Scoping ScopingConfig `mapstructure:"scoping"`
	Numeric NumericConfig `mapstructure:"numeric"`
	Repl    ReplConfig    `mapstructure:"repl"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// ScopingConfig selects lexical or dynamic ufunc scoping.
type ScopingConfig struct {
	Mode string `mapstructure:"mode"`
}

// NumericConfig controls the decimal backing type's rounding.
type NumericConfig struct {
	Precision int32 `mapstructure:"precision"`
}

// ReplConfig holds the repl.stdin setting. The repl command does not read
// it: its input file comes only from its own --stdin flag.
type ReplConfig struct {
	Stdin string `mapstructure:"stdin"`
}

// WatchConfig controls `golisp run --watch`'s file matching.
type WatchConfig struct {
	Patterns   []string `mapstructure:"patterns"`
	DebounceMs int      `mapstructure:"debounce_ms"`
	IgnoreDirs []string `mapstructure:"ignore_dirs"`
}

// Load loads configuration from golisp.yml or golisp.yaml in the current
// directory, falling back to defaults when no config file is present.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("scoping.mode", "lexical")
	v.SetDefault("numeric.precision", 11)
	v.SetDefault("repl.stdin", "")
	v.SetDefault("watch.patterns", []string{"*.lisp", "*.lsp"})
	v.SetDefault("watch.debounce_ms", 200)
	v.SetDefault("watch.ignore_dirs", []string{".git", "build"})

	v.SetConfigName("golisp")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GOLISP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ScopingMode translates the config string into an environment.Scoping.
func (c *Config) ScopingMode() (environment.Scoping, error) {
	switch strings.ToLower(c.Scoping.Mode) {
	case "", "lexical":
		return environment.Lexical, nil
	case "dynamic":
		return environment.Dynamic, nil
	default:
		return 0, fmt.Errorf("scoping.mode must be \"lexical\" or \"dynamic\", got: %s", c.Scoping.Mode)
	}
}

// InProject reports whether the current directory is a golisp project: it
// has a golisp.yml/golisp.yaml, or at least one guest source file.
func InProject() bool {
	if _, err := os.Stat("golisp.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("golisp.yaml"); err == nil {
		return true
	}
	matches, _ := filepath.Glob("*.lisp")
	return len(matches) > 0
}

// GetProjectRoot walks upward from the working directory looking for
// golisp.yml/golisp.yaml.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "golisp.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "golisp.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a golisp project (no golisp.yml found)")
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	if _, err := cfg.ScopingMode(); err != nil {
		return err
	}
	if cfg.Numeric.Precision < 1 {
		return fmt.Errorf("numeric.precision must be positive, got: %d", cfg.Numeric.Precision)
	}
	return nil
}
