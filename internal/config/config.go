// Package config loads layered configuration: built-in defaults, then a YAML
// config file, then CARDBOX_* environment variables, then command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds every tunable setting.
type Config struct {
	// StorePath is the card collection JSON file.
	StorePath string `koanf:"store_path"`
	// QuizCount is the default maximum number of cards per session.
	QuizCount int `koanf:"quiz_count"`
	// DeckName names the deck in Anki exports.
	DeckName string `koanf:"deck_name"`
	// CacheDir holds local clones of git deck sources.
	CacheDir string `koanf:"cache_dir"`
}

// Default returns the built-in settings, rooted under ~/.cardbox.
func Default() Config {
	base := baseDir()
	return Config{
		StorePath: filepath.Join(base, "cards.json"),
		QuizCount: 10,
		DeckName:  "cardbox",
		CacheDir:  filepath.Join(base, "repos"),
	}
}

// DefaultFilePath is where Load looks for the YAML config file unless told
// otherwise.
func DefaultFilePath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cardbox")
}

// Load resolves the final configuration. A missing config file is fine;
// flags may be nil when no flag set participates.
func Load(configPath string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue("CARDBOX_", ".", func(key, value string) (string, interface{}) {
		return strings.ToLower(strings.TrimPrefix(key, "CARDBOX_")), value
	}), nil); err != nil {
		return cfg, fmt.Errorf("failed to load environment config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return cfg, fmt.Errorf("failed to load flag config: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
