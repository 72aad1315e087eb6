package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// AppName is used for the config directory and environment variable prefix.
const AppName = "doc-search"

// FileConfig holds defaults read from a TOML file. Pointer fields are nil when
// the key is absent, so callers can tell "unset" from a zero value.
type FileConfig struct {
	CaseSensitive  *bool    `toml:"case_sensitive"`
	WholeWord      *bool    `toml:"whole_word"`
	Regex          *bool    `toml:"regex"`
	Fuzzy          *bool    `toml:"fuzzy"`
	FuzzyThreshold *int     `toml:"fuzzy_threshold"`
	Context        *int     `toml:"context"`
	Workers        *int     `toml:"workers"`
	Format         string   `toml:"format"`
	Recursive      *bool    `toml:"recursive"`
	Extended       *bool    `toml:"extended"`
	Exclude        []string `toml:"exclude"`
	Color          *bool    `toml:"color"`
	LogLevel       string   `toml:"log_level"`
}

// DefaultPath returns $XDG_CONFIG_HOME/doc-search/config.toml (or the
// platform equivalent). It returns "" when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, "config.toml")
}

// LoadFile decodes the TOML file at path. When optional is true a missing
// file yields an empty config instead of an error. Unknown keys are an error.
func LoadFile(path string, optional bool) (*FileConfig, error) {
	cfg := &FileConfig{}
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}
