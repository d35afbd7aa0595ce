// Package config loads revitlint settings from defaults, a .revitlint.yaml
// file, REVITLINT_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/phobologic/revitlint/internal/check"
	"github.com/phobologic/revitlint/internal/report"
	"github.com/phobologic/revitlint/internal/semantic"
)

// FileNames are the config file names searched for, in order.
var FileNames = []string{".revitlint.yaml", ".revitlint.yml"}

// EnvPrefix prefixes environment overrides: REVITLINT_MAX_FILE_SIZE -> max_file_size.
const EnvPrefix = "REVITLINT_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Config holds all settings.
type Config struct {
	Format      string   `koanf:"format"`
	Exclude     []string `koanf:"exclude"`
	References  []string `koanf:"references"`
	MaxFileSize int64    `koanf:"max_file_size"`
	Concurrency int      `koanf:"concurrency"`
	Cache       string   `koanf:"cache"`
	Verbose     bool     `koanf:"verbose"`
	ExitZero    bool     `koanf:"exit_zero"`

	// FileUsed is the config file that was loaded, if any.
	FileUsed string `koanf:"-"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"format":        string(report.FormatText),
		"exclude":       []string{},
		"references":    []string{},
		"max_file_size": check.DefaultMaxFileSize,
		"concurrency":   0,
		"cache":         "",
		"verbose":       false,
		"exit_zero":     false,
	}
}

// listKeys are comma separated when set through the environment.
var listKeys = map[string]struct{}{
	"exclude":    {},
	"references": {},
}

// flagKeys maps flag names whose config key differs from the snake-cased name.
var flagKeys = map[string]string{
	"reference": "references",
}

// Load resolves settings. Precedence (highest to lowest):
// flags > env vars > config file > defaults.
//
// cfgFile names an explicit config file; when empty, FileNames are searched
// in startDir and its parents. Relative reference and cache paths in a file
// are resolved against that file's directory.
func Load(cfgFile, startDir string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = findConfigUpward(startDir)
	}
	var fileDir string
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		if abs, err := filepath.Abs(cfgFile); err == nil {
			fileDir = filepath.Dir(abs)
		}
	}
	fileRefs := k.Strings("references")
	fileCache := k.String("cache")

	// 3. Load environment variables
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s, v string) (string, any) {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(v)
		}
		return key, v
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = cfgFile

	// Paths that came from the file are relative to it; later layers are
	// relative to the working directory.
	if fileDir != "" {
		if slices.Equal(cfg.References, fileRefs) {
			for i, r := range cfg.References {
				cfg.References[i] = resolvePathRelativeTo(r, fileDir)
			}
		}
		if cfg.Cache == fileCache {
			cfg.Cache = resolvePathRelativeTo(cfg.Cache, fileDir)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := report.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("invalid config: concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

// Catalogs loads the configured reference catalogs.
func (c *Config) Catalogs() ([]*semantic.Catalog, error) {
	var out []*semantic.Catalog
	for _, path := range c.References {
		cat, err := semantic.LoadCatalog(path)
		if err != nil {
			return nil, fmt.Errorf("loading reference catalog: %w", err)
		}
		out = append(out, cat)
	}
	return out, nil
}

// CheckOptions converts the settings into analysis options.
func (c *Config) CheckOptions() (check.Options, error) {
	cats, err := c.Catalogs()
	if err != nil {
		return check.Options{}, err
	}
	return check.Options{
		Exclude:     c.Exclude,
		References:  cats,
		MaxFileSize: c.MaxFileSize,
		Concurrency: c.Concurrency,
	}, nil
}

// findConfigUpward searches startDir and its parents for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
