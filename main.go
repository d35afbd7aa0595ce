// revitlint reports C# ViewModels, Queries and QueryResults that depend on
// the Autodesk Revit API.
package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/revitlint/internal/check"
	"github.com/phobologic/revitlint/internal/config"
	"github.com/phobologic/revitlint/internal/report"
)

var version = "dev"

// errDiagnosticsFound signals a completed run that reported diagnostics.
var errDiagnosticsFound = errors.New("diagnostics reported")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errDiagnosticsFound):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

type configKey struct{}

type loggerKey struct{}

func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{Format: string(report.FormatText), MaxFileSize: check.DefaultMaxFileSize}
}

func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// skipConfig lists commands that run without loading configuration.
var skipConfig = map[string]bool{
	"help":       true,
	"completion": true,
	"__complete": true,
	"version":    true,
	"init":       true,
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "revitlint [paths...]",
		Short: "Keep ViewModels, Queries and QueryResults free of Revit API dependencies",
		Long: `revitlint analyzes C# sources and reports type declarations that break
the separation between the Revit API and the presentation and query layers:

  REVIT001  ViewModel types must not reference Autodesk.Revit
  REVIT002  Query types must not reference Autodesk.Revit
  REVIT003  QueryResult types must not reference Autodesk.Revit

Paths default to the current directory. The exit status is 1 when any
diagnostic is reported and 2 on errors.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipConfig[cmd.Name()] {
				return nil
			}

			cfg, err := config.Load(cfgFile, configStartDir(args), cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.FileUsed != "" {
				logger.Debug("using config file", "path", cfg.FileUsed)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: runCheck,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("revitlint {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .revitlint.yaml, searched upward)")
	pf.StringP("format", "f", "", "output format: text, json, toon")
	pf.StringSlice("exclude", nil, "gitignore-style pattern of paths to skip (repeatable)")
	pf.StringSlice("reference", nil, "reference catalog YAML file (repeatable)")
	pf.Int64("max-file-size", check.DefaultMaxFileSize, "skip files larger than this many bytes; negative disables")
	pf.IntP("concurrency", "j", 0, "parallel workers (default: GOMAXPROCS)")
	pf.String("cache", "", "cache file path")
	pf.BoolP("verbose", "v", false, "verbose logging")
	pf.Bool("exit-zero", false, "exit with status 0 even when diagnostics are reported")

	_ = root.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "toon"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(&cobra.Command{
		Use:   "check [paths...]",
		Short: "Analyze C# sources (the default command)",
		Args:  cobra.ArbitraryArgs,
		RunE:  runCheck,
	})
	root.AddCommand(newRulesCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "revitlint %s\n", version)
		},
	})

	return root
}

// configStartDir picks the directory the config file search starts from:
// the first path argument, or the working directory.
func configStartDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	info, err := os.Stat(args[0])
	if err == nil && info.IsDir() {
		return args[0]
	}
	return filepath.Dir(args[0])
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)
	stdout := cmd.OutOrStdout()

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	opts, err := cfg.CheckOptions()
	if err != nil {
		return err
	}
	opts.Logger = logger

	sources, err := check.Collect(args, opts.Exclude)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return check.ErrNoSourceFiles
	}

	if cfg.Cache != "" {
		if entry, ok := readCache(cfg.Cache, format, settingsHash(cfg), cacheInputs(cfg, sources)); ok {
			logger.Debug("using cached report", "path", cfg.Cache)
			if _, err := io.WriteString(stdout, entry.Output); err != nil {
				return err
			}
			return exitStatus(cfg, entry.Diagnostics)
		}
	}

	res, err := check.RunSources(ctx, sources, opts)
	if err != nil {
		return err
	}

	if cfg.Cache == "" {
		if err := report.Write(stdout, format, res); err != nil {
			return err
		}
		return exitStatus(cfg, len(res.Diagnostics))
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, res); err != nil {
		return err
	}
	if _, err := stdout.Write(buf.Bytes()); err != nil {
		return err
	}
	entry := cacheEntry{
		Version:     version,
		Format:      format,
		Settings:    settingsHash(cfg),
		Diagnostics: len(res.Diagnostics),
		Output:      buf.String(),
	}
	if err := writeCache(cfg.Cache, entry); err != nil {
		logger.Warn("failed to write cache", "path", cfg.Cache, "error", err)
	}
	return exitStatus(cfg, len(res.Diagnostics))
}

func exitStatus(cfg *config.Config, diagnostics int) error {
	if diagnostics > 0 && !cfg.ExitZero {
		return errDiagnosticsFound
	}
	return nil
}

// cacheEntry is the on-disk form of a cached report.
type cacheEntry struct {
	Version     string        `json:"version"`
	Format      report.Format `json:"format"`
	Settings    string        `json:"settings"`
	Diagnostics int           `json:"diagnostics"`
	Output      string        `json:"output"`
}

// settingsHash fingerprints the settings that change which files are read
// or how they are checked.
func settingsHash(cfg *config.Config) string {
	data, _ := json.Marshal(struct {
		Exclude     []string `json:"exclude"`
		References  []string `json:"references"`
		MaxFileSize int64    `json:"max_file_size"`
	}{cfg.Exclude, cfg.References, cfg.MaxFileSize})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// cacheInputs lists every file whose modification invalidates the cache.
func cacheInputs(cfg *config.Config, sources []check.Source) []string {
	inputs := make([]string, 0, len(sources)+len(cfg.References)+1)
	for _, s := range sources {
		inputs = append(inputs, s.Abs)
	}
	inputs = append(inputs, cfg.References...)
	if cfg.FileUsed != "" {
		inputs = append(inputs, cfg.FileUsed)
	}
	return inputs
}

func readCache(cachePath string, format report.Format, settings string, inputs []string) (cacheEntry, bool) {
	if !cacheIsFresh(cachePath, inputs) {
		return cacheEntry{}, false
	}
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return cacheEntry{}, false
	}
	if entry.Version != version || entry.Format != format || entry.Settings != settings {
		return cacheEntry{}, false
	}
	return entry, true
}

func writeCache(cachePath string, entry cacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(cachePath, data, 0o644)
}

func cacheIsFresh(cachePath string, inputs []string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, path := range inputs {
		fi, err := os.Stat(path)
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}
