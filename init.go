package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/revitlint/internal/check"
	"github.com/phobologic/revitlint/internal/config"
	"github.com/phobologic/revitlint/internal/report"
)

const (
	sentinelStart = "# revitlint:start"
	sentinelEnd   = "# revitlint:end"
)

func newInitCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-config]",
		Short: "Write a default configuration block",
		Long: `Write the default revitlint settings to a config file. The block is wrapped
in sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-config defaults to ./` + config.FileNames[0] + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := generateSection()
			if err != nil {
				return err
			}

			// --dry-run with no path: just print the section itself.
			if dryRun && len(args) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), section)
				return nil
			}

			path := config.FileNames[0]
			if len(args) > 0 {
				path = args[0]
			}

			existing, _ := os.ReadFile(path)
			updated := applySection(string(existing), section)

			if dryRun {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), updated)
				return nil
			}

			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote revitlint settings to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

// initSettings is the block written by init, in file order.
type initSettings struct {
	Format      string   `yaml:"format"`
	Exclude     []string `yaml:"exclude"`
	References  []string `yaml:"references"`
	MaxFileSize int64    `yaml:"max_file_size"`
	Concurrency int      `yaml:"concurrency"`
}

// generateSection returns the full sentinel-wrapped settings block.
func generateSection() (string, error) {
	body, err := yaml.Marshal(initSettings{
		Format:      string(report.FormatText),
		Exclude:     []string{"*.Tests/"},
		References:  []string{},
		MaxFileSize: check.DefaultMaxFileSize,
	})
	if err != nil {
		return "", fmt.Errorf("encoding settings: %w", err)
	}

	header := `# revitlint settings. Keys:
#   format         text, json or toon
#   exclude        gitignore-style patterns of paths to skip
#   references     extra reference catalogs (YAML) listing external types
#   max_file_size  skip larger files (bytes); negative disables the limit
#   concurrency    parallel workers; 0 uses every CPU
`
	return sentinelStart + "\n" + header + strings.TrimRight(string(body), "\n") + "\n" + sentinelEnd, nil
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if content == "" {
		return section + "\n"
	}
	// Append, ensuring a blank line separator.
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
