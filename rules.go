package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/revitlint/internal/analyzer"
	"github.com/phobologic/revitlint/internal/report"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the rules revitlint enforces",
		Example: `  # List all rules
  revitlint rules

  # Show details for a specific rule
  revitlint rules REVIT002

  # Output as JSON
  revitlint rules -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(getConfig(cmd.Context()).Format)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return report.WriteRules(cmd.OutOrStdout(), format, analyzer.Rules())
			}
			rule, ok := analyzer.RuleByID(strings.ToUpper(args[0]))
			if !ok {
				return fmt.Errorf("rule %q not found", args[0])
			}
			return report.WriteRule(cmd.OutOrStdout(), format, rule)
		},
	}
}
