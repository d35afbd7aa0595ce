package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/toon"
)

// ruleJSON is the JSON shape of a rule descriptor.
type ruleJSON struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	MessageFormat    string `json:"message_format"`
	Category         string `json:"category"`
	Severity         string `json:"severity"`
	EnabledByDefault bool   `json:"enabled_by_default"`
	Description      string `json:"description"`
	Applies          string `json:"applies_to"`
}

func toRuleJSON(r model.Rule) ruleJSON {
	return ruleJSON{
		ID:               r.ID,
		Title:            r.Title,
		MessageFormat:    r.MessageFormat,
		Category:         r.Category,
		Severity:         string(r.Severity),
		EnabledByDefault: r.EnabledByDefault,
		Description:      r.Description,
		Applies:          string(r.Applies),
	}
}

// WriteRules renders a rule listing.
func WriteRules(w io.Writer, format Format, rules []model.Rule) error {
	switch format {
	case FormatJSON:
		out := make([]ruleJSON, len(rules))
		for i, r := range rules {
			out[i] = toRuleJSON(r)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Rules []ruleJSON `json:"rules"`
		}{out})
	case FormatTOON:
		_, err := fmt.Fprintln(w, toon.EncodeRules(rules))
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Applies to", "Severity", "Category", "Title"})
	for _, r := range rules {
		t.AppendRow(table.Row{r.ID, r.Applies, r.Severity, r.Category, r.Title})
	}
	t.Render()
	return nil
}

// WriteRule renders the full descriptor of one rule.
func WriteRule(w io.Writer, format Format, r model.Rule) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toRuleJSON(r))
	case FormatTOON:
		_, err := fmt.Fprintln(w, toon.EncodeRules([]model.Rule{r}))
		return err
	}

	s := newStyles(w)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", s.header.Render(r.ID+" - "+r.Title))
	fmt.Fprintf(&b, "  %s: %s\n", s.bold.Render("Applies to"), r.Applies)
	fmt.Fprintf(&b, "  %s: %s\n", s.bold.Render("Category"), r.Category)
	fmt.Fprintf(&b, "  %s: %s\n", s.bold.Render("Severity"), s.severity(r.Severity).Render(string(r.Severity)))
	fmt.Fprintf(&b, "  %s: %t\n\n", s.bold.Render("Enabled by default"), r.EnabledByDefault)
	fmt.Fprintf(&b, "%s\n  %s\n\n", s.bold.Render("Description"), r.Description)
	fmt.Fprintf(&b, "%s\n  %s\n", s.bold.Render("Message"), r.MessageFormat)
	_, err := io.WriteString(w, b.String())
	return err
}
