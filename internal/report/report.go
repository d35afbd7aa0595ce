// Package report renders analysis results and rule descriptors.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/phobologic/revitlint/internal/check"
	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/toon"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOON Format = "toon"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatTOON}

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (want text, json or toon)", s)
}

type styles struct {
	path    lipgloss.Style
	error   lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	rule    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	header  lipgloss.Style
	bold    lipgloss.Style
}

// newStyles binds styles to w so color is only emitted on terminals.
func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	return &styles{
		path:    r.NewStyle().Bold(true),
		error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.Color("14")),
		rule:    r.NewStyle().Foreground(lipgloss.Color("13")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
		success: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		header:  r.NewStyle().Bold(true).Underline(true),
		bold:    r.NewStyle().Bold(true),
	}
}

func (s *styles) severity(sev model.Severity) lipgloss.Style {
	switch sev {
	case model.SeverityError:
		return s.error
	case model.SeverityWarning:
		return s.warning
	default:
		return s.info
	}
}

// Write renders res to w.
func Write(w io.Writer, format Format, res *check.Result) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatTOON:
		_, err := fmt.Fprintln(w, toon.Encode(res.Files, res.Declarations, res.Diagnostics))
		return err
	default:
		return writeText(w, res)
	}
}

func writeText(w io.Writer, res *check.Result) error {
	s := newStyles(w)
	var b strings.Builder

	for _, d := range res.Diagnostics {
		fmt.Fprintf(&b, "%s: %s %s: %s\n",
			s.path.Render(position(d.Location)),
			s.severity(d.Severity).Render(string(d.Severity)),
			s.rule.Render(d.RuleID),
			d.Message,
		)
		for _, r := range d.Related {
			fmt.Fprintf(&b, "    %s: %s\n",
				s.muted.Render(position(r.Location)),
				s.muted.Render("note: "+r.Message),
			)
		}
	}

	if len(res.Diagnostics) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(summary(s, res))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func summary(s *styles, res *check.Result) string {
	scope := fmt.Sprintf("%s, %s", plural(res.Files, "file"), plural(res.Declarations, "declaration"))
	if len(res.Diagnostics) == 0 {
		return s.success.Render("No problems found") + " " + s.muted.Render("("+scope+")")
	}

	counts := res.CountByRule()
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s: %d", id, counts[id])
	}

	return fmt.Sprintf("%s %s %s",
		s.error.Render(plural(len(res.Diagnostics), "problem")),
		"("+strings.Join(parts, ", ")+")",
		s.muted.Render("in "+scope),
	)
}

func position(l model.Location) string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Span.StartLine, l.Span.StartColumn)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// jsonReport is the JSON output structure for a run.
type jsonReport struct {
	Files        int                `json:"files"`
	Declarations int                `json:"declarations"`
	Skipped      []string           `json:"skipped,omitempty"`
	Diagnostics  []model.Diagnostic `json:"diagnostics"`
	Count        map[string]int     `json:"count"`
}

func writeJSON(w io.Writer, res *check.Result) error {
	out := jsonReport{
		Files:        res.Files,
		Declarations: res.Declarations,
		Skipped:      res.Skipped,
		Diagnostics:  res.Diagnostics,
		Count:        res.CountByRule(),
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []model.Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
