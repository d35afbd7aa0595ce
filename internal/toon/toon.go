// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/revitlint/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode renders analysis results in TOON format.
func Encode(files, declarations int, diags []model.Diagnostic) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("files: %d", files))
	parts = append(parts, fmt.Sprintf("declarations: %d", declarations))

	var diagRows [][]string
	for i := range diags {
		d := &diags[i]
		var name string
		if len(d.Arguments) > 0 {
			name = d.Arguments[0]
		}
		diagRows = append(diagRows, []string{
			d.Location.Path,
			strconv.Itoa(d.Location.Span.StartLine),
			strconv.Itoa(d.Location.Span.StartColumn),
			d.RuleID,
			string(d.Severity),
			name,
			d.Message,
		})
	}
	parts = append(parts, formatTabular("diagnostics", []string{"path", "line", "column", "rule", "severity", "name", "message"}, diagRows))

	var relatedRows [][]string
	for i := range diags {
		d := &diags[i]
		for j := range d.Related {
			r := &d.Related[j]
			relatedRows = append(relatedRows, []string{
				r.Location.Path,
				strconv.Itoa(r.Location.Span.StartLine),
				strconv.Itoa(r.Location.Span.StartColumn),
				d.RuleID,
				r.Message,
			})
		}
	}
	if len(relatedRows) > 0 {
		parts = append(parts, formatTabular("causes", []string{"path", "line", "column", "rule", "note"}, relatedRows))
	}

	return strings.Join(parts, "\n")
}

// EncodeRules renders rule descriptors in TOON format.
func EncodeRules(rules []model.Rule) string {
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{r.ID, string(r.Applies), string(r.Severity), r.Category, r.Title})
	}
	return formatTabular("rules", []string{"id", "applies", "severity", "category", "title"}, rows)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
