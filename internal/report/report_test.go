package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/revitlint/internal/analyzer"
	"github.com/phobologic/revitlint/internal/check"
	"github.com/phobologic/revitlint/internal/model"
)

func sampleResult() *check.Result {
	return &check.Result{
		Files:        3,
		Declarations: 5,
		Diagnostics: []model.Diagnostic{
			{
				RuleID:    analyzer.ViewModelDiagnosticID,
				Severity:  model.SeverityError,
				Message:   "ViewModel 'HomeViewModel' can not contain references to Autodesk.Revit assemblies",
				Location:  model.Location{Path: "src/HomeViewModel.cs", Span: model.Span{StartLine: 5, StartColumn: 18}},
				Arguments: []string{"HomeViewModel"},
				Related: []model.RelatedInfo{{
					Location: model.Location{Path: "src/HomeViewModel.cs", Span: model.Span{StartLine: 7, StartColumn: 16}},
					Message:  "property 'RevitDocument' has type Autodesk.Revit.DB.Document",
				}},
			},
			{
				RuleID:    analyzer.QueryDiagnosticID,
				Severity:  model.SeverityError,
				Message:   "Query 'GetElementIdQuery' can not contain references to Autodesk.Revit assemblies",
				Location:  model.Location{Path: "src/Queries.cs", Span: model.Span{StartLine: 3, StartColumn: 15}},
				Arguments: []string{"GetElementIdQuery"},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON, "toon": FormatTOON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("sarif")
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sampleResult()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "src/HomeViewModel.cs:5:18: error REVIT001: ViewModel 'HomeViewModel' can not contain references to Autodesk.Revit assemblies", lines[0])
	assert.Equal(t, "    src/HomeViewModel.cs:7:16: note: property 'RevitDocument' has type Autodesk.Revit.DB.Document", lines[1])
	assert.Equal(t, "src/Queries.cs:3:15: error REVIT002: Query 'GetElementIdQuery' can not contain references to Autodesk.Revit assemblies", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "2 problems (REVIT001: 1, REVIT002: 1) in 3 files, 5 declarations", lines[4])
}

func TestWriteTextClean(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, &check.Result{Files: 1, Declarations: 1}))
	assert.Equal(t, "No problems found (1 file, 1 declaration)\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleResult()))

	var got struct {
		Files        int                `json:"files"`
		Declarations int                `json:"declarations"`
		Diagnostics  []model.Diagnostic `json:"diagnostics"`
		Count        map[string]int     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.Files)
	assert.Equal(t, 5, got.Declarations)
	assert.Equal(t, sampleResult().Diagnostics, got.Diagnostics)
	assert.Equal(t, map[string]int{"REVIT001": 1, "REVIT002": 1}, got.Count)

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, &check.Result{}))
	assert.Contains(t, buf.String(), `"diagnostics": []`)
}

func TestWriteTOON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTOON, sampleResult()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "files: 3\ndeclarations: 5\ndiagnostics[2]"))
	assert.Contains(t, out, "causes[1]")
}

func TestWriteRules(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteRules(&buf, FormatText, analyzer.Rules()))
	out := buf.String()
	for _, r := range analyzer.Rules() {
		assert.Contains(t, out, r.ID)
		assert.Contains(t, out, r.Title)
	}

	buf.Reset()
	require.NoError(t, WriteRules(&buf, FormatJSON, analyzer.Rules()))
	var listed struct {
		Rules []struct {
			ID      string `json:"id"`
			Applies string `json:"applies_to"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &listed))
	require.Len(t, listed.Rules, 3)
	assert.Equal(t, "REVIT003", listed.Rules[2].ID)
	assert.Equal(t, "QueryResult", listed.Rules[2].Applies)

	buf.Reset()
	require.NoError(t, WriteRules(&buf, FormatTOON, analyzer.Rules()))
	assert.True(t, strings.HasPrefix(buf.String(), "rules[3]{id,applies,severity,category,title}:"))
}

func TestWriteRule(t *testing.T) {
	t.Parallel()

	r, ok := analyzer.RuleByID(analyzer.QueryResultDiagnosticID)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, WriteRule(&buf, FormatText, r))
	out := buf.String()
	assert.Contains(t, out, "REVIT003 - Query Result can not reference Revit")
	assert.Contains(t, out, r.Description)
	assert.Contains(t, out, r.MessageFormat)

	buf.Reset()
	require.NoError(t, WriteRule(&buf, FormatJSON, r))
	assert.Contains(t, buf.String(), `"message_format": "QueryResult '{0}' can not contain references to Autodesk.Revit assemblies"`)
}
