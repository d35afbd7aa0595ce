// Package analyzer implements the Revit separation rules: it classifies
// ViewModel, Query and QueryResult declarations and reports those that
// depend on the Autodesk.Revit API.
//
// Every function in this package is a pure computation over its arguments.
// Declarations can be analyzed concurrently as long as the Binder is safe
// for concurrent reads.
package analyzer

import "github.com/phobologic/revitlint/internal/model"

// Rule IDs.
const (
	ViewModelDiagnosticID   = "REVIT001"
	QueryDiagnosticID       = "REVIT002"
	QueryResultDiagnosticID = "REVIT003"
)

// Category is shared by every rule.
const Category = "Architecture"

var (
	viewModelRule = model.Rule{
		ID:               ViewModelDiagnosticID,
		Title:            "ViewModel can not reference Revit",
		MessageFormat:    "ViewModel '{0}' can not contain references to Autodesk.Revit assemblies",
		Category:         Category,
		Severity:         model.SeverityError,
		EnabledByDefault: true,
		Description:      "ViewModels can not directly reference Revit assemblies to maintain proper separation of concerns.",
		Applies:          model.ViewModel,
	}

	queryRule = model.Rule{
		ID:               QueryDiagnosticID,
		Title:            "Query can not reference Revit",
		MessageFormat:    "Query '{0}' can not contain references to Autodesk.Revit assemblies",
		Category:         Category,
		Severity:         model.SeverityError,
		EnabledByDefault: true,
		Description:      "Query definitions can not directly reference Revit assemblies to maintain proper separation of concerns.",
		Applies:          model.Query,
	}

	queryResultRule = model.Rule{
		ID:               QueryResultDiagnosticID,
		Title:            "Query Result can not reference Revit",
		MessageFormat:    "QueryResult '{0}' can not contain references to Autodesk.Revit assemblies",
		Category:         Category,
		Severity:         model.SeverityError,
		EnabledByDefault: true,
		Description:      "Query Result objects can not directly reference Revit assemblies to maintain proper separation of concerns.",
		Applies:          model.QueryResult,
	}
)

// Rules returns the supported rules in ID order.
func Rules() []model.Rule {
	return []model.Rule{viewModelRule, queryRule, queryResultRule}
}

// RuleByID looks up a rule by its ID.
func RuleByID(id string) (model.Rule, bool) {
	for _, r := range Rules() {
		if r.ID == id {
			return r, true
		}
	}
	return model.Rule{}, false
}

// RuleFor returns the rule enforced for a classification. None has no rule.
func RuleFor(c model.Classification) (model.Rule, bool) {
	switch c {
	case model.ViewModel:
		return viewModelRule, true
	case model.Query:
		return queryRule, true
	case model.QueryResult:
		return queryResultRule, true
	}
	return model.Rule{}, false
}
