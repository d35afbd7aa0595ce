package analyzer

import (
	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/syntax"
)

// Sink receives reported diagnostics. Implementations must be safe for
// concurrent use when declarations are analyzed in parallel.
type Sink interface {
	Report(d model.Diagnostic)
}

// Analyzable reports whether decl is a kind the rules apply to: classes and
// records, including record structs.
func Analyzable(decl *syntax.TypeDecl) bool {
	return decl != nil && (decl.Kind == syntax.ClassDecl || decl.Kind == syntax.RecordDecl)
}

// Analyze runs the rules against one declaration and returns the diagnostic
// it produces, if any. At most one diagnostic is produced per declaration.
// A declaration whose symbol cannot be bound is skipped entirely.
func Analyze(decl *syntax.TypeDecl, b Binder) (model.Diagnostic, bool) {
	if !Analyzable(decl) || b == nil {
		return model.Diagnostic{}, false
	}
	sym := b.DeclaredSymbol(decl)
	if sym == nil {
		return model.Diagnostic{}, false
	}
	rule, ok := Classify(decl, sym, b)
	if !ok {
		return model.Diagnostic{}, false
	}
	ref := FindForbiddenReference(decl, b)
	if ref == nil {
		return model.Diagnostic{}, false
	}
	return NewDiagnostic(rule, decl, ref), true
}

// AnalyzeInto analyzes decl and reports the result to sink.
func AnalyzeInto(decl *syntax.TypeDecl, b Binder, sink Sink) bool {
	d, ok := Analyze(decl, b)
	if ok {
		sink.Report(d)
	}
	return ok
}

// NewDiagnostic builds the diagnostic for a violation of rule by decl,
// located at the declaration's identifier. cause, when non-nil, is attached
// as related information.
func NewDiagnostic(rule model.Rule, decl *syntax.TypeDecl, cause *Reference) model.Diagnostic {
	var path string
	if decl.File != nil {
		path = decl.File.Path
	}
	d := model.Diagnostic{
		RuleID:    rule.ID,
		Severity:  rule.Severity,
		Message:   rule.Format(decl.Name),
		Location:  model.Location{Path: path, Span: decl.NameSpan},
		Arguments: []string{decl.Name},
	}
	if cause != nil {
		d.Related = []model.RelatedInfo{{
			Location: model.Location{Path: path, Span: cause.Span},
			Message:  cause.Describe(),
		}}
	}
	return d
}
