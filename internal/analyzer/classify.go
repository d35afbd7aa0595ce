package analyzer

import (
	"strings"

	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/syntax"
)

// suffixRule matches declaration names ending in suffix but not in exclude.
type suffixRule struct {
	suffix  string
	exclude string
	class   model.Classification
}

// Evaluated top to bottom; "FooQueryResult" must never classify as Query.
var suffixTable = []suffixRule{
	{suffix: "ViewModel", class: model.ViewModel},
	{suffix: "Query", exclude: "QueryResult", class: model.Query},
	{suffix: "QueryResult", class: model.QueryResult},
}

var markerInterfaces = []struct {
	name  string
	class model.Classification
}{
	{"IQuery", model.Query},
	{"IQueryResult", model.QueryResult},
}

// ClassifyName classifies a declaration by its identifier alone.
// Suffixes compare ASCII case-insensitively.
func ClassifyName(name string) model.Classification {
	for _, r := range suffixTable {
		if !hasSuffixFold(name, r.suffix) {
			continue
		}
		if r.exclude != "" && hasSuffixFold(name, r.exclude) {
			continue
		}
		return r.class
	}
	return model.None
}

// ClassifyInterface classifies a marker interface name. Both the bare name
// and generic renderings such as "IQuery<TResult>" match.
func ClassifyInterface(name string) model.Classification {
	for _, m := range markerInterfaces {
		if name == m.name || strings.HasPrefix(name, m.name+"<") {
			return m.class
		}
	}
	return model.None
}

// Classify decides which rule, if any, governs decl. The name suffix is
// checked first and needs no semantic information; otherwise every interface
// sym implements, transitively, is checked for a marker interface.
func Classify(decl *syntax.TypeDecl, sym *model.TypeSymbol, b Binder) (model.Rule, bool) {
	if decl == nil {
		return model.Rule{}, false
	}
	if c := ClassifyName(decl.Name); c != model.None {
		return RuleFor(c)
	}
	if sym == nil || b == nil {
		return model.Rule{}, false
	}
	for _, iface := range b.AllInterfaces(sym) {
		if iface == nil {
			continue
		}
		if c := ClassifyInterface(iface.Name); c != model.None {
			return RuleFor(c)
		}
	}
	return model.Rule{}, false
}

// hasSuffixFold is an ordinal, ASCII-only case-insensitive suffix test.
func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		if lowerASCII(tail[i]) != lowerASCII(suffix[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
