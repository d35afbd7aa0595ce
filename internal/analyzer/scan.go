package analyzer

import (
	"strings"

	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/syntax"
)

// ForbiddenNamespacePrefix is matched against using directive names.
const ForbiddenNamespacePrefix = "Autodesk.Revit"

// Binder resolves declarations and written types to symbols.
// *semantic.Compilation implements it.
type Binder interface {
	DeclaredSymbol(decl *syntax.TypeDecl) *model.TypeSymbol
	ResolveType(decl *syntax.TypeDecl, ref *syntax.TypeRef) *model.TypeSymbol
	AllInterfaces(t *model.TypeSymbol) []*model.TypeSymbol
}

// ReferenceKind says where a forbidden reference was found.
type ReferenceKind string

const (
	UsingReference           ReferenceKind = "using"
	ConstructorParamRef      ReferenceKind = "constructor parameter"
	PropertyReference        ReferenceKind = "property"
	FieldReference           ReferenceKind = "field"
	ReturnTypeReference      ReferenceKind = "return type"
	MethodParameterReference ReferenceKind = "method parameter"
)

// Reference is the first forbidden dependency found in a declaration.
type Reference struct {
	Kind ReferenceKind
	// Text is the using name or the type as written.
	Text string
	// Member names the property, field, method or parameter; empty for usings.
	Member string
	// Symbol is the resolved Revit type; nil for usings.
	Symbol *model.TypeSymbol
	Span   model.Span
}

// Describe renders r as a short human readable note.
func (r *Reference) Describe() string {
	if r.Kind == UsingReference {
		return "using " + r.Text
	}
	var b strings.Builder
	b.WriteString(string(r.Kind))
	if r.Member != "" {
		b.WriteString(" '")
		b.WriteString(r.Member)
		b.WriteString("'")
	}
	b.WriteString(" has type ")
	if r.Symbol != nil {
		b.WriteString(r.Symbol.FullName())
	} else {
		b.WriteString(r.Text)
	}
	return b.String()
}

// HasForbiddenDependency reports whether decl depends on the Revit API.
func HasForbiddenDependency(decl *syntax.TypeDecl, b Binder) bool {
	return FindForbiddenReference(decl, b) != nil
}

// FindForbiddenReference returns the first forbidden dependency of decl, or
// nil. Checks run in order and stop at the first hit:
//
//   - any using directive in decl's file naming an Autodesk.Revit namespace,
//     whether or not decl uses it
//   - record primary-constructor parameter types
//   - property and field types
//   - method return and parameter types
//
// Types that fail to resolve never count.
func FindForbiddenReference(decl *syntax.TypeDecl, b Binder) *Reference {
	if decl == nil {
		return nil
	}

	if decl.File != nil {
		for _, u := range decl.File.Usings {
			if strings.HasPrefix(strings.TrimPrefix(u.Name, "global::"), ForbiddenNamespacePrefix) {
				return &Reference{Kind: UsingReference, Text: u.Name, Span: u.Span}
			}
		}
	}

	if b == nil {
		return nil
	}
	check := func(kind ReferenceKind, member string, ref *syntax.TypeRef) *Reference {
		if ref == nil {
			return nil
		}
		t := b.ResolveType(decl, ref)
		if !IsRevitType(t) {
			return nil
		}
		return &Reference{Kind: kind, Text: ref.Text, Member: member, Symbol: t, Span: ref.Span}
	}

	// class primary constructors are not part of the declaration's surface
	if decl.Kind == syntax.RecordDecl {
		for _, p := range decl.Parameters {
			if r := check(ConstructorParamRef, p.Name, p.Type); r != nil {
				return r
			}
		}
	}

	for _, m := range decl.Members {
		var kind ReferenceKind
		switch m.Kind {
		case syntax.Property:
			kind = PropertyReference
		case syntax.Field:
			kind = FieldReference
		default:
			continue
		}
		if r := check(kind, m.Name, m.Type); r != nil {
			return r
		}
	}

	for _, m := range decl.Members {
		if m.Kind != syntax.Method {
			continue
		}
		if r := check(ReturnTypeReference, m.Name, m.Type); r != nil {
			return r
		}
		for _, p := range m.Parameters {
			if r := check(MethodParameterReference, p.Name, p.Type); r != nil {
				return r
			}
		}
	}
	return nil
}
