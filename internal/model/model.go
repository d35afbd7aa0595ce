// Package model defines core data structures for revitlint.
package model

import (
	"strconv"
	"strings"
)

// Classification is the architectural role a type declaration plays.
type Classification string

const (
	None        Classification = ""
	ViewModel   Classification = "ViewModel"
	Query       Classification = "Query"
	QueryResult Classification = "QueryResult"
)

// Severity of a reported diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule describes a single diagnostic rule. Rules are immutable values.
type Rule struct {
	ID               string
	Title            string
	MessageFormat    string
	Category         string
	Severity         Severity
	EnabledByDefault bool
	Description      string
	Applies          Classification
}

// Format renders MessageFormat, substituting {0}, {1}, ... with args.
func (r *Rule) Format(args ...string) string {
	if len(args) == 0 {
		return r.MessageFormat
	}
	pairs := make([]string, 0, 2*len(args))
	for i, a := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", a)
	}
	return strings.NewReplacer(pairs...).Replace(r.MessageFormat)
}

// Span is a source range. Lines and columns are 1-based, columns count bytes.
type Span struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
	StartByte   int `json:"start_byte"`
	EndByte     int `json:"end_byte"`
}

// Location is a span inside a particular file.
type Location struct {
	Path string `json:"path"`
	Span Span   `json:"span"`
}

// RelatedInfo points at additional source involved in a diagnostic.
type RelatedInfo struct {
	Location Location `json:"location"`
	Message  string   `json:"message"`
}

// Diagnostic is a single reported rule violation.
type Diagnostic struct {
	RuleID    string        `json:"rule_id"`
	Severity  Severity      `json:"severity"`
	Message   string        `json:"message"`
	Location  Location      `json:"location"`
	Arguments []string      `json:"arguments"`
	Related   []RelatedInfo `json:"related,omitempty"`
}

// Namespace is one node of the namespace containment tree.
// The global namespace has an empty name and no parent.
type Namespace struct {
	Name   string
	Parent *Namespace
}

// IsGlobal reports whether ns is the global (root) namespace.
func (ns *Namespace) IsGlobal() bool {
	return ns == nil || ns.Parent == nil
}

// QualifiedName returns the dotted name, or "" for the global namespace.
func (ns *Namespace) QualifiedName() string {
	var parts []string
	for n := ns; n != nil && n.Parent != nil; n = n.Parent {
		parts = append(parts, n.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// TypeKind is the declared kind of a named type.
type TypeKind string

const (
	Class     TypeKind = "class"
	Record    TypeKind = "record"
	Struct    TypeKind = "struct"
	Interface TypeKind = "interface"
	Enum      TypeKind = "enum"
	Delegate  TypeKind = "delegate"
)

// TypeSymbol is a resolved named type. Name never carries type arguments;
// Arity is the number of generic type parameters.
type TypeSymbol struct {
	Name      string
	Arity     int
	Kind      TypeKind
	Namespace *Namespace
	Container *TypeSymbol
	// External is true for types that come from a reference catalog rather
	// than from analyzed source.
	External bool
}

// FullName returns the dotted, fully qualified name without arity suffixes.
func (t *TypeSymbol) FullName() string {
	if t == nil {
		return ""
	}
	if t.Container != nil {
		return t.Container.FullName() + "." + t.Name
	}
	if ns := t.Namespace.QualifiedName(); ns != "" {
		return ns + "." + t.Name
	}
	return t.Name
}

// ContainingNamespace returns the namespace of t, following containing types
// for nested declarations.
func (t *TypeSymbol) ContainingNamespace() *Namespace {
	for s := t; s != nil; s = s.Container {
		if s.Container == nil {
			return s.Namespace
		}
	}
	return nil
}
