// Package syntax is the host-independent view of a parsed C# source file
// that the analyzer and binder operate on.
package syntax

import "github.com/phobologic/revitlint/internal/model"

// DeclKind is the syntactic kind of a type declaration.
type DeclKind string

const (
	ClassDecl     DeclKind = "class"
	RecordDecl    DeclKind = "record"
	StructDecl    DeclKind = "struct"
	InterfaceDecl DeclKind = "interface"
	EnumDecl      DeclKind = "enum"
)

// MemberKind is the syntactic kind of a type member.
type MemberKind string

const (
	Property MemberKind = "property"
	Field    MemberKind = "field"
	Method   MemberKind = "method"
)

// File is one parsed compilation unit.
type File struct {
	Path      string
	Usings    []UsingDirective
	Types     []*TypeDecl
	Generated bool
}

// UsingDirective is a using directive anywhere in a file.
// Name is the imported namespace or, for alias usings, the aliased target.
type UsingDirective struct {
	Name   string
	Alias  string
	Static bool
	Global bool
	// Namespace is the dotted name of the namespace block the directive
	// appears in, "" at file level.
	Namespace string
	Span      model.Span
}

// TypeRef is a type as written in source.
type TypeRef struct {
	Text string
	Span model.Span
}

// Parameter is a single method or primary-constructor parameter.
type Parameter struct {
	Name string
	Type *TypeRef
}

// Member is a property, field or method of a type declaration.
// For methods Type is the return type.
type Member struct {
	Kind       MemberKind
	Name       string
	Type       *TypeRef
	Parameters []Parameter
}

// TypeDecl is a named type declaration.
type TypeDecl struct {
	Kind     DeclKind
	Name     string
	NameSpan model.Span
	// Arity is the number of generic type parameters.
	Arity int
	// Namespace is the dotted name of the enclosing namespace, "" for global.
	Namespace string
	// Container is the declaring type for nested declarations.
	Container *TypeDecl
	// Parameters holds the primary-constructor parameter list; nil when the
	// declaration has none.
	Parameters []Parameter
	Bases      []TypeRef
	Members    []Member
	File       *File
}

// HasPrimaryConstructor reports whether the declaration has a parameter list
// after its identifier.
func (d *TypeDecl) HasPrimaryConstructor() bool {
	return d.Parameters != nil
}

// QualifiedName returns the dotted name of the declaration including its
// namespace and containing types.
func (d *TypeDecl) QualifiedName() string {
	if d.Container != nil {
		return d.Container.QualifiedName() + "." + d.Name
	}
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}
