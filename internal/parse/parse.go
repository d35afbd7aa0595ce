// Package parse builds syntax.File values from C# source using tree-sitter.
package parse

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/revitlint/internal/lang"
	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/syntax"
)

var declKinds = map[string]syntax.DeclKind{
	"class_declaration":         syntax.ClassDecl,
	"record_declaration":        syntax.RecordDecl,
	"record_struct_declaration": syntax.StructDecl,
	"struct_declaration":        syntax.StructDecl,
	"interface_declaration":     syntax.InterfaceDecl,
	"enum_declaration":          syntax.EnumDecl,
}

var typeNodes = map[string]struct{}{
	"identifier":            {},
	"qualified_name":        {},
	"generic_name":          {},
	"alias_qualified_name":  {},
	"predefined_type":       {},
	"nullable_type":         {},
	"array_type":            {},
	"pointer_type":          {},
	"tuple_type":            {},
	"function_pointer_type": {},
	"ref_type":              {},
	"scoped_type":           {},
	"implicit_type":         {},
}

// File parses a C# source file. filePath is used for syntax.File.Path and
// should be the repo-relative path. Syntax errors yield a partial tree.
func File(ctx context.Context, l *lang.Language, parser *sitter.Parser, source []byte, filePath string) (*syntax.File, error) {
	f := &syntax.File{
		Path:      filePath,
		Generated: l.IsGeneratedName(filepath.Base(filePath)) || l.IsGeneratedSource(source),
	}
	if len(source) == 0 {
		return f, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	w := &walker{source: source, file: f}
	w.walkScope(tree.RootNode(), "", nil)
	return f, nil
}

type walker struct {
	source []byte
	file   *syntax.File
}

// walkScope visits the members of a compilation unit, namespace body or
// type body. ns is the dotted enclosing namespace.
func (w *walker) walkScope(node *sitter.Node, ns string, container *syntax.TypeDecl) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "using_directive":
			if u, ok := w.using(child, ns); ok {
				w.file.Usings = append(w.file.Usings, u)
			}
		case "namespace_declaration":
			full := joinNamespace(ns, w.name(child))
			if body := fieldOrChild(child, "body", "declaration_list"); body != nil {
				w.walkScope(body, full, nil)
			}
		case "file_scoped_namespace_declaration":
			// Depending on the grammar version the declarations following a
			// file-scoped namespace are either its children or its siblings.
			ns = joinNamespace(ns, w.name(child))
			w.walkScope(child, ns, nil)
		case "declaration_list", "ERROR":
			w.walkScope(child, ns, container)
		default:
			if kind, ok := declKinds[child.Type()]; ok {
				w.typeDecl(child, kind, ns, container)
			}
		}
	}
}

func (w *walker) using(node *sitter.Node, ns string) (syntax.UsingDirective, bool) {
	text := strings.TrimSpace(lang.NodeText(node, w.source))
	text = strings.TrimSpace(strings.TrimSuffix(text, ";"))

	u := syntax.UsingDirective{Namespace: ns, Span: span(node)}
	if rest, ok := cutWord(text, "global"); ok {
		u.Global = true
		text = rest
	}
	rest, ok := cutWord(text, "using")
	if !ok {
		return u, false
	}
	text = rest
	if rest, ok := cutWord(text, "static"); ok {
		u.Static = true
		text = rest
	}
	if rest, ok := cutWord(text, "unsafe"); ok {
		text = rest
	}
	if alias, target, found := strings.Cut(text, "="); found {
		u.Alias = strings.TrimSpace(alias)
		text = target
	}
	u.Name = compact(text)
	return u, u.Name != ""
}

func (w *walker) typeDecl(node *sitter.Node, kind syntax.DeclKind, ns string, container *syntax.TypeDecl) {
	nameNode := fieldOrChild(node, "name", "identifier")
	if nameNode == nil {
		return
	}
	// newer grammars parse `record struct` as a record_declaration
	if kind == syntax.RecordDecl && hasToken(node, "struct") {
		kind = syntax.StructDecl
	}

	decl := &syntax.TypeDecl{
		Kind:      kind,
		Name:      lang.NodeText(nameNode, w.source),
		NameSpan:  span(nameNode),
		Namespace: ns,
		Container: container,
		File:      w.file,
	}

	var body *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "type_parameter_list":
			decl.Arity = countNamed(child, "type_parameter")
		case "parameter_list":
			decl.Parameters = w.parameters(child)
		case "base_list", "record_base":
			decl.Bases = w.bases(child)
		case "declaration_list":
			body = child
		}
	}

	w.file.Types = append(w.file.Types, decl)

	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "property_declaration":
			decl.Members = append(decl.Members, syntax.Member{
				Kind: syntax.Property,
				Name: w.fieldText(child, "name"),
				Type: w.typeRef(child, "type"),
			})
		case "field_declaration":
			vd := childOfType(child, "variable_declaration")
			if vd == nil {
				continue
			}
			var name string
			if d := childOfType(vd, "variable_declarator"); d != nil {
				name = w.fieldText(d, "name")
				if name == "" {
					if id := childOfType(d, "identifier"); id != nil {
						name = lang.NodeText(id, w.source)
					}
				}
			}
			decl.Members = append(decl.Members, syntax.Member{
				Kind: syntax.Field,
				Name: name,
				Type: w.typeRef(vd, "type"),
			})
		case "method_declaration":
			m := syntax.Member{
				Kind: syntax.Method,
				Name: w.fieldText(child, "name"),
				Type: w.typeRef(child, "returns", "type"),
			}
			if params := fieldOrChild(child, "parameters", "parameter_list"); params != nil {
				m.Parameters = w.parameters(params)
			}
			decl.Members = append(decl.Members, m)
		default:
			if k, ok := declKinds[child.Type()]; ok {
				w.typeDecl(child, k, ns, decl)
			}
		}
	}
}

func (w *walker) parameters(list *sitter.Node) []syntax.Parameter {
	params := []syntax.Parameter{}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		if p.Type() != "parameter" {
			continue
		}
		params = append(params, syntax.Parameter{
			Name: w.fieldText(p, "name"),
			Type: w.typeRef(p, "type"),
		})
	}
	return params
}

func (w *walker) bases(list *sitter.Node) []syntax.TypeRef {
	var refs []syntax.TypeRef
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		if child.Type() == "primary_constructor_base_type" {
			child = fieldOrChild(child, "type", "")
			if child == nil {
				continue
			}
		}
		if _, ok := typeNodes[child.Type()]; !ok {
			continue
		}
		refs = append(refs, syntax.TypeRef{Text: compact(lang.NodeText(child, w.source)), Span: span(child)})
	}
	return refs
}

// typeRef returns the type written in the first present field of node, or
// the first type-shaped child when the grammar names no field.
func (w *walker) typeRef(node *sitter.Node, fields ...string) *syntax.TypeRef {
	var t *sitter.Node
	for _, f := range fields {
		if t = node.ChildByFieldName(f); t != nil {
			break
		}
	}
	if t == nil {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if _, ok := typeNodes[node.NamedChild(i).Type()]; ok {
				t = node.NamedChild(i)
				break
			}
		}
	}
	if t == nil {
		return nil
	}
	return &syntax.TypeRef{Text: compact(lang.NodeText(t, w.source)), Span: span(t)}
}

func (w *walker) name(node *sitter.Node) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return compact(lang.NodeText(n, w.source))
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		switch c := node.NamedChild(i); c.Type() {
		case "identifier", "qualified_name":
			return compact(lang.NodeText(c, w.source))
		}
	}
	return ""
}

func (w *walker) fieldText(node *sitter.Node, field string) string {
	if n := node.ChildByFieldName(field); n != nil {
		return lang.NodeText(n, w.source)
	}
	return ""
}

// fieldOrChild returns the named field, falling back to the first named child
// of type fallback (or the first named child when fallback is empty).
func fieldOrChild(node *sitter.Node, field, fallback string) *sitter.Node {
	if n := node.ChildByFieldName(field); n != nil {
		return n
	}
	if fallback == "" {
		if node.NamedChildCount() == 0 {
			return nil
		}
		return node.NamedChild(0)
	}
	return childOfType(node, fallback)
}

func childOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if c := node.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

// hasToken reports whether node has a direct anonymous child with the given text.
func hasToken(node *sitter.Node, text string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); !c.IsNamed() && c.Type() == text {
			return true
		}
	}
	return false
}

func countNamed(node *sitter.Node, typ string) int {
	n := 0
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == typ {
			n++
		}
	}
	return n
}

func span(node *sitter.Node) model.Span {
	start, end := node.StartPoint(), node.EndPoint()
	return model.Span{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
		StartByte:   int(node.StartByte()),
		EndByte:     int(node.EndByte()),
	}
}

func joinNamespace(outer, inner string) string {
	switch {
	case inner == "":
		return outer
	case outer == "":
		return inner
	}
	return outer + "." + inner
}

// cutWord strips a leading keyword followed by whitespace.
func cutWord(s, word string) (string, bool) {
	if !strings.HasPrefix(s, word) {
		return s, false
	}
	rest := s[len(word):]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' && rest[0] != '\r') {
		return s, false
	}
	return strings.TrimSpace(rest), true
}

// compact removes all whitespace, including newlines inside qualified names.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
