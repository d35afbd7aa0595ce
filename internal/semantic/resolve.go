package semantic

import (
	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/syntax"
)

// predefined maps C# keyword types to their System type names.
var predefined = map[string]string{
	"bool":    "Boolean",
	"byte":    "Byte",
	"sbyte":   "SByte",
	"char":    "Char",
	"decimal": "Decimal",
	"double":  "Double",
	"float":   "Single",
	"int":     "Int32",
	"uint":    "UInt32",
	"nint":    "IntPtr",
	"nuint":   "UIntPtr",
	"long":    "Int64",
	"ulong":   "UInt64",
	"short":   "Int16",
	"ushort":  "UInt16",
	"object":  "Object",
	"string":  "String",
	"void":    "Void",
}

// ResolveType binds a type reference written inside decl. It returns nil when
// the reference cannot be bound: unknown or ambiguous names, arrays, tuples,
// pointers and keywords such as var or dynamic. Nullable annotations are
// ignored and generic instantiations bind to their generic definition.
func (c *Compilation) ResolveType(decl *syntax.TypeDecl, ref *syntax.TypeRef) *model.TypeSymbol {
	if ref == nil {
		return nil
	}
	n := syntax.ParseTypeName(ref.Text)
	if !n.IsNamed() {
		return nil
	}
	return c.resolveName(decl, n)
}

func (c *Compilation) resolveName(decl *syntax.TypeDecl, n syntax.TypeName) *model.TypeSymbol {
	last := n.Last()

	if n.Alias != "" {
		root := c.aliasRoot(decl, n.Alias)
		if root == nil {
			return nil
		}
		return c.lookupPath(root, n.Segments)
	}

	if len(n.Segments) == 1 {
		if sys, ok := predefined[last.Name]; ok && last.Arity == 0 {
			return c.types[typeKey{c.namespaces["System"], sys, 0}]
		}
		return c.lookupSimple(decl, last)
	}

	first := n.Segments[0]
	if first.Arity == 0 {
		if target, ok := c.aliasTarget(decl, first.Name); ok {
			expanded := syntax.ParseTypeName(target)
			if !expanded.IsNamed() {
				return nil
			}
			expanded.Segments = append(expanded.Segments, n.Segments[1:]...)
			return c.lookupPath(c.global, expanded.Segments)
		}
	}

	for ns := c.enclosingNamespace(decl); ns != nil; ns = ns.Parent {
		if t := c.lookupPath(ns, n.Segments); t != nil {
			return t
		}
	}

	// the qualifier may name a type visible through usings
	outer := c.resolveName(decl, syntax.TypeName{Segments: n.Segments[:len(n.Segments)-1]})
	if outer != nil {
		return c.nested[nestedKey{outer, last.Name, last.Arity}]
	}
	return nil
}

// lookupPath resolves dotted segments relative to ns: leading segments walk
// namespaces, then the first type found continues through nested types.
func (c *Compilation) lookupPath(ns *model.Namespace, segs []syntax.Segment) *model.TypeSymbol {
	qualified := ns.QualifiedName()
	for i, seg := range segs {
		if i == len(segs)-1 {
			return c.types[typeKey{ns, seg.Name, seg.Arity}]
		}
		if seg.Arity == 0 {
			next := joinName(qualified, seg.Name)
			if child, ok := c.namespaces[next]; ok {
				ns, qualified = child, next
				continue
			}
		}
		t := c.types[typeKey{ns, seg.Name, seg.Arity}]
		for _, inner := range segs[i+1:] {
			if t == nil {
				return nil
			}
			t = c.nested[nestedKey{t, inner.Name, inner.Arity}]
		}
		return t
	}
	return nil
}

// lookupSimple binds an unqualified name: nested types of the enclosing type
// chain first, then each enclosing namespace from the innermost outward
// together with the using directives declared at that level.
func (c *Compilation) lookupSimple(decl *syntax.TypeDecl, seg syntax.Segment) *model.TypeSymbol {
	for t := c.declared[decl]; t != nil; t = t.Container {
		if n := c.nested[nestedKey{t, seg.Name, seg.Arity}]; n != nil {
			return n
		}
	}

	for ns := c.enclosingNamespace(decl); ns != nil; ns = ns.Parent {
		if t := c.types[typeKey{ns, seg.Name, seg.Arity}]; t != nil {
			return t
		}
		t, ambiguous := c.lookupUsings(decl, ns.QualifiedName(), seg)
		if ambiguous {
			return nil
		}
		if t != nil {
			return t
		}
	}
	return nil
}

// lookupUsings consults the using directives scoped to the namespace level
// named scope. The second result is true when imports yield more than one
// distinct candidate.
func (c *Compilation) lookupUsings(decl *syntax.TypeDecl, scope string, seg syntax.Segment) (*model.TypeSymbol, bool) {
	usings := c.usingsAt(decl, scope)

	if seg.Arity == 0 {
		for _, u := range usings {
			if u.Alias == seg.Name {
				target := syntax.ParseTypeName(u.Name)
				if !target.IsNamed() {
					return nil, false
				}
				return c.lookupPath(c.global, target.Segments), false
			}
		}
	}

	var found *model.TypeSymbol
	for _, u := range usings {
		if u.Alias != "" {
			continue
		}
		var t *model.TypeSymbol
		if u.Static {
			owner := syntax.ParseTypeName(u.Name)
			if !owner.IsNamed() {
				continue
			}
			if o := c.lookupPath(c.global, owner.Segments); o != nil {
				t = c.nested[nestedKey{o, seg.Name, seg.Arity}]
			}
		} else if ns, ok := c.namespaces[trimGlobal(u.Name)]; ok {
			t = c.types[typeKey{ns, seg.Name, seg.Arity}]
		}
		if t == nil || t == found {
			continue
		}
		if found != nil {
			return nil, true
		}
		found = t
	}
	return found, false
}

func (c *Compilation) usingsAt(decl *syntax.TypeDecl, scope string) []syntax.UsingDirective {
	var out []syntax.UsingDirective
	if decl != nil && decl.File != nil {
		for _, u := range decl.File.Usings {
			if u.Namespace == scope && !u.Global {
				out = append(out, u)
			}
		}
	}
	if scope == "" {
		out = append(out, c.globalUsings...)
	}
	return out
}

// aliasTarget finds a using alias visible from decl.
func (c *Compilation) aliasTarget(decl *syntax.TypeDecl, alias string) (string, bool) {
	for ns := c.enclosingNamespace(decl); ns != nil; ns = ns.Parent {
		for _, u := range c.usingsAt(decl, ns.QualifiedName()) {
			if u.Alias == alias {
				return trimGlobal(u.Name), true
			}
		}
	}
	return "", false
}

// aliasRoot resolves the left side of an alias-qualified name (alias::Name).
func (c *Compilation) aliasRoot(decl *syntax.TypeDecl, alias string) *model.Namespace {
	if alias == "global" {
		return c.global
	}
	target, ok := c.aliasTarget(decl, alias)
	if !ok {
		return nil
	}
	return c.namespaces[target]
}

// enclosingNamespace returns the namespace decl is declared in; the global
// namespace when decl is nil or unknown.
func (c *Compilation) enclosingNamespace(decl *syntax.TypeDecl) *model.Namespace {
	if decl == nil {
		return c.global
	}
	for decl.Container != nil {
		decl = decl.Container
	}
	if ns, ok := c.namespaces[decl.Namespace]; ok {
		return ns
	}
	return c.global
}

func trimGlobal(name string) string {
	if len(name) > 8 && name[:8] == "global::" {
		return name[8:]
	}
	return name
}

func joinName(outer, inner string) string {
	if outer == "" {
		return inner
	}
	return outer + "." + inner
}
