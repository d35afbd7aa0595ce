// Package semantic binds C# syntax to type symbols. A Compilation is built
// once from every parsed file plus reference catalogs and is read-only
// afterwards, so any number of goroutines may query it concurrently.
package semantic

import (
	"strings"

	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/syntax"
)

type typeKey struct {
	ns    *model.Namespace
	name  string
	arity int
}

type nestedKey struct {
	container *model.TypeSymbol
	name      string
	arity     int
}

// Compilation is the symbol table for a set of source files.
type Compilation struct {
	global       *model.Namespace
	namespaces   map[string]*model.Namespace
	types        map[typeKey]*model.TypeSymbol
	nested       map[nestedKey]*model.TypeSymbol
	declared     map[*syntax.TypeDecl]*model.TypeSymbol
	bases        map[*model.TypeSymbol][]*model.TypeSymbol
	globalUsings []syntax.UsingDirective
}

var declTypeKinds = map[syntax.DeclKind]model.TypeKind{
	syntax.ClassDecl:     model.Class,
	syntax.RecordDecl:    model.Record,
	syntax.StructDecl:    model.Struct,
	syntax.InterfaceDecl: model.Interface,
	syntax.EnumDecl:      model.Enum,
}

// NewCompilation declares every catalog type and every type declaration in
// files, then binds base lists. Source declarations shadow catalog types with
// the same name and arity.
func NewCompilation(files []*syntax.File, catalogs ...*Catalog) *Compilation {
	global := &model.Namespace{}
	c := &Compilation{
		global:     global,
		namespaces: map[string]*model.Namespace{"": global},
		types:      make(map[typeKey]*model.TypeSymbol),
		nested:     make(map[nestedKey]*model.TypeSymbol),
		declared:   make(map[*syntax.TypeDecl]*model.TypeSymbol),
		bases:      make(map[*model.TypeSymbol][]*model.TypeSymbol),
	}

	for _, cat := range catalogs {
		if cat == nil {
			continue
		}
		for _, e := range cat.entries() {
			ns := c.ensureNamespace(e.Namespace)
			c.types[typeKey{ns, e.Name, e.Arity}] = &model.TypeSymbol{
				Name:      e.Name,
				Arity:     e.Arity,
				Kind:      e.Kind,
				Namespace: ns,
				External:  true,
			}
		}
	}

	for _, f := range files {
		for _, u := range f.Usings {
			if u.Global {
				c.globalUsings = append(c.globalUsings, u)
			}
		}
		for _, d := range f.Types {
			c.declare(d)
		}
	}

	for _, f := range files {
		for _, d := range f.Types {
			c.bindBases(d)
		}
	}
	return c
}

func (c *Compilation) declare(d *syntax.TypeDecl) {
	kind := declTypeKinds[d.Kind]
	if d.Container != nil {
		outer := c.declared[d.Container]
		if outer == nil {
			return
		}
		key := nestedKey{outer, d.Name, d.Arity}
		sym := c.nested[key]
		if sym == nil {
			sym = &model.TypeSymbol{Name: d.Name, Arity: d.Arity, Kind: kind, Container: outer}
			c.nested[key] = sym
		}
		c.declared[d] = sym
		return
	}

	ns := c.ensureNamespace(d.Namespace)
	key := typeKey{ns, d.Name, d.Arity}
	sym := c.types[key]
	if sym == nil || sym.External {
		// partial declarations share one symbol
		sym = &model.TypeSymbol{Name: d.Name, Arity: d.Arity, Kind: kind, Namespace: ns}
		c.types[key] = sym
	}
	c.declared[d] = sym
}

func (c *Compilation) bindBases(d *syntax.TypeDecl) {
	sym := c.declared[d]
	if sym == nil {
		return
	}
	for i := range d.Bases {
		b := c.ResolveType(d, &d.Bases[i])
		if b == nil || b == sym || containsSymbol(c.bases[sym], b) {
			continue
		}
		c.bases[sym] = append(c.bases[sym], b)
	}
}

func (c *Compilation) ensureNamespace(qualified string) *model.Namespace {
	if ns, ok := c.namespaces[qualified]; ok {
		return ns
	}
	parent := c.global
	name := qualified
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		parent = c.ensureNamespace(qualified[:i])
		name = qualified[i+1:]
	}
	ns := &model.Namespace{Name: name, Parent: parent}
	c.namespaces[qualified] = ns
	return ns
}

// Namespace returns the namespace with the given dotted name, or nil.
func (c *Compilation) Namespace(qualified string) *model.Namespace {
	return c.namespaces[qualified]
}

// DeclaredSymbol returns the symbol declared by d, or nil when d is not part
// of the compilation.
func (c *Compilation) DeclaredSymbol(d *syntax.TypeDecl) *model.TypeSymbol {
	if d == nil {
		return nil
	}
	return c.declared[d]
}

// BaseTypes returns the resolved direct base class and interfaces of t.
func (c *Compilation) BaseTypes(t *model.TypeSymbol) []*model.TypeSymbol {
	return c.bases[t]
}

// AllInterfaces returns every interface t implements, directly, through its
// base classes, or through other interfaces, in discovery order.
func (c *Compilation) AllInterfaces(t *model.TypeSymbol) []*model.TypeSymbol {
	if t == nil {
		return nil
	}
	var out []*model.TypeSymbol
	seen := map[*model.TypeSymbol]bool{t: true}
	queue := append([]*model.TypeSymbol(nil), c.BaseTypes(t)...)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if seen[b] {
			continue
		}
		seen[b] = true
		if b.Kind == model.Interface {
			out = append(out, b)
		}
		queue = append(queue, c.BaseTypes(b)...)
	}
	return out
}

func containsSymbol(list []*model.TypeSymbol, s *model.TypeSymbol) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
