package analyzer

import (
	"strings"

	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/syntax"
)

// fakeBinder resolves type text by exact match against a fixed table.
type fakeBinder struct {
	namespaces map[string]*model.Namespace
	declared   map[*syntax.TypeDecl]*model.TypeSymbol
	types      map[string]*model.TypeSymbol
	interfaces map[*model.TypeSymbol][]*model.TypeSymbol
	resolves   int
}

func newFakeBinder() *fakeBinder {
	global := &model.Namespace{}
	return &fakeBinder{
		namespaces: map[string]*model.Namespace{"": global},
		declared:   map[*syntax.TypeDecl]*model.TypeSymbol{},
		types:      map[string]*model.TypeSymbol{},
		interfaces: map[*model.TypeSymbol][]*model.TypeSymbol{},
	}
}

func (b *fakeBinder) namespace(name string) *model.Namespace {
	if ns, ok := b.namespaces[name]; ok {
		return ns
	}
	parent, leaf := b.namespaces[""], name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		parent, leaf = b.namespace(name[:i]), name[i+1:]
	}
	ns := &model.Namespace{Name: leaf, Parent: parent}
	b.namespaces[name] = ns
	return ns
}

func (b *fakeBinder) declare(decl *syntax.TypeDecl, ns string) *model.TypeSymbol {
	sym := &model.TypeSymbol{Name: decl.Name, Kind: model.Class, Namespace: b.namespace(ns)}
	b.declared[decl] = sym
	return sym
}

// addType registers text as resolving to name inside ns.
func (b *fakeBinder) addType(text, ns, name string) *model.TypeSymbol {
	sym := &model.TypeSymbol{Name: name, Kind: model.Class, Namespace: b.namespace(ns)}
	b.types[text] = sym
	return sym
}

func (b *fakeBinder) DeclaredSymbol(decl *syntax.TypeDecl) *model.TypeSymbol {
	return b.declared[decl]
}

func (b *fakeBinder) ResolveType(_ *syntax.TypeDecl, ref *syntax.TypeRef) *model.TypeSymbol {
	b.resolves++
	if ref == nil {
		return nil
	}
	return b.types[ref.Text]
}

func (b *fakeBinder) AllInterfaces(t *model.TypeSymbol) []*model.TypeSymbol {
	return b.interfaces[t]
}

func ref(text string) *syntax.TypeRef {
	return &syntax.TypeRef{Text: text}
}
