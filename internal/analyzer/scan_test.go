package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/syntax"
)

func TestFindForbiddenReferenceUsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		using string
		want  bool
	}{
		{"db", "Autodesk.Revit.DB", true},
		{"root", "Autodesk.Revit", true},
		{"global qualified", "global::Autodesk.Revit.UI", true},
		{"prefix only", "Autodesk.RevitAddins", true},
		{"system", "System.Linq", false},
		{"other vendor", "Autodesk.Fbx", false},
		{"user nested", "Company.Autodesk.Revit", false},
		{"case sensitive", "autodesk.revit.DB", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &syntax.File{Usings: []syntax.UsingDirective{{Name: tt.using}}}
			decl := &syntax.TypeDecl{Kind: syntax.ClassDecl, Name: "MainViewModel", File: f}
			got := FindForbiddenReference(decl, nil)
			if !tt.want {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, UsingReference, got.Kind)
			assert.Equal(t, tt.using, got.Text)
			assert.Equal(t, "using "+tt.using, got.Describe())
		})
	}
}

func TestFindForbiddenReferenceUsingAnywhereInFile(t *testing.T) {
	t.Parallel()

	// a using inside another namespace block of the same file still counts
	f := &syntax.File{Usings: []syntax.UsingDirective{
		{Name: "System"},
		{Name: "Autodesk.Revit.DB", Namespace: "Other"},
	}}
	decl := &syntax.TypeDecl{Kind: syntax.ClassDecl, Name: "MainViewModel", Namespace: "App", File: f}
	assert.True(t, HasForbiddenDependency(decl, newFakeBinder()))
}

func TestFindForbiddenReferenceMembers(t *testing.T) {
	t.Parallel()

	b := newFakeBinder()
	b.addType("Document", "Autodesk.Revit.DB", "Document")
	b.addType("ElementId", "Autodesk.Revit.DB", "ElementId")
	b.addType("UIApplication", "Autodesk.Revit.UI", "UIApplication")
	b.addType("string", "System", "String")
	b.addType("WallDto", "App.Models", "WallDto")

	tests := []struct {
		name   string
		decl   *syntax.TypeDecl
		kind   ReferenceKind
		member string
	}{
		{
			name: "record constructor parameter",
			decl: &syntax.TypeDecl{Kind: syntax.RecordDecl, Parameters: []syntax.Parameter{
				{Name: "Name", Type: ref("string")},
				{Name: "Id", Type: ref("ElementId")},
			}},
			kind:   ConstructorParamRef,
			member: "Id",
		},
		{
			name: "property",
			decl: &syntax.TypeDecl{Members: []syntax.Member{
				{Kind: syntax.Property, Name: "Title", Type: ref("string")},
				{Kind: syntax.Property, Name: "RevitDocument", Type: ref("Document")},
			}},
			kind:   PropertyReference,
			member: "RevitDocument",
		},
		{
			name: "field",
			decl: &syntax.TypeDecl{Members: []syntax.Member{
				{Kind: syntax.Field, Name: "_app", Type: ref("UIApplication")},
			}},
			kind:   FieldReference,
			member: "_app",
		},
		{
			name: "return type",
			decl: &syntax.TypeDecl{Members: []syntax.Member{
				{Kind: syntax.Method, Name: "Current", Type: ref("Document")},
			}},
			kind:   ReturnTypeReference,
			member: "Current",
		},
		{
			name: "method parameter",
			decl: &syntax.TypeDecl{Members: []syntax.Member{
				{Kind: syntax.Method, Name: "Load", Type: ref("void"), Parameters: []syntax.Parameter{
					{Name: "dto", Type: ref("WallDto")},
					{Name: "id", Type: ref("ElementId")},
				}},
			}},
			kind:   MethodParameterReference,
			member: "id",
		},
		{
			name: "properties before methods",
			decl: &syntax.TypeDecl{Members: []syntax.Member{
				{Kind: syntax.Method, Name: "Current", Type: ref("Document")},
				{Kind: syntax.Field, Name: "_id", Type: ref("ElementId")},
			}},
			kind:   FieldReference,
			member: "_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.decl.Kind == "" {
				tt.decl.Kind = syntax.ClassDecl
			}
			tt.decl.Name = "Subject"
			got := FindForbiddenReference(tt.decl, b)
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.member, got.Member)
			require.NotNil(t, got.Symbol)
			assert.True(t, IsRevitType(got.Symbol))
		})
	}
}

func TestFindForbiddenReferenceIgnoresClassPrimaryConstructor(t *testing.T) {
	t.Parallel()

	b := newFakeBinder()
	b.addType("ElementId", "Autodesk.Revit.DB", "ElementId")

	decl := &syntax.TypeDecl{
		Kind:       syntax.ClassDecl,
		Name:       "FooQuery",
		Parameters: []syntax.Parameter{{Name: "id", Type: ref("ElementId")}},
	}
	assert.Nil(t, FindForbiddenReference(decl, b))
	assert.Zero(t, b.resolves)

	decl.Kind = syntax.RecordDecl
	got := FindForbiddenReference(decl, b)
	require.NotNil(t, got)
	assert.Equal(t, ConstructorParamRef, got.Kind)
}

func TestFindForbiddenReferenceNone(t *testing.T) {
	t.Parallel()

	b := newFakeBinder()
	b.addType("string", "System", "String")
	b.addType("WallDto", "App.Models", "WallDto")

	decl := &syntax.TypeDecl{
		Kind:       syntax.RecordDecl,
		Name:       "GetWallsQueryResult",
		File:       &syntax.File{Usings: []syntax.UsingDirective{{Name: "System"}}},
		Parameters: []syntax.Parameter{{Name: "Name", Type: ref("string")}, {Name: "X", Type: nil}},
		Members: []syntax.Member{
			{Kind: syntax.Property, Name: "Walls", Type: ref("List<WallDto>")},
			{Kind: syntax.Property, Name: "Unknown", Type: ref("Document")},
			{Kind: syntax.Method, Name: "Describe", Type: ref("string")},
		},
	}
	assert.Nil(t, FindForbiddenReference(decl, b))
	assert.False(t, HasForbiddenDependency(decl, b))
	assert.False(t, HasForbiddenDependency(nil, b))
}

func TestFindForbiddenReferenceStopsAtFirstHit(t *testing.T) {
	t.Parallel()

	b := newFakeBinder()
	b.addType("Document", "Autodesk.Revit.DB", "Document")

	decl := &syntax.TypeDecl{
		Kind:       syntax.RecordDecl,
		Name:       "Q",
		Parameters: []syntax.Parameter{{Name: "Doc", Type: ref("Document")}},
		Members: []syntax.Member{
			{Kind: syntax.Property, Name: "A", Type: ref("Document")},
			{Kind: syntax.Property, Name: "B", Type: ref("Document")},
		},
	}
	got := FindForbiddenReference(decl, b)
	require.NotNil(t, got)
	assert.Equal(t, ConstructorParamRef, got.Kind)
	assert.Equal(t, 1, b.resolves)
}

func TestReferenceDescribe(t *testing.T) {
	t.Parallel()

	ns := &model.Namespace{Name: "DB", Parent: &model.Namespace{Name: "Revit", Parent: &model.Namespace{Name: "Autodesk", Parent: &model.Namespace{}}}}
	r := &Reference{Kind: PropertyReference, Member: "RevitDocument", Text: "Document", Symbol: &model.TypeSymbol{Name: "Document", Namespace: ns}}
	assert.Equal(t, "property 'RevitDocument' has type Autodesk.Revit.DB.Document", r.Describe())

	r = &Reference{Kind: ReturnTypeReference, Text: "Wall"}
	assert.Equal(t, "return type has type Wall", r.Describe())
}
