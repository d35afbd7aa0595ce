package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/revitlint/internal/lang"
	"github.com/phobologic/revitlint/internal/syntax"
)

func parseSource(t *testing.T, path, source string) *syntax.File {
	t.Helper()
	l := lang.Languages[lang.CSharp]
	require.NotNil(t, l, "csharp language not registered")
	f, err := File(context.Background(), l, l.NewParser(), []byte(source), path)
	require.NoError(t, err)
	return f
}

func findType(t *testing.T, f *syntax.File, name string) *syntax.TypeDecl {
	t.Helper()
	for _, d := range f.Types {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("type %q not found in %+v", name, f.Types)
	return nil
}

func TestUsingDirectives(t *testing.T) {
	t.Parallel()

	f := parseSource(t, "Usings.cs", `using System;
using Autodesk.Revit.DB;
global using System.Linq;
using static System.Math;
using Doc = Autodesk.Revit.DB.Document;

namespace App
{
    using Autodesk.Revit.UI;
}
`)

	require.Len(t, f.Usings, 6)

	assert.Equal(t, "System", f.Usings[0].Name)
	assert.Equal(t, "Autodesk.Revit.DB", f.Usings[1].Name)
	assert.Equal(t, 2, f.Usings[1].Span.StartLine)

	assert.Equal(t, "System.Linq", f.Usings[2].Name)
	assert.True(t, f.Usings[2].Global)

	assert.Equal(t, "System.Math", f.Usings[3].Name)
	assert.True(t, f.Usings[3].Static)

	assert.Equal(t, "Doc", f.Usings[4].Alias)
	assert.Equal(t, "Autodesk.Revit.DB.Document", f.Usings[4].Name)

	assert.Equal(t, "Autodesk.Revit.UI", f.Usings[5].Name)
	assert.Equal(t, "App", f.Usings[5].Namespace)
}

func TestClassDeclaration(t *testing.T) {
	t.Parallel()

	f := parseSource(t, "HomeViewModel.cs", `using System;

namespace TestNamespace
{
    public class HomeViewModel
    {
        public Document RevitDocument { get; set; }
        private readonly ElementId _id, _other;
        public Wall Find(ElementId id, string name) { return null; }
    }
}
`)

	d := findType(t, f, "HomeViewModel")
	assert.Equal(t, syntax.ClassDecl, d.Kind)
	assert.Equal(t, "TestNamespace", d.Namespace)
	assert.Same(t, f, d.File)
	assert.False(t, d.HasPrimaryConstructor())

	assert.Equal(t, 5, d.NameSpan.StartLine)
	assert.Equal(t, 18, d.NameSpan.StartColumn)
	assert.Equal(t, 31, d.NameSpan.EndColumn)

	require.Len(t, d.Members, 3)

	prop := d.Members[0]
	assert.Equal(t, syntax.Property, prop.Kind)
	assert.Equal(t, "RevitDocument", prop.Name)
	require.NotNil(t, prop.Type)
	assert.Equal(t, "Document", prop.Type.Text)
	assert.Equal(t, 7, prop.Type.Span.StartLine)
	assert.Equal(t, 16, prop.Type.Span.StartColumn)

	field := d.Members[1]
	assert.Equal(t, syntax.Field, field.Kind)
	require.NotNil(t, field.Type)
	assert.Equal(t, "ElementId", field.Type.Text)

	method := d.Members[2]
	assert.Equal(t, syntax.Method, method.Kind)
	assert.Equal(t, "Find", method.Name)
	require.NotNil(t, method.Type)
	assert.Equal(t, "Wall", method.Type.Text)
	require.Len(t, method.Parameters, 2)
	assert.Equal(t, "ElementId", method.Parameters[0].Type.Text)
	assert.Equal(t, "string", method.Parameters[1].Type.Text)
}

func TestRecordPrimaryConstructor(t *testing.T) {
	t.Parallel()

	f := parseSource(t, "Queries.cs", `using System;

namespace TestNamespace
{
    public record GetElementIdQuery(ElementId Id);

    public record ComplexQueryResult(string Name)
    {
        public ElementId Id { get; init; }
    }
}
`)

	q := findType(t, f, "GetElementIdQuery")
	assert.Equal(t, syntax.RecordDecl, q.Kind)
	require.True(t, q.HasPrimaryConstructor())
	require.Len(t, q.Parameters, 1)
	assert.Equal(t, "Id", q.Parameters[0].Name)
	assert.Equal(t, "ElementId", q.Parameters[0].Type.Text)

	r := findType(t, f, "ComplexQueryResult")
	require.Len(t, r.Parameters, 1)
	assert.Equal(t, "string", r.Parameters[0].Type.Text)
	require.Len(t, r.Members, 1)
	assert.Equal(t, "ElementId", r.Members[0].Type.Text)
}

func TestRecordStructIsStruct(t *testing.T) {
	t.Parallel()

	f := parseSource(t, "Points.cs", `namespace App;

public record struct PointQuery(int X, int Y);

public record class LineQuery(int Length);
`)

	assert.Equal(t, syntax.StructDecl, findType(t, f, "PointQuery").Kind)
	assert.Equal(t, syntax.RecordDecl, findType(t, f, "LineQuery").Kind)
}

func TestBaseListAndGenerics(t *testing.T) {
	t.Parallel()

	f := parseSource(t, "Title.cs", `namespace TestNamespace
{
    public class GetDocumentTitleQuery : IQuery<GetDocumentTitleQueryResult>
    {
    }

    public interface IQuery<TResult> { }
}
`)

	q := findType(t, f, "GetDocumentTitleQuery")
	require.Len(t, q.Bases, 1)
	assert.Equal(t, "IQuery<GetDocumentTitleQueryResult>", q.Bases[0].Text)

	i := findType(t, f, "IQuery")
	assert.Equal(t, syntax.InterfaceDecl, i.Kind)
	assert.Equal(t, 1, i.Arity)
}

func TestNestedAndQualifiedNamespaces(t *testing.T) {
	t.Parallel()

	f := parseSource(t, "Nested.cs", `namespace Company.Plugin
{
    namespace Views
    {
        public class Shell
        {
            public class InnerViewModel { }
        }
    }
}
`)

	shell := findType(t, f, "Shell")
	assert.Equal(t, "Company.Plugin.Views", shell.Namespace)

	inner := findType(t, f, "InnerViewModel")
	assert.Same(t, shell, inner.Container)
	assert.Equal(t, "Company.Plugin.Views.Shell.InnerViewModel", inner.QualifiedName())
}

func TestFileScopedNamespace(t *testing.T) {
	t.Parallel()

	f := parseSource(t, "Scoped.cs", `namespace Company.Plugin.Queries;

public record GetWallsQuery(int Level);
`)

	d := findType(t, f, "GetWallsQuery")
	assert.Equal(t, "Company.Plugin.Queries", d.Namespace)
}

func TestGeneratedDetection(t *testing.T) {
	t.Parallel()

	byName := parseSource(t, "obj/MainWindow.g.cs", "namespace App { }")
	assert.True(t, byName.Generated)

	byHeader := parseSource(t, "Gen.cs", "// <auto-generated/>\nnamespace App { }")
	assert.True(t, byHeader.Generated)

	plain := parseSource(t, "Plain.cs", "namespace App { }")
	assert.False(t, plain.Generated)
}

func TestEmptySource(t *testing.T) {
	t.Parallel()

	f := parseSource(t, "Empty.cs", "")
	assert.Empty(t, f.Types)
	assert.Empty(t, f.Usings)
}
