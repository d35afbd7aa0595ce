package lang

import (
	"github.com/smacker/go-tree-sitter/csharp"
)

// CSharp is the registry name of the C# language.
const CSharp = "csharp"

func init() {
	Languages[CSharp] = &Language{
		Name:              CSharp,
		Extensions:        []string{".cs"},
		lang:              csharp.GetLanguage(),
		GeneratedSuffixes: []string{".g.cs", ".g.i.cs", ".designer.cs", ".generated.cs"},
		GeneratedMarker:   "<auto-generated",
	}
}
