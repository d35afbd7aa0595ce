package analyzer

import "github.com/phobologic/revitlint/internal/model"

// IsRevitType reports whether t lives under a namespace named Revit that is
// directly nested in a namespace named Autodesk, at any depth.
// X.Autodesk.Revit.Y matches as well as Autodesk.Revit.DB.
func IsRevitType(t *model.TypeSymbol) bool {
	if t == nil {
		return false
	}
	for ns := t.ContainingNamespace(); ns != nil; ns = ns.Parent {
		if ns.Name == "Revit" && ns.Parent != nil && ns.Parent.Name == "Autodesk" {
			return true
		}
	}
	return false
}
