// Package lang provides a language registry mapping file extensions to
// tree-sitter languages.
package lang

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// GeneratedSuffixes lists file name suffixes (lower case) of tool
	// generated sources that are never analyzed.
	GeneratedSuffixes []string

	// GeneratedMarker is a comment that marks a whole file as generated when
	// it appears in the file header.
	GeneratedMarker string
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// IsGeneratedName reports whether a file name looks tool generated.
func (l *Language) IsGeneratedName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range l.GeneratedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// headerWindow bounds how much of a file is searched for GeneratedMarker.
const headerWindow = 1024

// IsGeneratedSource reports whether the file header carries GeneratedMarker.
func (l *Language) IsGeneratedSource(source []byte) bool {
	if l.GeneratedMarker == "" {
		return false
	}
	head := source
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	return strings.Contains(string(head), l.GeneratedMarker)
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
// Extensions are matched case-insensitively.
func ForExtension(ext string) string {
	return getExtensionMap()[strings.ToLower(ext)]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
