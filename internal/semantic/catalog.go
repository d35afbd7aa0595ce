package semantic

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/revitlint/internal/model"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Catalog lists types exported by referenced assemblies, grouped by
// namespace. Generic types use metadata names, e.g. "List`1".
type Catalog struct {
	Name       string                    `yaml:"name"`
	Namespaces map[string]NamespaceTypes `yaml:"namespaces"`
}

// NamespaceTypes holds the exported type names of one namespace by kind.
type NamespaceTypes struct {
	Classes    []string `yaml:"classes"`
	Structs    []string `yaml:"structs"`
	Interfaces []string `yaml:"interfaces"`
	Enums      []string `yaml:"enums"`
	Delegates  []string `yaml:"delegates"`
}

// catalogEntry is one exported type after flattening.
type catalogEntry struct {
	Namespace string
	Name      string
	Arity     int
	Kind      model.TypeKind
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	for ns := range c.Namespaces {
		if ns == "" || strings.HasPrefix(ns, ".") || strings.HasSuffix(ns, ".") || strings.Contains(ns, "..") {
			return nil, fmt.Errorf("catalog %q: invalid namespace %q", c.Name, ns)
		}
	}
	return &c, nil
}

// LoadCatalog reads and decodes a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = path
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the embedded catalog of common System and Revit API
// types. It is decoded once and shared; callers must not modify it.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		data, err := catalogFS.ReadFile("catalogs/default.yaml")
		if err != nil {
			defaultErr = fmt.Errorf("reading embedded catalog: %w", err)
			return
		}
		defaultCatalog, defaultErr = ParseCatalog(data)
	})
	return defaultCatalog, defaultErr
}

// entries flattens the catalog in a deterministic order.
func (c *Catalog) entries() []catalogEntry {
	names := make([]string, 0, len(c.Namespaces))
	for ns := range c.Namespaces {
		names = append(names, ns)
	}
	sort.Strings(names)

	var out []catalogEntry
	for _, ns := range names {
		t := c.Namespaces[ns]
		groups := []struct {
			kind  model.TypeKind
			names []string
		}{
			{model.Class, t.Classes},
			{model.Struct, t.Structs},
			{model.Interface, t.Interfaces},
			{model.Enum, t.Enums},
			{model.Delegate, t.Delegates},
		}
		for _, g := range groups {
			for _, raw := range g.names {
				name, arity := splitArity(strings.TrimSpace(raw))
				if name == "" {
					continue
				}
				out = append(out, catalogEntry{Namespace: ns, Name: name, Arity: arity, Kind: g.kind})
			}
		}
	}
	return out
}

// splitArity splits a metadata name such as "IQuery`1" into name and arity.
func splitArity(metadataName string) (string, int) {
	name, suffix, ok := strings.Cut(metadataName, "`")
	if !ok {
		return name, 0
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return name, 0
	}
	return name, n
}
