package analyzer

import (
	"sort"
	"sync"

	"github.com/phobologic/revitlint/internal/model"
)

// Collector is a Sink that stores diagnostics in memory.
type Collector struct {
	mu    sync.Mutex
	diags []model.Diagnostic
}

// Report implements Sink.
func (c *Collector) Report(d model.Diagnostic) {
	c.mu.Lock()
	c.diags = append(c.diags, d)
	c.mu.Unlock()
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.diags)
}

// Sorted returns a copy of the collected diagnostics ordered by path,
// position and rule ID, independent of reporting order.
func (c *Collector) Sorted() []model.Diagnostic {
	c.mu.Lock()
	out := make([]model.Diagnostic, len(c.diags))
	copy(out, c.diags)
	c.mu.Unlock()
	SortDiagnostics(out)
	return out
}

// SortDiagnostics orders diagnostics by path, line, column, rule ID and message.
func SortDiagnostics(ds []model.Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Location.Path != b.Location.Path {
			return a.Location.Path < b.Location.Path
		}
		if a.Location.Span.StartLine != b.Location.Span.StartLine {
			return a.Location.Span.StartLine < b.Location.Span.StartLine
		}
		if a.Location.Span.StartColumn != b.Location.Span.StartColumn {
			return a.Location.Span.StartColumn < b.Location.Span.StartColumn
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Message < b.Message
	})
}
