package syntax

import (
	"strings"
	"unicode"
)

// Segment is one dotted component of a type name.
type Segment struct {
	Name  string
	Arity int
}

// TypeName is the structured form of a written type.
type TypeName struct {
	// Alias is the qualifier before "::", e.g. "global".
	Alias     string
	Segments  []Segment
	Nullable  bool
	ArrayRank int
	Pointer   bool
	Tuple     bool
}

// IsNamed reports whether the name denotes a plain named type that a binder
// can look up (not an array, pointer or tuple).
func (n TypeName) IsNamed() bool {
	return len(n.Segments) > 0 && n.ArrayRank == 0 && !n.Pointer && !n.Tuple
}

// Last returns the final segment.
func (n TypeName) Last() Segment {
	if len(n.Segments) == 0 {
		return Segment{}
	}
	return n.Segments[len(n.Segments)-1]
}

var typePrefixes = []string{"scoped ", "ref readonly ", "ref ", "readonly ", "params ", "in ", "out ", "this "}

// ParseTypeName parses the source text of a C# type. Unparseable input yields
// a TypeName with no segments.
func ParseTypeName(text string) TypeName {
	var n TypeName
	s := strings.TrimSpace(text)
	for stripped := true; stripped; {
		stripped = false
		for _, p := range typePrefixes {
			if strings.HasPrefix(s, p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
			}
		}
	}
	s = removeSpace(s)
	if s == "" {
		return n
	}

	for {
		switch {
		case strings.HasSuffix(s, "?"):
			n.Nullable = true
			s = s[:len(s)-1]
			continue
		case strings.HasSuffix(s, "*"):
			n.Pointer = true
			s = s[:len(s)-1]
			continue
		case strings.HasSuffix(s, "]"):
			open := matchOpen(s, '[', ']')
			if open < 0 {
				return TypeName{}
			}
			n.ArrayRank++
			s = s[:open]
			continue
		}
		break
	}

	if strings.HasPrefix(s, "(") {
		n.Tuple = true
		return n
	}

	if i := strings.Index(s, "::"); i >= 0 {
		n.Alias = s[:i]
		s = s[i+2:]
	}

	for _, part := range splitTopLevel(s, '.') {
		seg, ok := parseSegment(part)
		if !ok {
			return TypeName{}
		}
		n.Segments = append(n.Segments, seg)
	}
	return n
}

func parseSegment(part string) (Segment, bool) {
	lt := strings.IndexByte(part, '<')
	if lt < 0 {
		if part == "" {
			return Segment{}, false
		}
		return Segment{Name: part}, true
	}
	if !strings.HasSuffix(part, ">") || lt == 0 {
		return Segment{}, false
	}
	args := part[lt+1 : len(part)-1]
	return Segment{Name: part[:lt], Arity: len(splitTopLevel(args, ','))}, true
}

// splitTopLevel splits s at sep characters not nested in <>, () or [].
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// matchOpen returns the index of the bracket opening the one s ends with.
func matchOpen(s string, open, shut byte) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case shut:
			depth++
		case open:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func removeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
