// Package course holds the catalog side of the tracker: canonical course
// identifiers, unit amounts and the static catalog lookup.
package course

import "strings"

// Code is a canonical course identifier. "CMPSC 16", "cmpsc16" and
// "CMPSC-16" all normalize to "CMPSC16".
type Code string

// Normalize strips every character that is not an ASCII letter or digit and
// uppercases the rest. Normalize(string(Normalize(x))) == Normalize(x).
func Normalize(raw string) Code {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		}
	}
	return Code(b.String())
}

// NormalizeLabel normalizes a display label such as "CMPSC 16 (A-)" by
// dropping the parenthesized grade suffix first.
func NormalizeLabel(label string) Code {
	if i := strings.Index(label, "("); i >= 0 {
		label = label[:i]
	}
	return Normalize(label)
}

func (c Code) String() string { return string(c) }

// IsZero reports whether the code normalized to nothing.
func (c Code) IsZero() bool { return c == "" }
