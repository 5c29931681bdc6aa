// Package grade models letter grades and the predicates the tracker needs
// for unit and GPA accounting.
package grade

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGradeToken marks a grade token outside the accepted set.
var ErrInvalidGradeToken = errors.New("invalid grade token")

// Grade is a normalized grade token.
type Grade string

const (
	APlus      Grade = "A+"
	A          Grade = "A"
	AMinus     Grade = "A-"
	BPlus      Grade = "B+"
	B          Grade = "B"
	BMinus     Grade = "B-"
	CPlus      Grade = "C+"
	C          Grade = "C"
	CMinus     Grade = "C-"
	DPlus      Grade = "D+"
	D          Grade = "D"
	DMinus     Grade = "D-"
	F          Grade = "F"
	Pass       Grade = "P"
	NoPass     Grade = "NP"
	InProgress Grade = "IP"
)

// points holds grade points in tenths.
var points = map[Grade]int64{
	APlus: 40, A: 40, AMinus: 37,
	BPlus: 33, B: 30, BMinus: 27,
	CPlus: 23, C: 20, CMinus: 17,
	DPlus: 13, D: 10, DMinus: 7,
	F: 0,
}

var majorPassing = map[Grade]bool{
	APlus: true, A: true, AMinus: true,
	BPlus: true, B: true, BMinus: true,
	CPlus: true, C: true,
	InProgress: true,
}

// Parse normalizes a grade token by removing spaces and uppercasing.
// An empty token means the course is in progress.
func Parse(raw string) (Grade, error) {
	tok := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if tok == "" {
		return InProgress, nil
	}
	g := Grade(tok)
	if g.Valid() {
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGradeToken, raw)
}

// Valid reports whether g is in the accepted set.
func (g Grade) Valid() bool {
	if _, ok := points[g]; ok {
		return true
	}
	return g == Pass || g == NoPass || g == InProgress
}

// Points returns grade points in tenths. ok is false for P, NP and IP.
func (g Grade) Points() (tenths int64, ok bool) {
	tenths, ok = points[g]
	return tenths, ok
}

// Failing is true for F and NP. Failing grades are displayed but never
// check a box.
func (g Grade) Failing() bool { return g == F || g == NoPass }

// PassesMajor reports whether g meets the C-or-better major bar. IP passes
// so in-progress courses hold their slot.
func (g Grade) PassesMajor() bool { return majorPassing[g] }

// CountsUnits reports whether the course funds completed units.
func (g Grade) CountsUnits() bool {
	return g != F && g != NoPass && g != InProgress
}

func (g Grade) String() string { return string(g) }
