package requirements

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultEquivalency(t *testing.T) {
	eq, err := DefaultEquivalency()
	if err != nil {
		t.Fatalf("DefaultEquivalency: %v", err)
	}
	ex, err := eq.Exam("AP US History")
	if err != nil {
		t.Fatal(err)
	}
	if ex.System != "ap" || len(ex.Satisfies) != 2 {
		t.Errorf("exam = %+v", ex)
	}
	if _, ok := eq.System("ale"); !ok {
		t.Error("ale system missing")
	}
	if eq.IsExam("CMPSC 16") {
		t.Error("course code should not be an exam")
	}
	if _, err := eq.Exam("AP Underwater Basket Weaving"); !errors.Is(err, ErrUnknownExam) {
		t.Errorf("error = %v", err)
	}
}

func TestEquivalencyTargetsResolve(t *testing.T) {
	reg := mustDefault(t)
	eq, _ := DefaultEquivalency()
	cs, _ := reg.Major("CS")
	for _, sys := range eq.Systems {
		for _, ex := range sys.Exams {
			for _, target := range ex.Satisfies {
				if _, ok := reg.Area(target); ok {
					continue
				}
				if _, ok := reg.Slot(target); ok {
					continue
				}
				if strings.HasPrefix(target, "MATH") || strings.HasPrefix(target, "CHEM") ||
					strings.HasPrefix(target, "PHYS") || strings.HasPrefix(target, "CMPSC") {
					continue
				}
				if reg.SlotKindOf(cs, target) == KindUnknown {
					t.Errorf("%s target %q does not resolve", ex.Name, target)
				}
			}
		}
	}
}

func TestLoadEquivalencyDuplicate(t *testing.T) {
	doc := `
systems:
  - key: ap
    exams: [{name: X}]
  - key: ib
    exams: [{name: X}]
`
	if _, err := LoadEquivalency(strings.NewReader(doc)); !errors.Is(err, ErrInvalidRegistry) {
		t.Errorf("error = %v", err)
	}
}
