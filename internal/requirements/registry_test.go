package requirements

import (
	"degreetrack/internal/course"
	"errors"
	"strings"
	"testing"
)

func mustDefault(t *testing.T) *Registry {
	t.Helper()
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}
	return reg
}

func TestDefaultRegistryShape(t *testing.T) {
	reg := mustDefault(t)

	if reg.HomeInstitution != "UCSB" {
		t.Errorf("home = %q", reg.HomeInstitution)
	}
	for _, inst := range []string{"UCSB", "UCLA", "UCM"} {
		if !reg.CountsTowardGPA(inst) {
			t.Errorf("%s should count toward GPA", inst)
		}
	}
	if reg.CountsTowardGPA("SBCC") {
		t.Error("SBCC should not count toward GPA")
	}

	wantSlots := map[string]int{"D": 2, "E": 2, "F": 1, "G": 1}
	for letter, n := range wantSlots {
		a, ok := reg.Area(letter)
		if !ok {
			t.Fatalf("area %s missing", letter)
		}
		if !a.Core || len(a.Slots) != n {
			t.Errorf("area %s: core=%v slots=%v", letter, a.Core, a.Slots)
		}
	}
	d, _ := reg.Area("D")
	if d.Slots[0] != "Area D: Social Science-D-1" {
		t.Errorf("slot id = %q", d.Slots[0])
	}
	if len(reg.CoreAreas()) != 4 {
		t.Errorf("core areas = %d", len(reg.CoreAreas()))
	}
	if len(reg.Writing.Slots) != 4 || reg.Writing.Slots[3] != "Writing Requirement-Writing-4" {
		t.Errorf("writing slots = %v", reg.Writing.Slots)
	}

	var keys []string
	for _, m := range reg.Majors() {
		keys = append(keys, m.Key)
	}
	if got := strings.Join(keys, ","); got != "CS,CompE,EE,MechE,ChemE" {
		t.Errorf("major order = %s", got)
	}
}

func TestResolveTag(t *testing.T) {
	reg := mustDefault(t)

	tests := []struct {
		tag  string
		kind TargetKind
		slot string
	}{
		{"D", TargetCore, ""},
		{"G", TargetCore, ""},
		{"A1", TargetSlot, "Area A: English Reading & Comprehension-A-1"},
		{"Ethnicity", TargetSlot, "Special Subject Areas-Ethnicity"},
		{"European Traditions", TargetSlot, "Special Subject Areas-European Traditions or World Cultures"},
		{"World Cultures", TargetSlot, "Special Subject Areas-European Traditions or World Cultures"},
		{"Writing", TargetWriting, ""},
		{"C", TargetNone, ""},
		{"Q", TargetNone, ""},
	}
	for _, tt := range tests {
		got := reg.ResolveTag(tt.tag)
		if got.Kind != tt.kind || got.SlotID != tt.slot {
			t.Errorf("ResolveTag(%q) = %+v", tt.tag, got)
		}
	}
}

func TestSlotKinds(t *testing.T) {
	reg := mustDefault(t)
	cs, err := reg.Major("CS")
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]SlotKind{
		"Entry Level Writing":             KindUniversity,
		"Area E: Culture and Thought-E-2": KindGESubslot,
		"Special Subject Areas-Ethnicity": KindSpecialSubject,
		"Writing Requirement-Writing-1":   KindWritingSubslot,
		"CMPSC 16":                        KindMajorPrep,
		"CMPSC 130A":                      KindMajorUpper,
		"CMPSC 170":                       KindMajorElective,
		"MCDB 1A":                         KindScienceElective,
		"nonsense":                        KindUnknown,
		"Area A: English Reading & Comprehension-A-2": KindGESubslot,
	}
	for id, want := range tests {
		if got := reg.SlotKindOf(cs, id); got != want {
			t.Errorf("SlotKindOf(%q) = %s, want %s", id, got, want)
		}
	}
	for _, k := range []SlotKind{KindMajorPrep, KindGroupOption, KindScienceElective} {
		if !k.IsMajor() {
			t.Errorf("%s should be a major kind", k)
		}
	}
	if KindGESubslot.IsMajor() || !KindGESubslot.IsGE() || KindWritingSubslot.IsGE() {
		t.Error("kind predicates wrong")
	}
}

func TestMajorMatchOrder(t *testing.T) {
	reg := mustDefault(t)

	ee, _ := reg.Major("EE")
	// CMPSC 16 is an option of the COMPSCI_EE prep group.
	m, ok := ee.Match("CMPSC16")
	if !ok || m.Kind != KindGroupOption || m.Group == nil || m.Group.Key != "COMPSCI_EE" {
		t.Errorf("EE CMPSC16 match = %+v %v", m, ok)
	}

	cs, _ := reg.Major("CS")
	m, ok = cs.Match(course.Normalize("math 3a"))
	if !ok || m.SlotID != "MATH 3A" || m.Kind != KindMajorPrep {
		t.Errorf("CS MATH3A match = %+v %v", m, ok)
	}
	// CHEM 1A is on science list A before list B.
	m, ok = cs.Match("CHEM1A")
	if !ok || m.Kind != KindScienceElective {
		t.Errorf("CS CHEM1A match = %+v %v", m, ok)
	}
	if _, ok := cs.Match("ANTH2"); ok {
		t.Error("ANTH2 should not match a CS slot")
	}

	compe, _ := reg.Major("CompE")
	// CMPSC 189A is in upper before any elective list.
	m, _ = compe.Match("CMPSC189A")
	if m.Kind != KindMajorUpper {
		t.Errorf("CompE CMPSC189A kind = %s", m.Kind)
	}
	if !compe.Owns("MATH 2A") || compe.Owns("ANTH 2") {
		t.Error("Owns mismatch")
	}
}

func TestUnknownMajor(t *testing.T) {
	reg := mustDefault(t)
	if _, err := reg.Major("Art"); !errors.Is(err, ErrUnknownMajor) {
		t.Errorf("error = %v", err)
	}
}

func TestLoadRegistryRejectsUnknownGroup(t *testing.T) {
	doc := `
institutions: {home: UCSB}
majors:
  - key: X
    prep: ["GROUP:MISSING"]
`
	if _, err := LoadRegistry(strings.NewReader(doc)); !errors.Is(err, ErrInvalidRegistry) {
		t.Errorf("error = %v", err)
	}
}

func TestLoadRegistryRejectsUnknownField(t *testing.T) {
	doc := `
institutions: {home: UCSB}
colour: blue
`
	if _, err := LoadRegistry(strings.NewReader(doc)); err == nil {
		t.Error("expected error for unknown field")
	}
}
