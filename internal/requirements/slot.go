package requirements

import "fmt"

// SlotKind is the closed set of requirement slot kinds.
type SlotKind uint8

const (
	KindUnknown SlotKind = iota
	KindUniversity
	KindGESubslot
	KindSpecialSubject
	KindWritingSubslot
	KindMajorPrep
	KindMajorUpper
	KindMajorElective
	KindScienceElective
	KindGroupOption
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindUniversity:      "university",
	KindGESubslot:       "ge-subslot",
	KindSpecialSubject:  "special-subject",
	KindWritingSubslot:  "writing-subslot",
	KindMajorPrep:       "major-prep-item",
	KindMajorUpper:      "major-upper-item",
	KindMajorElective:   "major-elective-item",
	KindScienceElective: "science-elective-item",
	KindGroupOption:     "group-option",
}

func (k SlotKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("SlotKind(%d)", k)
}

// IsMajor reports whether slots of this kind belong to the active major.
func (k SlotKind) IsMajor() bool {
	switch k {
	case KindMajorPrep, KindMajorUpper, KindMajorElective, KindScienceElective, KindGroupOption:
		return true
	case KindUnknown, KindUniversity, KindGESubslot, KindSpecialSubject, KindWritingSubslot:
		return false
	}
	panic(fmt.Sprintf("requirements: unhandled slot kind %d", k))
}

// IsGE reports whether slots of this kind are general education slots,
// which can be moved between areas.
func (k SlotKind) IsGE() bool {
	switch k {
	case KindGESubslot:
		return true
	case KindUnknown, KindUniversity, KindSpecialSubject, KindWritingSubslot,
		KindMajorPrep, KindMajorUpper, KindMajorElective, KindScienceElective, KindGroupOption:
		return false
	}
	panic(fmt.Sprintf("requirements: unhandled slot kind %d", k))
}

// SlotDef is the static definition of a slot.
type SlotDef struct {
	ID     string
	Kind   SlotKind
	Parent string
}

// Aggregation is how a section decides it is complete.
type Aggregation uint8

const (
	// AllChildren completes when every child slot is satisfied.
	AllChildren Aggregation = iota
	// UnitThreshold completes when satisfied units reach the requirement.
	UnitThreshold
)

func (a Aggregation) String() string {
	switch a {
	case AllChildren:
		return "all-children"
	case UnitThreshold:
		return "unit-threshold"
	}
	return fmt.Sprintf("Aggregation(%d)", a)
}
