package requirements

import (
	"degreetrack/internal/course"
	"fmt"
)

// SectionType identifies a checklist section.
type SectionType uint8

const (
	SectionUniversity SectionType = iota
	SectionGE
	SectionPrep
	SectionUpper
	SectionElectives
	SectionScienceA
	SectionScienceB
)

var thresholdSections = map[string]SectionType{
	"prep":      SectionPrep,
	"upper":     SectionUpper,
	"electives": SectionElectives,
	"science_a": SectionScienceA,
	"science_b": SectionScienceB,
}

func (t SectionType) String() string {
	switch t {
	case SectionUniversity:
		return "univ"
	case SectionGE:
		return "ge"
	case SectionPrep:
		return "prep"
	case SectionUpper:
		return "upper"
	case SectionElectives:
		return "electives"
	case SectionScienceA:
		return "sciA"
	case SectionScienceB:
		return "sciB"
	}
	return fmt.Sprintf("SectionType(%d)", t)
}

// Checklist is the read view of slot state needed to evaluate sections.
type Checklist interface {
	Checked(slotID string) bool
	ExamChecked(label string) bool
	// Units is the unit value credited to a checked major slot.
	Units(slotID string) course.Amount
}

// Section is a top-level checklist block.
type Section struct {
	ID          string
	Label       string
	Type        SectionType
	Aggregation Aggregation
	Items       []Item
}

// ChildStatus is one row inside a section.
type ChildStatus struct {
	SlotID  string `json:"slot_id"`
	Group   string `json:"group,omitempty"`
	Checked bool   `json:"checked"`
}

// SectionStatus is an evaluated section.
type SectionStatus struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	Type      string        `json:"type"`
	Complete  bool          `json:"complete"`
	Current   course.Amount `json:"current_units,omitempty"`
	Required  course.Amount `json:"required_units,omitempty"`
	UnitBased bool          `json:"unit_based"`
	Children  []ChildStatus `json:"children"`
}

// Sections lists the checklist blocks for a major in display order.
func (r *Registry) Sections(m *Major) []Section {
	out := []Section{{
		ID:          r.UniversityID,
		Label:       r.UniversityLabel,
		Type:        SectionUniversity,
		Aggregation: AllChildren,
		Items:       courseItems(r.UniversitySlots),
	}}
	for _, a := range r.Areas {
		out = append(out, Section{ID: a.ID, Label: a.ID, Type: SectionGE, Aggregation: AllChildren, Items: courseItems(a.Slots)})
	}
	if len(r.Specials) > 0 {
		ids := make([]string, 0, len(r.Specials))
		for _, s := range r.Specials {
			ids = append(ids, s.SlotID)
		}
		out = append(out, Section{ID: r.SpecialID, Label: r.SpecialID, Type: SectionGE, Aggregation: AllChildren, Items: courseItems(ids)})
	}
	if len(r.Writing.Slots) > 0 {
		label := r.Writing.Label
		if label == "" {
			label = r.Writing.ID
		}
		out = append(out, Section{ID: r.Writing.ID, Label: label, Type: SectionGE, Aggregation: AllChildren, Items: courseItems(r.Writing.Slots)})
	}
	if m == nil {
		return out
	}
	out = append(out,
		Section{ID: "major-prep", Label: "Preparation for Major", Type: SectionPrep, Aggregation: UnitThreshold, Items: m.Prep},
		Section{ID: "major-upper", Label: "Upper Division Major Core", Type: SectionUpper, Aggregation: UnitThreshold, Items: m.Upper},
		Section{ID: "major-electives", Label: "Major Field Electives", Type: SectionElectives, Aggregation: UnitThreshold, Items: courseItems(m.Electives)},
	)
	if m.HasScience() {
		out = append(out,
			Section{ID: "science-electives-a", Label: "Science Electives List A", Type: SectionScienceA, Aggregation: UnitThreshold, Items: courseItems(m.ScienceA)},
			Section{ID: "science-electives-b", Label: "Science Electives List B", Type: SectionScienceB, Aggregation: UnitThreshold, Items: courseItems(m.ScienceB)},
		)
	}
	return out
}

func courseItems(ids []string) []Item {
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{Course: id}
	}
	return items
}

// Evaluate computes completion for every section. Unit sections sum the
// units of checked items; a group contributes its first fully checked
// option. All-children sections complete when every child is checked.
func (r *Registry) Evaluate(m *Major, cl Checklist) []SectionStatus {
	sections := r.Sections(m)
	out := make([]SectionStatus, 0, len(sections))
	for _, sec := range sections {
		st := SectionStatus{ID: sec.ID, Label: sec.Label, Type: sec.Type.String()}
		var current course.Amount
		for _, it := range sec.Items {
			if it.Group != nil {
				opt, ok := it.Group.ActiveOption(cl.Checked)
				if ok {
					current += opt.Units
				}
				st.Children = append(st.Children, ChildStatus{SlotID: it.Group.Key, Group: it.Group.Name, Checked: ok})
				continue
			}
			checked := cl.Checked(it.Course)
			if checked && sec.Aggregation == UnitThreshold {
				current += cl.Units(it.Course)
			}
			st.Children = append(st.Children, ChildStatus{SlotID: it.Course, Checked: checked})
		}

		switch sec.Aggregation {
		case UnitThreshold:
			th := m.Thresholds[sec.Type]
			if th.ExamOverride != nil && cl.ExamChecked(th.ExamOverride.Exam) {
				current = th.ExamOverride.Units
			}
			st.UnitBased = true
			st.Current = current
			st.Required = th.Required(cl.Checked)
			st.Complete = current >= st.Required
		case AllChildren:
			st.Complete = len(st.Children) > 0
			for _, c := range st.Children {
				if !c.Checked {
					st.Complete = false
					break
				}
			}
		}
		out = append(out, st)
	}
	return out
}
