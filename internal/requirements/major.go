package requirements

import (
	"degreetrack/internal/course"
	"fmt"
	"strings"
)

const groupPrefix = "GROUP:"

// Group is a choose-one-of-N bundle. Each option is a fixed set of courses
// worth a fixed unit value.
type Group struct {
	Key     string
	Name    string
	Options []Option
}

// Option is one bundle of a group.
type Option struct {
	Courses []string
	Units   course.Amount
}

// ActiveOption is the first option whose courses are all checked.
func (g *Group) ActiveOption(checked func(slotID string) bool) (Option, bool) {
	for _, opt := range g.Options {
		all := len(opt.Courses) > 0
		for _, c := range opt.Courses {
			if !checked(c) {
				all = false
				break
			}
		}
		if all {
			return opt, true
		}
	}
	return Option{}, false
}

func compileGroup(key string, g groupFile) (*Group, error) {
	if len(g.Options) == 0 {
		return nil, fmt.Errorf("%w: group %q has no options", ErrInvalidRegistry, key)
	}
	grp := &Group{Key: key, Name: g.Name}
	for _, o := range g.Options {
		grp.Options = append(grp.Options, Option{Courses: o.Courses, Units: amount(o.Units)})
	}
	return grp, nil
}

// Item is one entry of a prep or upper list: a course or a group.
type Item struct {
	Course string
	Group  *Group
}

// Carveout overrides a threshold when every listed slot is checked.
type Carveout struct {
	AllChecked []string
	Units      course.Amount
}

// ExamOverride sets the current units of a section when an exam is
// checked.
type ExamOverride struct {
	Exam  string
	Units course.Amount
}

// Threshold is the unit requirement of one section. Carveouts are tried in
// order; the first whose slots are all checked replaces Units.
type Threshold struct {
	Units        course.Amount
	Carveouts    []Carveout
	ExamOverride *ExamOverride
}

// Required resolves the requirement against the current checklist.
func (t Threshold) Required(checked func(slotID string) bool) course.Amount {
	for _, c := range t.Carveouts {
		all := len(c.AllChecked) > 0
		for _, id := range c.AllChecked {
			if !checked(id) {
				all = false
				break
			}
		}
		if all {
			return c.Units
		}
	}
	return t.Units
}

// MajorMatch is the slot a course lands in for a major.
type MajorMatch struct {
	SlotID string
	Kind   SlotKind
	Group  *Group
}

// Major is one compiled major requirement table.
type Major struct {
	Key        string
	Name       string
	Prep       []Item
	Upper      []Item
	Electives  []string
	ScienceA   []string
	ScienceB   []string
	PrepUnits  course.Amount
	UpperUnits course.Amount
	Thresholds map[SectionType]Threshold

	order []matchEntry
	kinds map[string]SlotKind
}

type matchEntry struct {
	code  course.Code
	match MajorMatch
}

func (r *Registry) compileMajor(mf majorFile, science map[string][]string) (*Major, error) {
	if mf.Key == "" {
		return nil, fmt.Errorf("%w: major without key", ErrInvalidRegistry)
	}
	m := &Major{
		Key:        mf.Key,
		Name:       mf.Name,
		Electives:  mf.Electives,
		PrepUnits:  amount(mf.PrepUnits),
		UpperUnits: amount(mf.UpperUnits),
		Thresholds: make(map[SectionType]Threshold),
		kinds:      make(map[string]SlotKind),
	}
	var err error
	if m.Prep, err = r.compileItems(mf.Key, mf.Prep); err != nil {
		return nil, err
	}
	if m.Upper, err = r.compileItems(mf.Key, mf.Upper); err != nil {
		return nil, err
	}
	for i, list := range mf.Science {
		courses, ok := science[list]
		if !ok {
			return nil, fmt.Errorf("%w: major %s references unknown science list %q", ErrInvalidRegistry, mf.Key, list)
		}
		switch i {
		case 0:
			m.ScienceA = courses
		case 1:
			m.ScienceB = courses
		default:
			return nil, fmt.Errorf("%w: major %s lists more than two science lists", ErrInvalidRegistry, mf.Key)
		}
	}

	for key, tf := range mf.Thresholds {
		st, ok := thresholdSections[key]
		if !ok {
			return nil, fmt.Errorf("%w: major %s has threshold for unknown section %q", ErrInvalidRegistry, mf.Key, key)
		}
		th := Threshold{Units: amount(tf.Units)}
		for _, c := range tf.Carveouts {
			th.Carveouts = append(th.Carveouts, Carveout{AllChecked: c.AllChecked, Units: amount(c.Units)})
		}
		if tf.ExamOverride != nil {
			th.ExamOverride = &ExamOverride{Exam: tf.ExamOverride.Exam, Units: amount(tf.ExamOverride.Units)}
		}
		m.Thresholds[st] = th
	}
	if _, ok := m.Thresholds[SectionPrep]; !ok {
		m.Thresholds[SectionPrep] = Threshold{Units: m.PrepUnits}
	}
	if _, ok := m.Thresholds[SectionUpper]; !ok {
		m.Thresholds[SectionUpper] = Threshold{Units: m.UpperUnits}
	}

	m.index(m.Prep, KindMajorPrep)
	m.index(m.Upper, KindMajorUpper)
	m.indexCourses(m.ScienceA, KindScienceElective)
	m.indexCourses(m.ScienceB, KindScienceElective)
	m.indexCourses(m.Electives, KindMajorElective)
	return m, nil
}

func (r *Registry) compileItems(major string, raw []string) ([]Item, error) {
	items := make([]Item, 0, len(raw))
	for _, s := range raw {
		if key, ok := strings.CutPrefix(s, groupPrefix); ok {
			g, found := r.groups[key]
			if !found {
				return nil, fmt.Errorf("%w: major %s references unknown group %q", ErrInvalidRegistry, major, key)
			}
			items = append(items, Item{Group: g})
			continue
		}
		items = append(items, Item{Course: s})
	}
	return items, nil
}

func (m *Major) index(items []Item, kind SlotKind) {
	for _, it := range items {
		if it.Group == nil {
			m.add(it.Course, MajorMatch{SlotID: it.Course, Kind: kind})
			continue
		}
		for _, opt := range it.Group.Options {
			for _, c := range opt.Courses {
				m.add(c, MajorMatch{SlotID: c, Kind: KindGroupOption, Group: it.Group})
			}
		}
	}
}

func (m *Major) indexCourses(courses []string, kind SlotKind) {
	for _, c := range courses {
		m.add(c, MajorMatch{SlotID: c, Kind: kind})
	}
}

func (m *Major) add(spelled string, mm MajorMatch) {
	m.order = append(m.order, matchEntry{code: course.Normalize(spelled), match: mm})
	if _, seen := m.kinds[spelled]; !seen {
		m.kinds[spelled] = mm.Kind
	}
}

// Match finds the major slot for a course. Lists are searched in order:
// prep, upper, science list A, science list B, electives. The first match
// wins.
func (m *Major) Match(code course.Code) (MajorMatch, bool) {
	for _, e := range m.order {
		if e.code == code {
			return e.match, true
		}
	}
	return MajorMatch{}, false
}

// HasScience reports whether the major defines science elective lists.
func (m *Major) HasScience() bool {
	return len(m.ScienceA) > 0 || len(m.ScienceB) > 0
}

// SlotIDs returns every major slot id, including group option courses.
func (m *Major) SlotIDs() []string {
	out := make([]string, 0, len(m.kinds))
	seen := make(map[string]bool, len(m.kinds))
	for _, e := range m.order {
		if !seen[e.match.SlotID] {
			seen[e.match.SlotID] = true
			out = append(out, e.match.SlotID)
		}
	}
	return out
}

// Owns reports whether slotID is one of this major's slots.
func (m *Major) Owns(slotID string) bool {
	_, ok := m.kinds[slotID]
	return ok
}
