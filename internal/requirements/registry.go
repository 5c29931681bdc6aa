// Package requirements defines the requirement slot registry: GE areas,
// special subjects, the writing requirement, university requirements and
// per-major requirement lists, plus the equivalency credit table.
//
// The registry is configuration data. It is loaded from YAML (an embedded
// default ships with the binary) and is immutable once compiled.
package requirements

import (
	"bytes"
	"degreetrack/internal/course"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed data/registry.yaml
var defaultRegistryYAML []byte

// ErrUnknownMajor is returned when a major key is not in the registry.
var ErrUnknownMajor = errors.New("unknown major")

// ErrInvalidRegistry wraps compile-time registry problems.
var ErrInvalidRegistry = errors.New("invalid registry")

type registryFile struct {
	Institutions struct {
		Home string   `yaml:"home"`
		GPA  []string `yaml:"gpa"`
	} `yaml:"institutions"`
	University struct {
		ID    string   `yaml:"id"`
		Label string   `yaml:"label"`
		Slots []string `yaml:"slots"`
	} `yaml:"university"`
	GEAreas []struct {
		ID       string `yaml:"id"`
		Letter   string `yaml:"letter"`
		Core     bool   `yaml:"core"`
		Slots    int    `yaml:"slots"`
		Subslots []struct {
			Tag  string `yaml:"tag"`
			Slot string `yaml:"slot"`
		} `yaml:"subslots"`
	} `yaml:"ge_areas"`
	Special struct {
		ID       string `yaml:"id"`
		Subjects []struct {
			Name string   `yaml:"name"`
			Tags []string `yaml:"tags"`
		} `yaml:"subjects"`
	} `yaml:"special"`
	Writing struct {
		ID           string `yaml:"id"`
		Label        string `yaml:"label"`
		Tag          string `yaml:"tag"`
		Slots        int    `yaml:"slots"`
		ExcludeLabel string `yaml:"exclude_label"`
	} `yaml:"writing"`
	Groups       map[string]groupFile `yaml:"groups"`
	ScienceLists map[string][]string  `yaml:"science_lists"`
	Majors       []majorFile          `yaml:"majors"`
}

type groupFile struct {
	Name    string `yaml:"name"`
	Options []struct {
		Courses []string `yaml:"courses"`
		Units   float64  `yaml:"units"`
	} `yaml:"options"`
}

type majorFile struct {
	Key        string                   `yaml:"key"`
	Name       string                   `yaml:"name"`
	Prep       []string                 `yaml:"prep"`
	Upper      []string                 `yaml:"upper"`
	Electives  []string                 `yaml:"electives"`
	Science    []string                 `yaml:"science"`
	PrepUnits  float64                  `yaml:"prep_units"`
	UpperUnits float64                  `yaml:"upper_units"`
	Thresholds map[string]thresholdFile `yaml:"thresholds"`
}

type thresholdFile struct {
	Units     float64 `yaml:"units"`
	Carveouts []struct {
		AllChecked []string `yaml:"all_checked"`
		Units      float64  `yaml:"units"`
	} `yaml:"carveouts"`
	ExamOverride *struct {
		Exam  string  `yaml:"exam"`
		Units float64 `yaml:"units"`
	} `yaml:"exam_override"`
}

// Area is a GE area. Core areas are mutually exclusive per course.
type Area struct {
	ID     string
	Letter string
	Core   bool
	// Slots are the sub-slot ids in fill order.
	Slots []string
}

// Special is one special subject slot, reachable from several tags.
type Special struct {
	Name   string
	SlotID string
	Tags   []string
}

// Writing describes the round-robin writing requirement.
type Writing struct {
	ID           string
	Label        string
	Tag          string
	Slots        []string
	ExcludeLabel string
}

// TargetKind says how a catalog area tag is applied.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetCore
	TargetSlot
	TargetWriting
)

// TagTarget is the resolution of one catalog area tag.
type TagTarget struct {
	Kind     TargetKind
	Area     *Area
	SlotID   string
	SlotKind SlotKind
}

// Registry is the compiled requirement configuration.
type Registry struct {
	HomeInstitution string
	UniversityID    string
	UniversityLabel string
	UniversitySlots []string
	Areas           []*Area
	SpecialID       string
	Specials        []Special
	Writing         Writing

	gpaInstitutions map[string]bool
	groups          map[string]*Group
	majors          map[string]*Major
	majorOrder      []string
	slots           map[string]SlotDef
	tags            map[string]TagTarget
	areasByKey      map[string]*Area
}

// DefaultRegistry compiles the embedded registry.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(bytes.NewReader(defaultRegistryYAML))
}

// LoadRegistryFile reads and compiles a registry document.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	return LoadRegistry(bytes.NewReader(data))
}

// LoadRegistry decodes and compiles a registry document.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var f registryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return compile(&f)
}

func compile(f *registryFile) (*Registry, error) {
	reg := &Registry{
		HomeInstitution: f.Institutions.Home,
		UniversityID:    f.University.ID,
		UniversityLabel: f.University.Label,
		SpecialID:       f.Special.ID,
		gpaInstitutions: make(map[string]bool),
		groups:          make(map[string]*Group),
		majors:          make(map[string]*Major),
		slots:           make(map[string]SlotDef),
		tags:            make(map[string]TagTarget),
		areasByKey:      make(map[string]*Area),
	}
	if reg.HomeInstitution == "" {
		return nil, fmt.Errorf("%w: home institution required", ErrInvalidRegistry)
	}
	reg.gpaInstitutions[reg.HomeInstitution] = true
	for _, inst := range f.Institutions.GPA {
		reg.gpaInstitutions[inst] = true
	}

	for _, id := range f.University.Slots {
		if err := reg.addSlot(SlotDef{ID: id, Kind: KindUniversity, Parent: reg.UniversityID}); err != nil {
			return nil, err
		}
		reg.UniversitySlots = append(reg.UniversitySlots, id)
	}

	for _, a := range f.GEAreas {
		area := &Area{ID: a.ID, Letter: a.Letter, Core: a.Core}
		if a.Core {
			if a.Slots < 1 {
				return nil, fmt.Errorf("%w: core area %q needs at least one slot", ErrInvalidRegistry, a.ID)
			}
			for i := 1; i <= a.Slots; i++ {
				area.Slots = append(area.Slots, a.ID+"-"+a.Letter+"-"+strconv.Itoa(i))
			}
			if err := reg.addTag(a.Letter, TagTarget{Kind: TargetCore, Area: area}); err != nil {
				return nil, err
			}
		}
		for _, s := range a.Subslots {
			id := a.ID + "-" + s.Slot
			area.Slots = append(area.Slots, id)
			if err := reg.addTag(s.Tag, TagTarget{Kind: TargetSlot, Area: area, SlotID: id, SlotKind: KindGESubslot}); err != nil {
				return nil, err
			}
		}
		for _, id := range area.Slots {
			if err := reg.addSlot(SlotDef{ID: id, Kind: KindGESubslot, Parent: area.ID}); err != nil {
				return nil, err
			}
		}
		reg.Areas = append(reg.Areas, area)
		reg.areasByKey[area.ID] = area
		if area.Letter != "" {
			reg.areasByKey[area.Letter] = area
		}
	}

	for _, s := range f.Special.Subjects {
		sp := Special{Name: s.Name, SlotID: f.Special.ID + "-" + s.Name, Tags: s.Tags}
		if err := reg.addSlot(SlotDef{ID: sp.SlotID, Kind: KindSpecialSubject, Parent: f.Special.ID}); err != nil {
			return nil, err
		}
		for _, tag := range s.Tags {
			if err := reg.addTag(tag, TagTarget{Kind: TargetSlot, SlotID: sp.SlotID, SlotKind: KindSpecialSubject}); err != nil {
				return nil, err
			}
		}
		reg.Specials = append(reg.Specials, sp)
	}

	reg.Writing = Writing{
		ID:           f.Writing.ID,
		Label:        f.Writing.Label,
		Tag:          f.Writing.Tag,
		ExcludeLabel: f.Writing.ExcludeLabel,
	}
	for i := 1; i <= f.Writing.Slots; i++ {
		id := f.Writing.ID + "-" + f.Writing.Tag + "-" + strconv.Itoa(i)
		reg.Writing.Slots = append(reg.Writing.Slots, id)
		if err := reg.addSlot(SlotDef{ID: id, Kind: KindWritingSubslot, Parent: f.Writing.ID}); err != nil {
			return nil, err
		}
	}
	if f.Writing.Tag != "" {
		if err := reg.addTag(f.Writing.Tag, TagTarget{Kind: TargetWriting}); err != nil {
			return nil, err
		}
	}

	for key, g := range f.Groups {
		grp, err := compileGroup(key, g)
		if err != nil {
			return nil, err
		}
		reg.groups[key] = grp
	}

	for _, mf := range f.Majors {
		m, err := reg.compileMajor(mf, f.ScienceLists)
		if err != nil {
			return nil, err
		}
		reg.majors[m.Key] = m
		reg.majorOrder = append(reg.majorOrder, m.Key)
	}
	return reg, nil
}

func (r *Registry) addSlot(def SlotDef) error {
	if _, dup := r.slots[def.ID]; dup {
		return fmt.Errorf("%w: duplicate slot %q", ErrInvalidRegistry, def.ID)
	}
	r.slots[def.ID] = def
	return nil
}

func (r *Registry) addTag(tag string, t TagTarget) error {
	if _, dup := r.tags[tag]; dup {
		return fmt.Errorf("%w: duplicate area tag %q", ErrInvalidRegistry, tag)
	}
	r.tags[tag] = t
	return nil
}

// ResolveTag maps a catalog area tag to its slot target. Tags without a
// slot (for example "C" or "Q") resolve to TargetNone.
func (r *Registry) ResolveTag(tag string) TagTarget {
	return r.tags[tag]
}

// Slot returns the static definition of a GE, special, writing or
// university slot.
func (r *Registry) Slot(id string) (SlotDef, bool) {
	def, ok := r.slots[id]
	return def, ok
}

// Area finds a GE area by id ("Area E: Culture and Thought") or letter ("E").
func (r *Registry) Area(key string) (*Area, bool) {
	a, ok := r.areasByKey[key]
	return a, ok
}

// AreaOfSlot returns the GE area that owns a sub-slot id.
func (r *Registry) AreaOfSlot(slotID string) (*Area, bool) {
	def, ok := r.slots[slotID]
	if !ok || def.Kind != KindGESubslot {
		return nil, false
	}
	return r.Area(def.Parent)
}

// CoreAreas returns the core areas in registry order.
func (r *Registry) CoreAreas() []*Area {
	var out []*Area
	for _, a := range r.Areas {
		if a.Core {
			out = append(out, a)
		}
	}
	return out
}

// CountsTowardGPA reports whether grades from inst enter the GPA.
func (r *Registry) CountsTowardGPA(inst string) bool {
	return r.gpaInstitutions[inst]
}

// IsHome reports whether inst is the home institution.
func (r *Registry) IsHome(inst string) bool {
	return inst == r.HomeInstitution
}

// Major returns a compiled major by key.
func (r *Registry) Major(key string) (*Major, error) {
	m, ok := r.majors[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMajor, key)
	}
	return m, nil
}

// Majors returns every major in registry order.
func (r *Registry) Majors() []*Major {
	out := make([]*Major, 0, len(r.majorOrder))
	for _, k := range r.majorOrder {
		out = append(out, r.majors[k])
	}
	return out
}

// Group returns a choose-one-of-N group by key.
func (r *Registry) Group(key string) (*Group, bool) {
	g, ok := r.groups[key]
	return g, ok
}

// SlotKindOf classifies any slot id for the given major.
func (r *Registry) SlotKindOf(m *Major, id string) SlotKind {
	if def, ok := r.slots[id]; ok {
		return def.Kind
	}
	if m != nil {
		if k, ok := m.kinds[id]; ok {
			return k
		}
	}
	return KindUnknown
}

func amount(f float64) course.Amount { return course.AmountOf(f) }
