package engine

import (
	"degreetrack/internal/course"
	"degreetrack/internal/grade"
	"degreetrack/internal/logging"
	"degreetrack/internal/requirements"
	"degreetrack/internal/transcript"
	"strings"
)

// application is one course pushed through the slot rules.
type application struct {
	code  course.Code
	grade grade.Grade
	// majorLabel is shown on major slots, geLabel on GE and university slots.
	majorLabel string
	geLabel    string
	imported   bool
	home       bool
}

func (a application) source(label string) *Source {
	return &Source{Kind: SourceCourse, Code: a.code, Label: label}
}

// run is one replay of all inputs over a slot map.
type run struct {
	e        *Engine
	slots    map[string]Slot
	major    *requirements.Major
	imported []string
}

func (e *Engine) newRun(s *State) *run {
	m, _ := e.registry.Major(s.Inputs.Major)
	return &run{e: e, slots: s.Slots, major: m}
}

// maxPasses bounds the replays needed to settle. A displaced course can
// move once more on the following pass; nothing moves after that.
const maxPasses = 4

// reconcile sweeps slots rejected by keep, then replays every input until
// the slot map settles.
func (e *Engine) reconcile(s *State, keep func(Source) bool) {
	timer := logging.StartTimer(logging.CategoryEngine, "reconcile")
	defer timer.Stop()

	swept := sweepStale(s.Slots, keep)
	var r *run
	for pass := 0; pass < maxPasses; pass++ {
		before := cloneSlots(s.Slots)
		r = e.replay(s)
		if slotsEqual(before, s.Slots) {
			break
		}
	}
	s.ImportedSlots = r.imported
	s.Records = e.records(s.Inputs)
	logging.EngineDebug("Reconciled: swept=%d slots=%d records=%d imported=%d", swept, len(s.Slots), len(s.Records), len(r.imported))
}

// replay applies every input in precedence order: equivalency exams,
// transient manual input, persistent manual courses, then transcript rows
// in file order.
func (e *Engine) replay(s *State) *run {
	r := e.newRun(s)
	r.applyExams(s.Inputs.Exams)
	for _, m := range s.Inputs.Transient {
		r.apply(e.manualApplication(m))
	}
	for _, m := range s.Inputs.Persistent {
		r.apply(e.manualApplication(m))
	}
	for _, row := range s.Inputs.Transcript {
		if a, ok := e.rowApplication(row); ok {
			r.apply(a)
		}
	}
	return r
}

func slotsEqual(a, b map[string]Slot) bool {
	if len(a) != len(b) {
		return false
	}
	for id, x := range a {
		y, ok := b[id]
		if !ok || x.Satisfied != y.Satisfied || x.ViaImport != y.ViaImport {
			return false
		}
		if (x.Source == nil) != (y.Source == nil) || (x.Source != nil && *x.Source != *y.Source) {
			return false
		}
	}
	return true
}

func (e *Engine) displayName(code course.Code, raw string) string {
	if entry, ok := e.catalog.Lookup(code); ok {
		return entry.ShortName()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return string(code)
	}
	return strings.ToUpper(raw)
}

func (e *Engine) manualApplication(m ManualEntry) application {
	pretty := e.displayName(m.Code, m.Raw) + " (" + string(m.Grade) + ")"
	return application{
		code:       m.Code,
		grade:      m.Grade,
		majorLabel: pretty,
		geLabel:    strings.ToUpper(pretty),
		home:       true,
	}
}

// rowApplication converts a transcript row. Rows with unparseable grades
// are not applied.
func (e *Engine) rowApplication(row transcript.Row) (application, bool) {
	g, err := grade.Parse(row.Grade)
	if err != nil {
		return application{}, false
	}
	code := course.Normalize(row.Code)
	if code.IsZero() {
		return application{}, false
	}
	home := e.registry.IsHome(row.Institution)
	pretty := e.displayName(code, row.Code) + " (" + string(g) + ")"
	a := application{
		code:       code,
		grade:      g,
		majorLabel: pretty,
		geLabel:    strings.ToUpper(pretty),
		imported:   true,
		home:       home,
	}
	if !home {
		label := strings.ToUpper(row.Institution + " credit")
		if g.Failing() {
			label += " (" + string(g) + ")"
		}
		a.majorLabel = label
		a.geLabel = label
	}
	return a, true
}

func (r *run) markImported(id string) {
	for _, have := range r.imported {
		if have == id {
			return
		}
	}
	r.imported = append(r.imported, id)
}

// applyExams fills every target of each checked exam, in table order. An
// area target keeps the sub-slot the exam already holds, else takes the
// first open one. A slot target is satisfied if nothing satisfies it yet.
func (r *run) applyExams(checked map[string]bool) {
	if r.e.equivalency == nil {
		return
	}
	for _, sys := range r.e.equivalency.Systems {
		for _, ex := range sys.Exams {
			if !checked[ex.Name] {
				continue
			}
			src := &Source{Kind: SourceExam, Label: ex.Name}
			for _, target := range ex.Satisfies {
				if area, ok := r.e.registry.Area(target); ok && area.ID == target {
					if id, ok := r.examSubslot(area, ex.Name); ok {
						r.slots[id] = Slot{Satisfied: true, Source: src}
					}
					continue
				}
				if sl := r.slots[target]; !sl.Satisfied {
					r.slots[target] = Slot{Satisfied: true, Source: src}
				}
			}
		}
	}
}

func (r *run) examSubslot(area *requirements.Area, name string) (string, bool) {
	for _, id := range area.Slots {
		if r.slots[id].ownedByExam(name) {
			return id, true
		}
	}
	for _, id := range area.Slots {
		if !r.slots[id].Satisfied {
			return id, true
		}
	}
	return "", false
}

func (r *run) apply(a application) {
	if r.major != nil {
		if mm, ok := r.major.Match(a.code); ok {
			r.applyMajor(mm.SlotID, a)
		}
	}
	entry, ok := r.e.catalog.Lookup(a.code)
	if !ok {
		return
	}
	r.applyGE(entry, a)
}

// applyMajor writes the label when the slot is empty or held by this
// course; an import may also overwrite an unsatisfied slot, or any slot
// when its own grade clears the major bar. Only grades that clear the bar
// satisfy the slot.
func (r *run) applyMajor(id string, a application) {
	sl := r.slots[id]
	passes := a.grade.PassesMajor()
	if sl.Source == nil || sl.ownedBy(a.code) || (a.imported && (!sl.Satisfied || passes)) {
		if !(sl.Satisfied && !passes && sl.ownedBy(a.code)) {
			sl.Source = a.source(a.majorLabel)
			sl.ViaImport = a.imported
		}
	}
	if passes {
		sl.Satisfied = true
		if a.imported {
			r.markImported(id)
		}
	}
	r.slots[id] = sl
}

func (r *run) applyGE(entry *course.Entry, a application) {
	failing := a.grade.Failing()

	coreFilled := false
	if id, ok := r.ownedCore(a.code); ok {
		r.refresh(id, a, failing)
		coreFilled = true
	}
	for _, tag := range entry.Areas() {
		t := r.e.registry.ResolveTag(tag)
		switch t.Kind {
		case requirements.TargetCore:
			if coreFilled {
				continue
			}
			if id, ok := r.coreTarget(t.Area, failing); ok {
				r.fill(id, a, failing)
				coreFilled = true
			}
		case requirements.TargetSlot:
			r.applySingle(t.SlotID, a, failing)
		case requirements.TargetWriting:
			r.applyWriting(a, failing)
		case requirements.TargetNone:
		}
	}
	for _, req := range entry.UnivReqs {
		r.applySingle(req, a, failing)
	}
}

// ownedCore finds a core sub-slot held by the course in any core area, so
// a course moved between areas is not placed a second time.
func (r *run) ownedCore(code course.Code) (string, bool) {
	for _, area := range r.e.registry.CoreAreas() {
		for _, id := range area.Slots {
			if r.slots[id].ownedBy(code) {
				return id, true
			}
		}
	}
	return "", false
}

// coreTarget picks the first empty sub-slot of a core area. A passing
// course may also displace a failing one from an unsatisfied sub-slot.
func (r *run) coreTarget(area *requirements.Area, failing bool) (string, bool) {
	for _, id := range area.Slots {
		if r.slots[id].Source == nil {
			return id, true
		}
	}
	if failing {
		return "", false
	}
	for _, id := range area.Slots {
		if !r.slots[id].Satisfied {
			return id, true
		}
	}
	return "", false
}

func (r *run) fill(id string, a application, failing bool) {
	r.slots[id] = Slot{Satisfied: !failing, Source: a.source(a.geLabel), ViaImport: a.imported}
	if a.imported && !failing {
		r.markImported(id)
	}
}

// refresh updates a slot the course already holds. A failing grade never
// unseats a satisfied slot.
func (r *run) refresh(id string, a application, failing bool) {
	sl := r.slots[id]
	if failing && sl.Satisfied {
		return
	}
	r.fill(id, a, failing)
}

func (r *run) applySingle(id string, a application, failing bool) {
	sl := r.slots[id]
	switch {
	case sl.ownedBy(a.code):
		r.refresh(id, a, failing)
	case !sl.Satisfied:
		r.fill(id, a, failing)
	}
}

// applyWriting fills the first available writing sub-slot. Manual input
// never takes a slot that carries any label, and transfer credit never
// fills writing.
func (r *run) applyWriting(a application, failing bool) {
	w := r.e.registry.Writing
	for _, id := range w.Slots {
		if r.slots[id].ownedBy(a.code) {
			r.refreshWriting(id, a, failing)
			return
		}
	}
	if w.ExcludeLabel != "" && strings.Contains(a.geLabel, w.ExcludeLabel) {
		return
	}
	for _, id := range w.Slots {
		sl := r.slots[id]
		if sl.Satisfied || (!a.imported && sl.Source != nil) {
			continue
		}
		r.slots[id] = Slot{Satisfied: !failing, Source: a.source(a.geLabel), ViaImport: a.imported}
		if a.imported && a.home && !failing {
			r.markImported(id)
		}
		return
	}
}

func (r *run) refreshWriting(id string, a application, failing bool) {
	sl := r.slots[id]
	if failing && sl.Satisfied {
		return
	}
	r.slots[id] = Slot{Satisfied: !failing, Source: a.source(a.geLabel), ViaImport: a.imported}
	if a.imported && a.home && !failing {
		r.markImported(id)
	}
}

// records derives the ledger record set. Transcript rows win over manual
// entries for the same course.
func (e *Engine) records(in Inputs) []Record {
	fromTranscript := make(map[course.Code]bool, len(in.Transcript))
	var out []Record
	for _, row := range in.Transcript {
		g, err := grade.Parse(row.Grade)
		if err != nil {
			continue
		}
		code := course.Normalize(row.Code)
		if code.IsZero() {
			continue
		}
		fromTranscript[code] = true
		out = append(out, Record{
			Code:        code,
			Name:        e.displayName(code, row.Code),
			Grade:       g,
			Units:       row.Units,
			Channel:     ChannelImported,
			Institution: row.Institution,
			Term:        row.Term,
			GPAEligible: e.registry.CountsTowardGPA(row.Institution),
		})
	}
	manual := func(list []ManualEntry, ch Channel) {
		for _, m := range list {
			if fromTranscript[m.Code] {
				continue
			}
			out = append(out, e.manualRecord(m, ch, in.UnitOverrides))
		}
	}
	manual(in.Transient, ChannelManualTransient)
	manual(in.Persistent, ChannelManualPersistent)
	return out
}

func (e *Engine) manualRecord(m ManualEntry, ch Channel, overrides map[course.Code]course.Amount) Record {
	var units course.Amount
	if u, ok := overrides[m.Code]; ok && u > 0 {
		units = u
	} else if entry, ok := e.catalog.Lookup(m.Code); ok {
		units = entry.Units.Resolve(0)
	}
	return Record{
		Code:        m.Code,
		Name:        e.displayName(m.Code, m.Raw),
		Grade:       m.Grade,
		Units:       units,
		Channel:     ch,
		Institution: e.registry.HomeInstitution,
		GPAEligible: true,
	}
}
