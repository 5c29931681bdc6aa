package engine

import (
	"degreetrack/internal/course"
	"degreetrack/internal/ledger"
	"degreetrack/internal/logging"
	"degreetrack/internal/transcript"
	"fmt"
	"strings"
)

// AddCourse applies manual input such as "MATH 3A (A-), CMPSC 16 (B)".
// Persisted entries survive transcript imports that do not cover them. A
// positive units value overrides the catalog units for every entry.
func (e *Engine) AddCourse(s *State, input string, persist bool, units course.Amount) (*State, Outcome, error) {
	entries, skipped, err := e.parseManual(s, input)
	if err != nil {
		return s, Outcome{Message: err.Error()}, err
	}
	if len(entries) == 0 {
		return s, Outcome{Message: "no valid grades entered", Skipped: skipped}, nil
	}

	next := s.Clone()
	e.pushHistory(next, s)
	for _, m := range entries {
		if persist {
			next.Inputs.Persistent = append(next.Inputs.Persistent, m)
		} else {
			next.Inputs.Transient = append(next.Inputs.Transient, m)
		}
		if units > 0 {
			if next.Inputs.UnitOverrides == nil {
				next.Inputs.UnitOverrides = make(map[course.Code]course.Amount)
			}
			next.Inputs.UnitOverrides[m.Code] = units
		}
	}
	e.reconcile(next, liveKeep(next.Inputs))

	out := Outcome{Skipped: skipped}
	for _, m := range entries {
		for _, r := range next.Records {
			if r.Code == m.Code {
				next.Totals = next.Totals.ApplyDelta(1, r.Entry())
			}
		}
		out.Added = append(out.Added, m.Code)
	}
	out.Message = fmt.Sprintf("added %s", joinEntries(entries))
	logging.Session("AddCourse: %s (persist=%v)", out.Message, persist)
	return next, out, nil
}

// RemoveCourse forgets a course in every channel and clears the slots it
// holds. The argument may be a slot label such as "MATH 3A (A-)".
func (e *Engine) RemoveCourse(s *State, label string) (*State, Outcome, error) {
	code := course.NormalizeLabel(label)
	if code.IsZero() || !e.tracked(s, code) {
		err := fmt.Errorf("%w: %s", ErrCourseNotTracked, strings.TrimSpace(label))
		return s, Outcome{Message: err.Error()}, err
	}

	next := s.Clone()
	e.pushHistory(next, s)
	in := &next.Inputs
	in.Transient = withoutCode(in.Transient, code)
	in.Persistent = withoutCode(in.Persistent, code)
	rows := in.Transcript[:0]
	for _, row := range in.Transcript {
		if course.Normalize(row.Code) != code {
			rows = append(rows, row)
		}
	}
	in.Transcript = rows
	delete(in.UnitOverrides, code)
	for id, sl := range next.Slots {
		if sl.ownedBy(code) {
			delete(next.Slots, id)
		}
	}
	e.reconcile(next, liveKeep(next.Inputs))

	for _, r := range s.Records {
		if r.Code == code {
			next.Totals = next.Totals.ApplyDelta(-1, r.Entry())
		}
	}
	out := Outcome{Message: fmt.Sprintf("removed %s", code), Removed: []course.Code{code}}
	logging.Session("RemoveCourse: %s", code)
	return next, out, nil
}

func (e *Engine) tracked(s *State, code course.Code) bool {
	if s.Tracks(code) {
		return true
	}
	for _, m := range s.Inputs.Persistent {
		if m.Code == code {
			return true
		}
	}
	for _, row := range s.Inputs.Transcript {
		if course.Normalize(row.Code) == code {
			return true
		}
	}
	_, ok := s.Inputs.UnitOverrides[code]
	return ok
}

func withoutCode(list []ManualEntry, code course.Code) []ManualEntry {
	var out []ManualEntry
	for _, m := range list {
		if m.Code != code {
			out = append(out, m)
		}
	}
	return out
}

// Import replaces the transcript with rows and replays every input. Manual
// courses the transcript covers are dropped in favor of the transcript.
func (e *Engine) Import(s *State, rows []transcript.Row) (*State, Outcome, error) {
	timer := logging.StartTimer(logging.CategoryImport, "Import")
	defer timer.Stop()

	next := s.Clone()
	e.pushHistory(next, s)
	merged, dropped, skipped := mergeImport(next.Inputs, rows)
	next.Inputs = merged
	e.reconcile(next, importKeep(next.Inputs))
	next.Totals = ledger.Recompute(entries(next.Records))

	out := Outcome{Dropped: dropped, Skipped: skipped}
	for _, row := range next.Inputs.Transcript {
		out.Added = append(out.Added, course.Normalize(row.Code))
	}
	out.Message = fmt.Sprintf("imported %d courses", len(out.Added))
	if len(dropped) > 0 {
		out.Message += fmt.Sprintf(", replaced %d manual entries", len(dropped))
	}
	logging.Import("Import: %s, skipped %d", out.Message, len(skipped))
	return next, out, nil
}

// ToggleExam checks or unchecks an equivalency exam. Unchecking retracts
// every slot the exam filled unless another source fills it again.
func (e *Engine) ToggleExam(s *State, label string, checked bool) (*State, Outcome, error) {
	ex, err := e.equivalency.Exam(label)
	if err != nil {
		return s, Outcome{Message: err.Error()}, err
	}

	next := s.Clone()
	e.pushHistory(next, s)
	if checked {
		if next.Inputs.Exams == nil {
			next.Inputs.Exams = make(map[string]bool)
		}
		next.Inputs.Exams[ex.Name] = true
	} else {
		delete(next.Inputs.Exams, ex.Name)
	}
	e.reconcile(next, liveKeep(next.Inputs))
	next.Totals = ledger.Recompute(entries(next.Records))

	verb := "unchecked"
	if checked {
		verb = "checked"
	}
	logging.Session("ToggleExam: %s %s", verb, ex.Name)
	return next, Outcome{Message: fmt.Sprintf("%s %s", verb, ex.Name)}, nil
}

// MoveGE reassigns a course from a core GE sub-slot to the first open
// sub-slot of another core area the course is tagged for. The move is
// atomic: on error the state is returned unchanged.
func (e *Engine) MoveGE(s *State, slotID, target string) (*State, Outcome, error) {
	fail := func(err error) (*State, Outcome, error) {
		return s, Outcome{Message: err.Error()}, err
	}

	src, ok := s.Slots[slotID]
	from, inArea := e.registry.AreaOfSlot(slotID)
	if !ok || src.Source == nil || src.Source.Kind != SourceCourse || !inArea || !from.Core {
		return fail(fmt.Errorf("%w: %s is not a course in a core area", ErrNotMovable, slotID))
	}
	to, ok := e.registry.Area(target)
	if !ok || !to.Core || to.ID == from.ID {
		return fail(fmt.Errorf("%w: %s is not another core area", ErrNotMovable, target))
	}
	if entry, known := e.catalog.Lookup(src.Source.Code); known && !hasTag(entry.Areas(), to.Letter) {
		return fail(fmt.Errorf("%w: %s does not count for %s", ErrNotMovable, entry.ShortName(), to.ID))
	}

	dst := ""
	for _, id := range to.Slots {
		if !s.Slots[id].Satisfied {
			dst = id
			break
		}
	}
	if dst == "" {
		return fail(fmt.Errorf("%w: %s", ErrTargetSlotFull, to.ID))
	}

	next := s.Clone()
	e.pushHistory(next, s)
	next.Slots[dst] = next.Slots[slotID]
	delete(next.Slots, slotID)
	for i, id := range next.ImportedSlots {
		if id == slotID {
			next.ImportedSlots[i] = dst
		}
	}
	logging.Session("MoveGE: %s -> %s", slotID, dst)
	return next, Outcome{Message: fmt.Sprintf("moved %s to %s", src.Source.Label, to.ID), From: slotID, To: dst}, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// SetMajor switches majors: the old major's slots are cleared and every
// input is replayed against the new one.
func (e *Engine) SetMajor(s *State, key string) (*State, Outcome, error) {
	m, err := e.registry.Major(key)
	if err != nil {
		return s, Outcome{Message: err.Error()}, err
	}

	next := s.Clone()
	e.pushHistory(next, s)
	if old, err := e.registry.Major(s.Inputs.Major); err == nil {
		for id := range next.Slots {
			if old.Owns(id) {
				delete(next.Slots, id)
			}
		}
	}
	next.Inputs.Major = m.Key
	e.reconcile(next, liveKeep(next.Inputs))
	next.Totals = ledger.Recompute(entries(next.Records))

	logging.Session("SetMajor: %s -> %s", s.Inputs.Major, m.Key)
	return next, Outcome{Message: fmt.Sprintf("major set to %s", m.Name), From: s.Inputs.Major, To: m.Key}, nil
}

// Reset clears everything except the checked equivalency exams.
func (e *Engine) Reset(s *State) (*State, Outcome, error) {
	next := s.Clone()
	e.pushHistory(next, s)
	next.Inputs = Inputs{Major: s.Inputs.Major, Exams: next.Inputs.Exams}
	next.Slots = make(map[string]Slot)
	e.reconcile(next, liveKeep(next.Inputs))
	next.Totals = ledger.Recompute(entries(next.Records))

	logging.Session("Reset")
	return next, Outcome{Message: "reset all courses"}, nil
}

// ResetInputs clears manual input and unit overrides. The transcript and
// exams are replayed from scratch.
func (e *Engine) ResetInputs(s *State) (*State, Outcome, error) {
	next := s.Clone()
	e.pushHistory(next, s)
	next.Inputs.Transient = nil
	next.Inputs.Persistent = nil
	next.Inputs.UnitOverrides = nil
	e.reconcile(next, importKeep(next.Inputs))
	next.Totals = ledger.Recompute(entries(next.Records))

	logging.Session("ResetInputs")
	return next, Outcome{Message: "cleared manual input"}, nil
}

// Undo restores the snapshot taken before the latest operation.
func (e *Engine) Undo(s *State) (*State, Outcome, error) {
	if len(s.History) == 0 {
		return s, Outcome{Message: ErrNothingToUndo.Error()}, ErrNothingToUndo
	}
	next := s.Clone()
	last := next.History[len(next.History)-1]
	next.History = next.History[:len(next.History)-1]
	next.Inputs = last.Inputs
	next.Slots = last.Slots
	if next.Slots == nil {
		next.Slots = make(map[string]Slot)
	}
	next.ImportedSlots = last.ImportedSlots
	next.Records = e.records(next.Inputs)
	next.Totals = ledger.Recompute(entries(next.Records))

	logging.Session("Undo: %d snapshots left", len(next.History))
	return next, Outcome{Message: "undid last change"}, nil
}

func joinEntries(list []ManualEntry) string {
	parts := make([]string, len(list))
	for i, m := range list {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}
