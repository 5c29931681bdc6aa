package engine

import (
	"degreetrack/internal/course"
	"degreetrack/internal/grade"
	"degreetrack/internal/ledger"
	"degreetrack/internal/transcript"
	"fmt"
	"sort"
)

// SourceKind says what satisfied a slot.
type SourceKind string

const (
	SourceCourse SourceKind = "course"
	SourceExam   SourceKind = "exam"
)

// Source is who or what filled a slot.
type Source struct {
	Kind SourceKind `json:"kind"`
	// Code is set for course sources, including transfer credit whose label
	// does not carry the code.
	Code  course.Code `json:"code,omitempty"`
	Label string      `json:"label"`
}

// Slot is the dynamic state of one requirement slot. A slot may carry a
// source without being satisfied: failing courses keep their label.
type Slot struct {
	Satisfied bool    `json:"satisfied"`
	Source    *Source `json:"source,omitempty"`
	ViaImport bool    `json:"via_import,omitempty"`
}

func (s Slot) ownedBy(code course.Code) bool {
	return s.Source != nil && s.Source.Kind == SourceCourse && s.Source.Code == code
}

func (s Slot) ownedByExam(name string) bool {
	return s.Source != nil && s.Source.Kind == SourceExam && s.Source.Label == name
}

// Channel is the input channel a course arrived through.
type Channel string

const (
	ChannelManualTransient  Channel = "manual-transient"
	ChannelManualPersistent Channel = "manual-persistent"
	ChannelImported         Channel = "imported-transcript"
)

// ManualEntry is one course typed by the student.
type ManualEntry struct {
	Code  course.Code `json:"code"`
	Raw   string      `json:"raw"`
	Grade grade.Grade `json:"grade"`
}

// Inputs are the replayable raw inputs of a session.
type Inputs struct {
	Major         string                        `json:"major"`
	Transient     []ManualEntry                 `json:"transient,omitempty"`
	Persistent    []ManualEntry                 `json:"persistent,omitempty"`
	UnitOverrides map[course.Code]course.Amount `json:"unit_overrides,omitempty"`
	Transcript    []transcript.Row              `json:"transcript,omitempty"`
	Exams         map[string]bool               `json:"exams,omitempty"`
}

// Record is a Course Assignment Record: one ledger contribution.
type Record struct {
	Code        course.Code   `json:"code"`
	Name        string        `json:"name"`
	Grade       grade.Grade   `json:"grade"`
	Units       course.Amount `json:"units"`
	Channel     Channel       `json:"channel"`
	Institution string        `json:"institution,omitempty"`
	Term        string        `json:"term,omitempty"`
	GPAEligible bool          `json:"gpa_eligible"`
}

// Entry converts the record to its ledger contribution.
func (r Record) Entry() ledger.Entry {
	return ledger.Entry{Grade: r.Grade, Units: r.Units, GPAEligible: r.GPAEligible}
}

type snapshot struct {
	Inputs        Inputs          `json:"inputs"`
	Slots         map[string]Slot `json:"slots"`
	ImportedSlots []string        `json:"imported_slots,omitempty"`
}

// State is one student session. Engine operations never mutate a State;
// they return a new one.
type State struct {
	ID            string          `json:"id"`
	Inputs        Inputs          `json:"inputs"`
	Slots         map[string]Slot `json:"slots"`
	Records       []Record        `json:"records"`
	ImportedSlots []string        `json:"imported_slots,omitempty"`
	Totals        ledger.Totals   `json:"totals"`
	History       []snapshot      `json:"history,omitempty"`
}

// GPA returns the rendered GPA.
func (s *State) GPA() string { return s.Totals.GPA() }

// Checked reports whether a slot is satisfied.
func (s *State) Checked(slotID string) bool { return s.Slots[slotID].Satisfied }

// ExamChecked reports whether an equivalency exam is checked.
func (s *State) ExamChecked(label string) bool { return s.Inputs.Exams[label] }

// Tracks reports whether any channel holds the course.
func (s *State) Tracks(code course.Code) bool {
	for _, r := range s.Records {
		if r.Code == code {
			return true
		}
	}
	for _, sl := range s.Slots {
		if sl.ownedBy(code) {
			return true
		}
	}
	return false
}

// SlotsOf lists the slot ids a course currently fills, in sorted order.
func (s *State) SlotsOf(code course.Code) []string {
	var out []string
	for id, sl := range s.Slots {
		if sl.ownedBy(code) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := &State{
		ID:            s.ID,
		Inputs:        s.Inputs.clone(),
		Slots:         cloneSlots(s.Slots),
		Records:       append([]Record(nil), s.Records...),
		ImportedSlots: append([]string(nil), s.ImportedSlots...),
		Totals:        s.Totals,
		History:       make([]snapshot, len(s.History)),
	}
	for i, h := range s.History {
		c.History[i] = h.clone()
	}
	return c
}

func (s *State) snapshot() snapshot {
	return snapshot{
		Inputs:        s.Inputs.clone(),
		Slots:         cloneSlots(s.Slots),
		ImportedSlots: append([]string(nil), s.ImportedSlots...),
	}
}

func (h snapshot) clone() snapshot {
	return snapshot{
		Inputs:        h.Inputs.clone(),
		Slots:         cloneSlots(h.Slots),
		ImportedSlots: append([]string(nil), h.ImportedSlots...),
	}
}

func (in Inputs) clone() Inputs {
	out := Inputs{
		Major:      in.Major,
		Transient:  append([]ManualEntry(nil), in.Transient...),
		Persistent: append([]ManualEntry(nil), in.Persistent...),
		Transcript: append([]transcript.Row(nil), in.Transcript...),
	}
	if in.UnitOverrides != nil {
		out.UnitOverrides = make(map[course.Code]course.Amount, len(in.UnitOverrides))
		for k, v := range in.UnitOverrides {
			out.UnitOverrides[k] = v
		}
	}
	if in.Exams != nil {
		out.Exams = make(map[string]bool, len(in.Exams))
		for k, v := range in.Exams {
			out.Exams[k] = v
		}
	}
	return out
}

func cloneSlots(in map[string]Slot) map[string]Slot {
	out := make(map[string]Slot, len(in))
	for id, sl := range in {
		if sl.Source != nil {
			src := *sl.Source
			sl.Source = &src
		}
		out[id] = sl
	}
	return out
}

func (e ManualEntry) String() string {
	return fmt.Sprintf("%s (%s)", e.Raw, e.Grade)
}
