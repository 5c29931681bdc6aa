// Package engine is the requirement-reconciliation engine. It is a pure
// function of (State, event) -> (State, Outcome): every operation clones
// the incoming state, replays inputs through the slot rules and returns the
// result. Callers serialize events.
package engine

import (
	"degreetrack/internal/course"
	"degreetrack/internal/ledger"
	"degreetrack/internal/requirements"

	"github.com/google/uuid"
)

// DefaultHistoryLimit caps the undo history.
const DefaultHistoryLimit = 15

// Engine holds the static tables. It is safe for concurrent use since it
// never mutates them.
type Engine struct {
	catalog      *course.Catalog
	registry     *requirements.Registry
	equivalency  *requirements.Equivalency
	historyLimit int
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryLimit sets the undo depth. Non-positive values keep the
// default.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

// New builds an engine over the static tables.
func New(cat *course.Catalog, reg *requirements.Registry, eq *requirements.Equivalency, opts ...Option) *Engine {
	e := &Engine{
		catalog:      cat,
		registry:     reg,
		equivalency:  eq,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog.
func (e *Engine) Catalog() *course.Catalog { return e.catalog }

// Registry returns the requirement registry.
func (e *Engine) Registry() *requirements.Registry { return e.registry }

// Equivalency returns the exam table.
func (e *Engine) Equivalency() *requirements.Equivalency { return e.equivalency }

// Outcome describes what an operation did, for status messages.
type Outcome struct {
	Message string        `json:"message"`
	Added   []course.Code `json:"added,omitempty"`
	Removed []course.Code `json:"removed,omitempty"`
	// Skipped lists entries dropped for unparseable grade tokens.
	Skipped []string `json:"skipped,omitempty"`
	// Dropped lists manual courses superseded by an import.
	Dropped []course.Code `json:"dropped,omitempty"`
	From    string        `json:"from,omitempty"`
	To      string        `json:"to,omitempty"`
}

// NewState starts an empty session for a major.
func (e *Engine) NewState(major string) (*State, error) {
	if _, err := e.registry.Major(major); err != nil {
		return nil, err
	}
	return &State{
		ID:     uuid.NewString(),
		Inputs: Inputs{Major: major},
		Slots:  make(map[string]Slot),
	}, nil
}

// Normalize repairs a decoded state: nil maps are allocated and derived
// fields are rebuilt from inputs.
func (e *Engine) Normalize(s *State) *State {
	out := s.Clone()
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if out.Slots == nil {
		out.Slots = make(map[string]Slot)
	}
	out.Records = e.records(out.Inputs)
	out.Totals = ledger.Recompute(entries(out.Records))
	return out
}

// Report is the evaluated view of a state.
type Report struct {
	Major         string                       `json:"major"`
	Sections      []requirements.SectionStatus `json:"sections"`
	Totals        ledger.Totals                `json:"totals"`
	GPA           string                       `json:"gpa"`
	Units         float64                      `json:"units"`
	GPAUnits      float64                      `json:"gpa_units"`
	GradePoints   float64                      `json:"grade_points"`
	ImportedSlots []string                     `json:"imported_slots,omitempty"`
	Records       []Record                     `json:"records"`
}

// Status evaluates every section for the state's major.
func (e *Engine) Status(s *State) (Report, error) {
	m, err := e.registry.Major(s.Inputs.Major)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Major:         m.Key,
		Sections:      e.registry.Evaluate(m, e.checklist(s)),
		Totals:        s.Totals,
		GPA:           s.Totals.GPA(),
		Units:         s.Totals.Units.Float64(),
		GPAUnits:      s.Totals.GPAUnits.Float64(),
		GradePoints:   s.Totals.GradePointsValue(),
		ImportedSlots: append([]string(nil), s.ImportedSlots...),
		Records:       append([]Record(nil), s.Records...),
	}, nil
}

type checklist struct {
	e *Engine
	s *State
}

func (e *Engine) checklist(s *State) checklist { return checklist{e: e, s: s} }

func (c checklist) Checked(slotID string) bool    { return c.s.Checked(slotID) }
func (c checklist) ExamChecked(label string) bool { return c.s.ExamChecked(label) }

// Units is the unit value of the course behind a major slot: a manual
// override, else the tracked record, else the catalog default.
func (c checklist) Units(slotID string) course.Amount {
	code := course.Normalize(slotID)
	if u, ok := c.s.Inputs.UnitOverrides[code]; ok && u > 0 {
		return u
	}
	for _, r := range c.s.Records {
		if r.Code == code && r.Units > 0 {
			return r.Units
		}
	}
	if entry, ok := c.e.catalog.Lookup(code); ok {
		return entry.Units.Resolve(0)
	}
	return 0
}

// pushHistory records the pre-operation snapshot, dropping the oldest
// beyond the limit.
func (e *Engine) pushHistory(next, prev *State) {
	next.History = append(next.History, prev.snapshot())
	if over := len(next.History) - e.historyLimit; over > 0 {
		next.History = append([]snapshot(nil), next.History[over:]...)
	}
}

func entries(records []Record) []ledger.Entry {
	out := make([]ledger.Entry, len(records))
	for i, r := range records {
		out[i] = r.Entry()
	}
	return out
}
