package requirements

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/equivalency.yaml
var defaultEquivalencyYAML []byte

// ErrUnknownExam is returned for an exam label missing from the table.
var ErrUnknownExam = errors.New("unknown equivalency exam")

// Exam is one high-school credit exam and the targets it satisfies. A
// target is either a slot id or a GE area id.
type Exam struct {
	Name      string   `yaml:"name"`
	Satisfies []string `yaml:"satisfies"`
	System    string   `yaml:"-"`
}

// CreditSystem groups exams by program (AP, IB, A Level).
type CreditSystem struct {
	Key   string  `yaml:"key"`
	Label string  `yaml:"label"`
	Exams []*Exam `yaml:"exams"`
}

// Equivalency is the compiled exam table.
type Equivalency struct {
	Systems []*CreditSystem `yaml:"systems"`
	exams   map[string]*Exam
}

// DefaultEquivalency compiles the embedded exam table.
func DefaultEquivalency() (*Equivalency, error) {
	return LoadEquivalency(bytes.NewReader(defaultEquivalencyYAML))
}

// LoadEquivalencyFile reads an exam table from disk.
func LoadEquivalencyFile(path string) (*Equivalency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read equivalency table: %w", err)
	}
	return LoadEquivalency(bytes.NewReader(data))
}

// LoadEquivalency decodes an exam table. Exam names must be unique across
// systems since they key the checkbox state.
func LoadEquivalency(r io.Reader) (*Equivalency, error) {
	eq := &Equivalency{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(eq); err != nil {
		return nil, fmt.Errorf("failed to parse equivalency table: %w", err)
	}
	eq.exams = make(map[string]*Exam)
	for _, sys := range eq.Systems {
		for _, ex := range sys.Exams {
			if _, dup := eq.exams[ex.Name]; dup {
				return nil, fmt.Errorf("%w: duplicate exam %q", ErrInvalidRegistry, ex.Name)
			}
			ex.System = sys.Key
			eq.exams[ex.Name] = ex
		}
	}
	return eq, nil
}

// NewEquivalency builds a table directly, mainly for tests.
func NewEquivalency(systems ...*CreditSystem) *Equivalency {
	eq := &Equivalency{Systems: systems, exams: make(map[string]*Exam)}
	for _, sys := range systems {
		for _, ex := range sys.Exams {
			ex.System = sys.Key
			eq.exams[ex.Name] = ex
		}
	}
	return eq
}

// Exam looks up an exam by label.
func (e *Equivalency) Exam(name string) (*Exam, error) {
	if e != nil {
		if ex, ok := e.exams[name]; ok {
			return ex, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownExam, name)
}

// IsExam reports whether label names an exam.
func (e *Equivalency) IsExam(label string) bool {
	if e == nil {
		return false
	}
	_, ok := e.exams[label]
	return ok
}

// System returns a credit system by key.
func (e *Equivalency) System(key string) (*CreditSystem, bool) {
	for _, s := range e.Systems {
		if s.Key == key {
			return s, true
		}
	}
	return nil, false
}
