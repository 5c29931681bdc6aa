package grade

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Grade
	}{
		{"A-", AMinus},
		{"a -", AMinus},
		{" b+ ", BPlus},
		{"np", NoPass},
		{"P", Pass},
		{"", InProgress},
		{"ip", InProgress},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"W", "E", "A++", "I", "4.0"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidGradeToken) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidGradeToken", in, err)
		}
	}
}

func TestPoints(t *testing.T) {
	if p, ok := AMinus.Points(); !ok || p != 37 {
		t.Errorf("A- points = %d %v", p, ok)
	}
	if p, ok := F.Points(); !ok || p != 0 {
		t.Errorf("F points = %d %v", p, ok)
	}
	for _, g := range []Grade{Pass, NoPass, InProgress} {
		if _, ok := g.Points(); ok {
			t.Errorf("%s should not carry points", g)
		}
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		g                          Grade
		failing, major, countUnits bool
	}{
		{A, false, true, true},
		{C, false, true, true},
		{CMinus, false, false, true},
		{DMinus, false, false, true},
		{Pass, false, false, true},
		{F, true, false, false},
		{NoPass, true, false, false},
		{InProgress, false, true, false},
	}
	for _, tt := range tests {
		if tt.g.Failing() != tt.failing {
			t.Errorf("%s Failing = %v", tt.g, tt.g.Failing())
		}
		if tt.g.PassesMajor() != tt.major {
			t.Errorf("%s PassesMajor = %v", tt.g, tt.g.PassesMajor())
		}
		if tt.g.CountsUnits() != tt.countUnits {
			t.Errorf("%s CountsUnits = %v", tt.g, tt.g.CountsUnits())
		}
	}
}
