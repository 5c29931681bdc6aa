package course

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in      string
		str     string
		isRange bool
		resolve Amount
	}{
		{"4", "4", false, 400},
		{"4.5", "4.5", false, 450},
		{"1-4", "1-4", true, 400},
		{" 2 - 5 ", "2-5", true, 500},
		{"5-2", "2-5", true, 500},
	}
	for _, tt := range tests {
		u, err := ParseUnits(tt.in)
		if err != nil {
			t.Fatalf("ParseUnits(%q) error: %v", tt.in, err)
		}
		if u.String() != tt.str {
			t.Errorf("ParseUnits(%q).String() = %q, want %q", tt.in, u.String(), tt.str)
		}
		if u.IsRange() != tt.isRange {
			t.Errorf("ParseUnits(%q).IsRange() = %v", tt.in, u.IsRange())
		}
		if got := u.Resolve(0); got != tt.resolve {
			t.Errorf("ParseUnits(%q).Resolve(0) = %d, want %d", tt.in, got, tt.resolve)
		}
	}
}

func TestParseUnitsInvalid(t *testing.T) {
	for _, in := range []string{"", "four", "1-x", "-3"} {
		if _, err := ParseUnits(in); !errors.Is(err, ErrBadUnits) {
			t.Errorf("ParseUnits(%q) error = %v, want ErrBadUnits", in, err)
		}
	}
}

func TestResolveClamps(t *testing.T) {
	u := Range(100, 400)
	if got := u.Resolve(250); got != 250 {
		t.Errorf("Resolve(250) = %d", got)
	}
	if got := u.Resolve(50); got != 100 {
		t.Errorf("Resolve(50) = %d", got)
	}
	if got := u.Resolve(900); got != 400 {
		t.Errorf("Resolve(900) = %d", got)
	}
	if got := Fixed(300).Resolve(900); got != 300 {
		t.Errorf("fixed Resolve = %d", got)
	}
}

func TestUnitsJSON(t *testing.T) {
	var u Units
	if err := json.Unmarshal([]byte(`"1-4"`), &u); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if !u.IsRange() {
		t.Errorf("expected range")
	}
	if err := json.Unmarshal([]byte(`3.5`), &u); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if u.Resolve(0) != 350 {
		t.Errorf("Resolve = %d", u.Resolve(0))
	}
}

func TestAmountString(t *testing.T) {
	if got := Amount(950).String(); got != "9.5" {
		t.Errorf("String = %q", got)
	}
	if got := Amount(1200).String(); got != "12" {
		t.Errorf("String = %q", got)
	}
	if got := AmountOf(76.5); got != 7650 {
		t.Errorf("AmountOf = %d", got)
	}
}
