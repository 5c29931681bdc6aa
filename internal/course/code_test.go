package course

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Code
	}{
		{"CMPSC 16", "CMPSC16"},
		{"cmpsc16", "CMPSC16"},
		{"CMPSC-16", "CMPSC16"},
		{"  pol s 12 ", "POLS12"},
		{"CH ST 1A", "CHST1A"},
		{"é-1", "1"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"CMPSC 16", "Math 3a", "w r i t-1e", "C LIT 30A (A-)", "ÅÄ 9"} {
		once := Normalize(in)
		if twice := Normalize(string(once)); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := NormalizeLabel("CMPSC 16 (A-)"); got != "CMPSC16" {
		t.Errorf("NormalizeLabel = %q", got)
	}
	if got := NormalizeLabel("SBCC CREDIT (F)"); got != "SBCCCREDIT" {
		t.Errorf("NormalizeLabel = %q", got)
	}
}
