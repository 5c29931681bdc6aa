package course

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("expected embedded entries")
	}
	e, ok := c.Find("math 3a")
	if !ok {
		t.Fatal("MATH3A missing")
	}
	if e.Code != "MATH3A" {
		t.Errorf("Code = %q", e.Code)
	}
	if e.Units.Resolve(0) != 400 {
		t.Errorf("units = %s", e.Units)
	}
	if e.ShortName() != "MATH 3A" {
		t.Errorf("ShortName = %q", e.ShortName())
	}
}

func TestLoadCatalogNormalizesKeys(t *testing.T) {
	doc := `{
		"cs 8": {"course_code": "CS8", "units": "4", "general_area": ["C"], "special_area": ["Q"], "full_course_name": "CS 8 - Intro"},
		"x": {"course_code": "X 1", "units": "1-4"}
	}`
	c, err := LoadCatalog(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	e, ok := c.Lookup("CS8")
	if !ok {
		t.Fatal("CS8 missing")
	}
	if got := e.Areas(); len(got) != 2 || got[0] != "C" || got[1] != "Q" {
		t.Errorf("Areas = %v", got)
	}
	codes := c.Codes()
	if len(codes) != 2 || codes[0] != "CS8" || codes[1] != "X" {
		t.Errorf("Codes = %v", codes)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`{"ENGL10": {"course_code": "ENGL 10", "units": "4"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile: %v", err)
	}
	e, ok := c.Lookup("ENGL10")
	if !ok {
		t.Fatal("ENGL10 missing")
	}
	if e.ShortName() != "ENGL 10" {
		t.Errorf("ShortName = %q", e.ShortName())
	}

	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadCatalogBadUnits(t *testing.T) {
	if _, err := LoadCatalog(strings.NewReader(`{"A1": {"units": "lots"}}`)); err == nil {
		t.Error("expected error for bad units")
	}
}
