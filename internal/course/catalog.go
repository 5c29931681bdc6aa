package course

import (
	"degreetrack/internal/logging"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed data/catalog.json
var defaultCatalogJSON []byte

// Entry is one static catalog record.
type Entry struct {
	Code            Code     `json:"-"`
	RawCode         string   `json:"course_code"`
	Units           Units    `json:"units"`
	Description     string   `json:"course_description"`
	AdvisorComments string   `json:"advisor_comments"`
	GeneralAreas    []string `json:"general_area"`
	SpecialAreas    []string `json:"special_area"`
	Prerequisites   string   `json:"prerequisites"`
	UnivReqs        []string `json:"univ_req"`
	FullName        string   `json:"full_course_name"`
}

// ShortName is the display name: the part of the full name before " - ",
// falling back to the raw catalog code.
func (e *Entry) ShortName() string {
	if e.FullName != "" {
		name, _, _ := strings.Cut(e.FullName, " - ")
		return strings.TrimSpace(name)
	}
	if e.RawCode != "" {
		return e.RawCode
	}
	return string(e.Code)
}

// Areas returns general areas followed by special areas, in tag order.
func (e *Entry) Areas() []string {
	out := make([]string, 0, len(e.GeneralAreas)+len(e.SpecialAreas))
	out = append(out, e.GeneralAreas...)
	return append(out, e.SpecialAreas...)
}

// Catalog is an immutable lookup from canonical code to entry.
type Catalog struct {
	entries map[Code]*Entry
}

// NewCatalog builds a catalog from entries, keyed by their normalized code.
func NewCatalog(entries ...*Entry) *Catalog {
	c := &Catalog{entries: make(map[Code]*Entry, len(entries))}
	for _, e := range entries {
		if e.Code.IsZero() {
			e.Code = Normalize(e.RawCode)
		}
		if e.Code.IsZero() {
			continue
		}
		c.entries[e.Code] = e
	}
	return c
}

// LoadCatalog decodes a JSON object of entries. Object keys are normalized
// and used as the join key when course_code is absent.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var raw map[string]*Entry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	entries := make([]*Entry, 0, len(raw))
	for key, e := range raw {
		if e == nil {
			continue
		}
		e.Code = Normalize(key)
		if e.Code.IsZero() {
			e.Code = Normalize(e.RawCode)
		}
		entries = append(entries, e)
	}
	return NewCatalog(entries...), nil
}

// LoadCatalogFile reads a catalog document from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	timer := logging.StartTimer(logging.CategoryBoot, "LoadCatalogFile")
	defer timer.Stop()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	c, err := LoadCatalog(f)
	if err != nil {
		return nil, err
	}
	logging.BootDebug("Loaded %d catalog entries from %s", c.Len(), path)
	return c, nil
}

// DefaultCatalog returns the embedded sample catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(strings.NewReader(string(defaultCatalogJSON)))
}

// Lookup returns the entry for an already normalized code.
func (c *Catalog) Lookup(code Code) (*Entry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entries[code]
	return e, ok
}

// Find normalizes raw text before looking it up.
func (c *Catalog) Find(raw string) (*Entry, bool) {
	return c.Lookup(Normalize(raw))
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Codes returns every code in sorted order.
func (c *Catalog) Codes() []Code {
	out := make([]Code, 0, c.Len())
	for code := range c.entries {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
