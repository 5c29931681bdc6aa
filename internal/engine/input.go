package engine

import (
	"degreetrack/internal/course"
	"degreetrack/internal/grade"
	"fmt"
	"strings"
)

// parseManual parses "CODE (GRADE)" entries separated by commas. A missing
// grade means in progress. Parsing is all or nothing for unknown and
// duplicate courses; entries with an unknown grade token are skipped.
func (e *Engine) parseManual(s *State, input string) (entries []ManualEntry, skipped []string, err error) {
	seen := make(map[course.Code]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		raw, token := splitEntry(part)
		entry, ok := e.catalog.Find(raw)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrCourseNotFound, raw)
		}
		if seen[entry.Code] || s.Tracks(entry.Code) {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.ShortName())
		}
		g, gerr := grade.Parse(token)
		if gerr != nil {
			skipped = append(skipped, part)
			continue
		}
		seen[entry.Code] = true
		entries = append(entries, ManualEntry{Code: entry.Code, Raw: raw, Grade: g})
	}
	if len(entries) == 0 && len(skipped) == 0 {
		return nil, nil, ErrEmptyInput
	}
	return entries, skipped, nil
}

// splitEntry splits "MATH 3A (A-)" into "MATH 3A" and "A-".
func splitEntry(s string) (code, token string) {
	open := strings.Index(s, "(")
	if open < 0 {
		return strings.TrimSpace(s), ""
	}
	code = strings.TrimSpace(s[:open])
	token = s[open+1:]
	if end := strings.Index(token, ")"); end >= 0 {
		token = token[:end]
	}
	return code, strings.TrimSpace(token)
}
