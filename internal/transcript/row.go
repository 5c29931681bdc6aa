// Package transcript reads transcript rows exported from the university
// records system. Rows are consumed by the reconciliation engine as one
// batch per import.
package transcript

import (
	"degreetrack/internal/course"
	"errors"
	"fmt"
	"strings"
)

// ErrRemoteUnavailable means the records page could not be read: the
// student is not logged in or is on the wrong page.
var ErrRemoteUnavailable = errors.New("transcript source unavailable")

// RetryHint is shown with ErrRemoteUnavailable. Imports are never retried
// automatically.
const RetryHint = "Navigate back to the course history page while logged in, then retry the import."

// WithRetryHint appends RetryHint to remote failures. Other errors are
// returned unchanged.
func WithRetryHint(err error) error {
	if err == nil || !errors.Is(err, ErrRemoteUnavailable) {
		return err
	}
	return fmt.Errorf("%w. %s", err, RetryHint)
}

// ErrUnsupportedFormat is returned for files that are not JSON, CSV or XLSX.
var ErrUnsupportedFormat = errors.New("unsupported transcript format")

// Row is one transcript line.
type Row struct {
	Code        string        `json:"code"`
	Grade       string        `json:"grade"`
	Units       course.Amount `json:"units"`
	Term        string        `json:"term"`
	Title       string        `json:"title"`
	Institution string        `json:"institution"`
}

// Clean drops malformed rows (missing or "-" code) and trims fields.
// Malformed rows are absent, not erroneous.
func Clean(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		r.Code = strings.TrimSpace(r.Code)
		if malformedCode(r.Code) {
			continue
		}
		r.Grade = strings.TrimSpace(r.Grade)
		r.Term = strings.TrimSpace(r.Term)
		r.Title = strings.TrimSpace(r.Title)
		r.Institution = strings.TrimSpace(r.Institution)
		out = append(out, r)
	}
	return out
}

// malformedCode reports a missing, "-" or non-course code.
func malformedCode(code string) bool {
	code = strings.TrimSpace(code)
	return code == "" || code == "-" || course.Normalize(code).IsZero()
}
