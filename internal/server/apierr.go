package server

import (
	"degreetrack/internal/engine"
	"degreetrack/internal/grade"
	"degreetrack/internal/requirements"
	"degreetrack/internal/transcript"
	"errors"
	"fmt"
	"net/http"
)

// Error carries the HTTP status and machine code for a failed request.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error.
func NewError(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var errorTable = []struct {
	target error
	status int
	code   string
}{
	{engine.ErrCourseNotFound, http.StatusNotFound, "course_not_found"},
	{engine.ErrCourseNotTracked, http.StatusNotFound, "course_not_tracked"},
	{engine.ErrDuplicateEntry, http.StatusConflict, "duplicate_entry"},
	{engine.ErrTargetSlotFull, http.StatusConflict, "target_slot_full"},
	{engine.ErrNotMovable, http.StatusUnprocessableEntity, "not_movable"},
	{engine.ErrNothingToUndo, http.StatusConflict, "nothing_to_undo"},
	{engine.ErrEmptyInput, http.StatusBadRequest, "empty_input"},
	{grade.ErrInvalidGradeToken, http.StatusBadRequest, "invalid_grade"},
	{requirements.ErrUnknownMajor, http.StatusBadRequest, "unknown_major"},
	{requirements.ErrUnknownExam, http.StatusNotFound, "unknown_exam"},
	{transcript.ErrRemoteUnavailable, http.StatusBadGateway, "remote_unavailable"},
	{transcript.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format"},
}

// toError maps a domain error onto an API error. Unknown errors are 500s.
func toError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, row := range errorTable {
		if errors.Is(err, row.target) {
			return NewError(row.status, row.code, transcript.WithRetryHint(err))
		}
	}
	return NewError(http.StatusInternalServerError, "internal", err)
}
