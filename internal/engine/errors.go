package engine

import "errors"

var (
	// ErrCourseNotFound is returned when manual input does not resolve
	// against the catalog. No state is mutated.
	ErrCourseNotFound = errors.New("course not found in catalog")

	// ErrDuplicateEntry is returned when a course is already tracked via
	// another channel.
	ErrDuplicateEntry = errors.New("course already in list")

	// ErrTargetSlotFull is returned when a GE reassignment has no open
	// destination sub-slot. The original assignment is left untouched.
	ErrTargetSlotFull = errors.New("target area is full")

	// ErrCourseNotTracked is returned when removing a course that no channel
	// knows about.
	ErrCourseNotTracked = errors.New("course not tracked")

	// ErrNotMovable is returned when a slot cannot be reassigned.
	ErrNotMovable = errors.New("slot cannot be moved")

	// ErrNothingToUndo is returned when the undo history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrEmptyInput is returned for input with no course entries.
	ErrEmptyInput = errors.New("no course entered")
)
