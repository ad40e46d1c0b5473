// Package errors defines all exported error sentinels for the magictable library.
//
// This is the single source of truth for error values. Both the top-level
// magictable package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Construction errors
var (
	ErrSearchExhausted   = errors.New("magictable: no collision-free multiplier found at any shift above the configured floor")
	ErrNilAnswerFunc     = errors.New("magictable: answer function is nil")
	ErrInvalidShiftFloor = errors.New("magictable: shift floor must be in [0, 64)")
	ErrInvalidGuessLimit = errors.New("magictable: guess limit must be positive")
)

// Reload errors
var (
	ErrParamsInvalid   = errors.New("magictable: params do not produce a collision-free mapping for this answer function")
	ErrShiftOutOfRange = errors.New("magictable: params shift is out of range")
)

// Group errors
var (
	ErrEmptyGroup = errors.New("magictable: group has no members")
)
