package engine

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySelection    = errors.New("no option selected")
	ErrAlreadyAnswered   = errors.New("question already answered")
	ErrSessionFinished   = errors.New("session is finished")
	ErrSessionInProgress = errors.New("session is still in progress")
	ErrOutOfRange        = errors.New("value out of range")
)

// RangeError reports a plan value, position or selection outside its
// allowed bounds. Max < 0 means there is no upper bound.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	if e.Max < 0 {
		return fmt.Sprintf("%s %d out of range: must be at least %d", e.Field, e.Value, e.Min)
	}
	return fmt.Sprintf("%s %d out of range: must be between %d and %d", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

func checkRange(field string, value, min, max int) error {
	if value < min || (max >= 0 && value > max) {
		return &RangeError{Field: field, Value: value, Min: min, Max: max}
	}
	return nil
}
