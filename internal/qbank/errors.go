package qbank

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidQuestion matches every *ValidationError via errors.Is.
var ErrInvalidQuestion = errors.New("invalid question record")

// ValidationError describes one malformed bank record. Index is the
// record's 0-based position in the raw bank.
type ValidationError struct {
	Index  int
	ID     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	who := fmt.Sprintf("question #%d", e.Index+1)
	if e.ID != "" {
		who += fmt.Sprintf(" (id %s)", e.ID)
	}
	return fmt.Sprintf("%s: %s", who, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidQuestion
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if prev, ok := e.Fields[field]; ok {
		msg = prev + "; " + msg
	}
	e.Fields[field] = msg
}

// ValidationErrors unpacks the joined error returned by Normalize.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var ve *ValidationError
			if errors.As(e, &ve) {
				out = append(out, ve)
			}
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		out = append(out, ve)
	}
	return out
}
