// Package qbank turns authored question records into the canonical form
// the session engine works with, and back into the canonical JSON export.
package qbank

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/stemsi/exstem-practice/internal/model"
	"github.com/stemsi/exstem-practice/internal/validator"
)

// DefaultWeight replaces missing, zero or negative weights.
const DefaultWeight = 1

// Normalize converts a raw bank into canonical questions. Any invalid
// record aborts the whole bank; every record error is reported, joined.
func Normalize(raw []model.RawQuestion) ([]model.Question, error) {
	out := make([]model.Question, 0, len(raw))
	seen := make(map[string]int, len(raw))
	var errs []error

	for i, r := range raw {
		q, err := NormalizeRecord(i, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if first, dup := seen[q.ID.String()]; dup {
			ve := &ValidationError{Index: i, ID: q.ID.String()}
			ve.add("id", fmt.Sprintf("duplicate of question #%d", first+1))
			errs = append(errs, ve)
			continue
		}
		seen[q.ID.String()] = i
		out = append(out, q)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// NormalizeRecord converts a single record found at index i of the bank.
// A record without an id gets its 1-based bank position as id.
func NormalizeRecord(i int, r model.RawQuestion) (model.Question, error) {
	id := r.ID
	if id.IsZero() {
		id = model.NumericID(i + 1)
	}
	ve := &ValidationError{Index: i, ID: id.String()}

	for field, msg := range validator.Struct(r) {
		ve.add(field, msg)
	}
	for j, opt := range r.Options {
		if opt != "" && strings.TrimSpace(opt) == "" {
			ve.add(fmt.Sprintf("options[%d]", j), "option text must not be blank")
		}
	}

	answer := make([]int, 0, len(r.Answer))
	for _, key := range r.Answer {
		idx, ok := AnswerIndex(key)
		if !ok {
			ve.add("answer", fmt.Sprintf("unrecognized answer key %q", key.String()))
			continue
		}
		if idx < 1 || idx > len(r.Options) {
			ve.add("answer", fmt.Sprintf("answer key %q resolves to option %d, outside [1, %d]", key.String(), idx, len(r.Options)))
			continue
		}
		answer = append(answer, idx)
	}
	answer = uniqueSorted(answer)

	qType, err := resolveType(r.Type, len(answer))
	if err != nil {
		ve.add("type", err.Error())
	} else if qType == model.QuestionTypeSingle && len(answer) > 1 {
		ve.add("answer", fmt.Sprintf("single-answer question has %d answer keys", len(answer)))
	}

	if math.IsInf(r.Weight, 0) {
		ve.add("weight", "weight must be a finite number")
	}

	if len(ve.Fields) > 0 {
		return model.Question{}, ve
	}

	weight := r.Weight
	if math.IsNaN(weight) || weight <= 0 {
		weight = DefaultWeight
	}

	return model.Question{
		ID:          id,
		Type:        qType,
		Question:    r.Question,
		Options:     append([]string(nil), r.Options...),
		Answer:      answer,
		Weight:      weight,
		Explanation: r.Explanation,
		Image:       r.Image,
	}, nil
}

// AnswerIndex maps a raw key to its 1-based option index. Letters are
// case-insensitive ("A" and "a" → 1), numeric strings and integral numbers
// are taken as-is. ok is false for anything else.
func AnswerIndex(key model.AnswerKey) (idx int, ok bool) {
	switch v := key.Raw().(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
			return int(f), true
		}
	case string:
		s := strings.TrimSpace(v)
		if len(s) == 1 {
			c := s[0]
			switch {
			case c >= 'A' && c <= 'Z':
				return int(c-'A') + 1, true
			case c >= 'a' && c <= 'z':
				return int(c-'a') + 1, true
			}
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

func resolveType(raw string, answers int) (model.QuestionType, error) {
	switch model.QuestionType(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		if answers > 1 {
			return model.QuestionTypeMultiple, nil
		}
		return model.QuestionTypeSingle, nil
	case model.QuestionTypeSingle:
		return model.QuestionTypeSingle, nil
	case model.QuestionTypeMultiple:
		return model.QuestionTypeMultiple, nil
	default:
		return "", fmt.Errorf("unknown question type %q", raw)
	}
}

func uniqueSorted(in []int) []int {
	sort.Ints(in)
	out := in[:0]
	for i, v := range in {
		if i > 0 && v == in[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
