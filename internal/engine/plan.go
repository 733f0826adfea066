package engine

import (
	"time"

	"github.com/stemsi/exstem-practice/internal/model"
)

// Plan is the examinee's setup for one session. RangeStart and RangeEnd are
// 1-based and inclusive; zero means the first and last question of the bank.
type Plan struct {
	RangeStart       int
	RangeEnd         int
	Count            int
	TimeLimit        time.Duration
	RandomizeOptions bool
}

// Resolve validates the plan against a bank of size n and returns the
// effective inclusive range.
func (p Plan) Resolve(n int) (start, end int, err error) {
	start, end, err = ResolveRange(p.RangeStart, p.RangeEnd, n)
	if err != nil {
		return 0, 0, err
	}
	if err := checkRange("question_count", p.Count, 1, -1); err != nil {
		return 0, 0, err
	}
	if p.TimeLimit < time.Second {
		return 0, 0, &RangeError{Field: "time_limit_seconds", Value: int(p.TimeLimit / time.Second), Min: 1, Max: -1}
	}
	return start, end, nil
}

// ResolveRange checks 1-based inclusive bounds against a bank of size n.
// Zero bounds default to the whole bank.
func ResolveRange(start, end, n int) (int, int, error) {
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = n
	}
	if err := checkRange("range_start", start, 1, n); err != nil {
		return 0, 0, err
	}
	if err := checkRange("range_end", end, start, n); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Truncated reports whether the plan asks for more questions than its range holds.
func (p Plan) Truncated(n int) bool {
	start, end, err := p.Resolve(n)
	if err != nil {
		return false
	}
	return p.Count > end-start+1
}

// Pool returns the questions between the 1-based inclusive bounds.
// Callers validate the bounds with Plan.Resolve first.
func Pool(bank []model.Question, start, end int) []model.Question {
	return bank[start-1 : end]
}
