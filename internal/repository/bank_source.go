package repository

import (
	"context"
	"errors"

	"github.com/stemsi/exstem-practice/internal/model"
)

// ErrBankNotFound is returned when a source holds no bank at all.
var ErrBankNotFound = errors.New("question bank not found")

// BankSource loads the raw question bank. Records are returned in bank
// order; normalization is the caller's job.
type BankSource interface {
	Load(ctx context.Context) ([]model.RawQuestion, error)
}

// BankStore is a source that can also be (re)written, used by the seeding
// command. Questions are expected to be normalized already.
type BankStore interface {
	BankSource
	ReplaceAll(ctx context.Context, questions []model.Question) error
}

// questionRow is the column set shared by the SQL sources.
type questionRow struct {
	Position    int
	ID          string
	IDNumeric   bool
	Type        string
	Question    string
	Options     []string
	Answer      []int32
	Weight      float64
	Explanation string
	Image       string
}

func newQuestionRow(position int, q model.Question) questionRow {
	answer := make([]int32, len(q.Answer))
	for i, a := range q.Answer {
		answer[i] = int32(a)
	}
	return questionRow{
		Position:    position,
		ID:          q.ID.String(),
		IDNumeric:   q.ID.IsNumeric(),
		Type:        string(q.Type),
		Question:    q.Question,
		Options:     q.Options,
		Answer:      answer,
		Weight:      q.Weight,
		Explanation: q.Explanation,
		Image:       q.Image,
	}
}

func (r questionRow) raw() model.RawQuestion {
	keys := make(model.AnswerKeys, len(r.Answer))
	for i, a := range r.Answer {
		keys[i] = model.IndexKey(int(a))
	}
	return model.RawQuestion{
		ID:          model.NewQuestionID(r.ID, r.IDNumeric),
		Type:        r.Type,
		Question:    r.Question,
		Options:     r.Options,
		Answer:      keys,
		Weight:      r.Weight,
		Explanation: r.Explanation,
		Image:       r.Image,
	}
}
