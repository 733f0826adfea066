package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/stemsi/exstem-practice/internal/model"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func question(id int, weight float64, options []string, answer ...int) model.Question {
	typ := model.QuestionTypeSingle
	if len(answer) > 1 {
		typ = model.QuestionTypeMultiple
	}
	return model.Question{
		ID:       model.NumericID(id),
		Type:     typ,
		Question: fmt.Sprintf("question %d", id),
		Options:  options,
		Answer:   answer,
		Weight:   weight,
	}
}

func uniformBank(n int) []model.Question {
	bank := make([]model.Question, n)
	for i := range bank {
		bank[i] = question(i+1, 1, []string{"a", "b", "c", "d"}, 1)
	}
	return bank
}
