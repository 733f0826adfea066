package qbank

import (
	"sort"
	"strings"

	"github.com/stemsi/exstem-practice/internal/model"
)

// PreviewTextLength is the rune limit of the question excerpt in Weighted.
const PreviewTextLength = 50

// LabeledOption is an option tagged with its canonical letter.
type LabeledOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// PreviewItem is one question as listed in the bank overview.
type PreviewItem struct {
	Position    int                `json:"position"`
	ID          model.QuestionID   `json:"id"`
	Type        model.QuestionType `json:"type"`
	Question    string             `json:"question"`
	Options     []LabeledOption    `json:"options"`
	Answer      []string           `json:"answer"`
	Weight      float64            `json:"weight"`
	Explanation string             `json:"explanation,omitempty"`
	Image       string             `json:"image,omitempty"`
}

// WeightedItem is a question that is drawn more often than the default.
type WeightedItem struct {
	Position int              `json:"position"`
	ID       model.QuestionID `json:"id"`
	Weight   float64          `json:"weight"`
	Preview  string           `json:"preview"`
}

// Preview lists questions with canonical labels. Positions are 1-based and
// start at firstPosition.
func Preview(questions []model.Question, firstPosition int) []PreviewItem {
	items := make([]PreviewItem, len(questions))
	for i, q := range questions {
		opts := make([]LabeledOption, len(q.Options))
		for j, text := range q.Options {
			opts[j] = LabeledOption{Label: model.OptionLabel(j), Text: text}
		}
		answer := make([]string, len(q.Answer))
		for j, key := range q.Answer {
			answer[j] = model.KeyLabel(key)
		}
		items[i] = PreviewItem{
			Position:    firstPosition + i,
			ID:          q.ID,
			Type:        q.Type,
			Question:    q.Question,
			Options:     opts,
			Answer:      answer,
			Weight:      q.Weight,
			Explanation: q.Explanation,
			Image:       q.Image,
		}
	}
	return items
}

// Weighted returns the questions with weight above the default, heaviest
// first. Ties keep bank order.
func Weighted(questions []model.Question, firstPosition int) []WeightedItem {
	items := []WeightedItem{}
	for i, q := range questions {
		if q.Weight <= DefaultWeight {
			continue
		}
		items = append(items, WeightedItem{
			Position: firstPosition + i,
			ID:       q.ID,
			Weight:   q.Weight,
			Preview:  excerpt(q.Question, PreviewTextLength),
		})
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Weight > items[b].Weight
	})
	return items
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
