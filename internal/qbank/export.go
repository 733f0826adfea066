package qbank

import (
	"encoding/json"
	"fmt"

	"github.com/stemsi/exstem-practice/internal/model"
)

// Export writes normalized questions in the canonical JSON shape: a bare
// array, 2-space indented, numeric answer keys. Decoding and normalizing
// the output yields the same questions.
func Export(questions []model.Question) ([]byte, error) {
	if questions == nil {
		questions = []model.Question{}
	}
	out, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export bank: %w", err)
	}
	return append(out, '\n'), nil
}

// ToRaw turns normalized questions back into records, for the sources
// that store raw documents (redis) or rows (sql).
func ToRaw(questions []model.Question) []model.RawQuestion {
	out := make([]model.RawQuestion, len(questions))
	for i, q := range questions {
		keys := make(model.AnswerKeys, len(q.Answer))
		for j, a := range q.Answer {
			keys[j] = model.IndexKey(a)
		}
		out[i] = model.RawQuestion{
			ID:          q.ID,
			Type:        string(q.Type),
			Question:    q.Question,
			Options:     append([]string(nil), q.Options...),
			Answer:      keys,
			Weight:      q.Weight,
			Explanation: q.Explanation,
			Image:       q.Image,
		}
	}
	return out
}
