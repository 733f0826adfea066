package engine

import (
	"math"
	"time"

	"github.com/stemsi/exstem-practice/internal/model"
)

// Result is the score of a finished session.
type Result struct {
	Correct         int          `json:"correct"`
	Answered        int          `json:"answered"`
	Total           int          `json:"total"`
	AccuracyPercent int          `json:"accuracy_percent"`
	ElapsedSeconds  int          `json:"elapsed_seconds"`
	Elapsed         string       `json:"elapsed"`
	FinishReason    FinishReason `json:"finish_reason"`
	Missed          []MissedItem `json:"missed"`
}

// MissedItem reviews an unanswered or wrongly answered question. Answers
// are labelled by canonical position whatever order the options were shown in.
type MissedItem struct {
	Position      int               `json:"position"`
	ID            model.QuestionID  `json:"id"`
	Question      string            `json:"question"`
	Image         string            `json:"image,omitempty"`
	Options       []PresentedOption `json:"options"`
	Unanswered    bool              `json:"unanswered"`
	YourAnswer    []CanonicalOption `json:"your_answer,omitempty"`
	CorrectAnswer []CanonicalOption `json:"correct_answer"`
	Explanation   string            `json:"explanation,omitempty"`
}

// Score grades a finished session.
func Score(s *Session) (Result, error) {
	s.expire()
	if s.state != StateFinished {
		return Result{}, ErrSessionInProgress
	}

	res := Result{
		Total:        len(s.items),
		FinishReason: s.reason,
		Missed:       []MissedItem{},
	}
	for i, item := range s.items {
		rec := s.answers[i]
		if rec != nil {
			res.Answered++
			if rec.Correct {
				res.Correct++
				continue
			}
		}

		q := item.Question
		m := MissedItem{
			Position:      i,
			ID:            q.ID,
			Question:      q.Question,
			Image:         q.Image,
			Options:       item.Presentation.Labeled(),
			Unanswered:    rec == nil,
			CorrectAnswer: canonicalOptions(q, q.Answer),
			Explanation:   q.Explanation,
		}
		if rec != nil {
			m.YourAnswer = canonicalOptions(q, rec.Canonical)
		}
		res.Missed = append(res.Missed, m)
	}

	res.AccuracyPercent = Accuracy(res.Correct, res.Answered)
	res.ElapsedSeconds = int(s.finishedAt.Sub(s.startedAt) / time.Second)
	res.Elapsed = FormatClock(res.ElapsedSeconds)
	return res, nil
}

// Accuracy is correct/answered as a rounded percentage, 0 when nothing
// was answered.
func Accuracy(correct, answered int) int {
	if answered <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(answered) * 100))
}
