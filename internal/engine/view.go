package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/stemsi/exstem-practice/internal/model"
)

// WarningThreshold is the remaining time under which Status.Warning is set.
const WarningThreshold = 60 * time.Second

// View is one question as the examinee sees it.
type View struct {
	Position        int                `json:"position"`
	Total           int                `json:"total"`
	ID              model.QuestionID   `json:"id"`
	Type            model.QuestionType `json:"type"`
	Question        string             `json:"question"`
	Image           string             `json:"image,omitempty"`
	Options         []PresentedOption  `json:"options"`
	Locked          bool               `json:"locked"`
	Selected        []int              `json:"selected,omitempty"`
	AnsweredCount   int                `json:"answered_count"`
	ProgressPercent int                `json:"progress_percent"`
	Remaining       int                `json:"remaining_seconds"`
}

// Status summarizes the session, as pushed on every tick.
type Status struct {
	State           State        `json:"state"`
	Position        int          `json:"position"`
	Total           int          `json:"total"`
	Answered        int          `json:"answered"`
	RemainingSecs   int          `json:"remaining_seconds"`
	Remaining       string       `json:"remaining"`
	Warning         bool         `json:"warning"`
	ProgressPercent int          `json:"progress_percent"`
	FinishReason    FinishReason `json:"finish_reason,omitempty"`
}

// CanonicalOption is an option identified by its canonical position.
type CanonicalOption struct {
	Key   int    `json:"key"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Feedback is returned for every accepted submission.
type Feedback struct {
	Position      int               `json:"position"`
	Correct       bool              `json:"correct"`
	YourAnswer    []CanonicalOption `json:"your_answer"`
	CorrectAnswer []CanonicalOption `json:"correct_answer"`
	Explanation   string            `json:"explanation,omitempty"`
}

func canonicalOptions(q model.Question, keys []int) []CanonicalOption {
	out := make([]CanonicalOption, len(keys))
	for i, k := range keys {
		out[i] = CanonicalOption{Key: k, Label: model.KeyLabel(k), Text: q.Options[k-1]}
	}
	return out
}

func progressPercent(position, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(position+1) / float64(total) * 100))
}

// ceilSeconds rounds up so that a running clock never shows 0 before timeout.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// FormatClock renders whole seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
