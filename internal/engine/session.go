// Package engine runs one timed multiple-choice test: it samples questions
// from a normalized bank, shuffles their options, records answers against a
// hard deadline and scores the result. It is synchronous and not safe for
// concurrent use; callers serialize access.
package engine

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"time"

	"github.com/stemsi/exstem-practice/internal/model"
)

// State is the lifecycle stage of a session.
type State int

const (
	StateSetup State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return "setup"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "setup":
		*s = StateSetup
	case "in_progress":
		*s = StateInProgress
	case "finished":
		*s = StateFinished
	default:
		return fmt.Errorf("unknown session state %q", text)
	}
	return nil
}

// FinishReason records how a session ended.
type FinishReason string

const (
	FinishSubmitted FinishReason = "submitted"
	FinishTimeout   FinishReason = "timeout"
	FinishCompleted FinishReason = "completed"
)

// Item is a selected question and how its options are presented.
type Item struct {
	Question     model.Question
	Presentation Presentation
}

// AnswerRecord is a submitted answer. Selected holds presentation slots,
// Canonical the matching 1-based canonical indices, both sorted.
type AnswerRecord struct {
	Selected   []int
	Canonical  []int
	Correct    bool
	AnsweredAt time.Time
}

// Session is one timed run over a sampled, presented set of questions.
type Session struct {
	items      []Item
	answers    []*AnswerRecord
	position   int
	startedAt  time.Time
	limit      time.Duration
	randomized bool
	truncated  bool

	state      State
	finishedAt time.Time
	reason     FinishReason

	clock Clock
}

type startOptions struct {
	clock Clock
	rng   *rand.Rand
}

// StartOption customizes Start.
type StartOption func(*startOptions)

// WithClock sets the time source. Defaults to SystemClock.
func WithClock(c Clock) StartOption {
	return func(o *startOptions) { o.clock = c }
}

// WithRand sets the random source used for sampling and shuffling.
// Defaults to a source seeded from the clock.
func WithRand(rng *rand.Rand) StartOption {
	return func(o *startOptions) { o.rng = rng }
}

// Start validates plan against bank, draws the test instance and starts the
// clock.
func Start(bank []model.Question, plan Plan, opts ...StartOption) (*Session, error) {
	o := startOptions{clock: SystemClock}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(o.clock.Now().UnixNano()))
	}

	start, end, err := plan.Resolve(len(bank))
	if err != nil {
		return nil, err
	}
	pool := Pool(bank, start, end)

	selected := Sample(pool, plan.Count, o.rng)
	items := make([]Item, len(selected))
	for i, q := range selected {
		p := Identity(q)
		if plan.RandomizeOptions {
			p = Randomize(q, o.rng)
		}
		items[i] = Item{Question: q, Presentation: p}
	}

	return &Session{
		items:      items,
		answers:    make([]*AnswerRecord, len(items)),
		startedAt:  o.clock.Now(),
		limit:      plan.TimeLimit,
		randomized: plan.RandomizeOptions,
		truncated:  plan.Count > len(pool),
		state:      StateInProgress,
		clock:      o.clock,
	}, nil
}

// ─── Navigation ────────────────────────────────────────────────────────

// Navigate moves to any position. Answered questions come back locked with
// the recorded selection.
func (s *Session) Navigate(position int) (View, error) {
	if err := s.guard(); err != nil {
		return View{}, err
	}
	if err := checkRange("position", position, 0, len(s.items)-1); err != nil {
		return View{}, err
	}
	s.position = position
	return s.view(position, s.clock.Now()), nil
}

// Next advances one position. At the last question it stays put and
// reports atEnd so the caller can offer to finish or wrap around.
func (s *Session) Next() (v View, atEnd bool, err error) {
	if err := s.guard(); err != nil {
		return View{}, false, err
	}
	if s.position >= len(s.items)-1 {
		return s.view(s.position, s.clock.Now()), true, nil
	}
	s.position++
	return s.view(s.position, s.clock.Now()), false, nil
}

// Current is the view at the current position.
func (s *Session) Current() View {
	return s.View(s.position)
}

// View renders position without moving to it. It never fails on a finished
// session; an out-of-range position yields the zero View.
func (s *Session) View(position int) View {
	s.expire()
	if position < 0 || position >= len(s.items) {
		return View{Total: len(s.items)}
	}
	return s.view(position, s.now())
}

// ─── Answers ───────────────────────────────────────────────────────────

// Submit records the selection (presentation slots) for position. Answers
// are final: a second submission for the same position is rejected.
func (s *Session) Submit(position int, selections []int) (Feedback, error) {
	if err := s.guard(); err != nil {
		return Feedback{}, err
	}
	if err := checkRange("position", position, 0, len(s.items)-1); err != nil {
		return Feedback{}, err
	}
	if len(selections) == 0 {
		return Feedback{}, ErrEmptySelection
	}

	item := s.items[position]
	for _, sel := range selections {
		if err := checkRange("selection", sel, 0, len(item.Presentation.Options)-1); err != nil {
			return Feedback{}, err
		}
	}
	if s.answers[position] != nil {
		return Feedback{}, ErrAlreadyAnswered
	}

	selected := slices.Clone(selections)
	sort.Ints(selected)
	selected = slices.Compact(selected)

	canonical := item.Presentation.Canonical(selected)
	correct := slices.Equal(canonical, item.Question.Answer)

	s.answers[position] = &AnswerRecord{
		Selected:   selected,
		Canonical:  canonical,
		Correct:    correct,
		AnsweredAt: s.clock.Now(),
	}
	s.position = position

	return Feedback{
		Position:      position,
		Correct:       correct,
		YourAnswer:    canonicalOptions(item.Question, canonical),
		CorrectAnswer: canonicalOptions(item.Question, item.Question.Answer),
		Explanation:   item.Question.Explanation,
	}, nil
}

// ─── Timing ────────────────────────────────────────────────────────────

// Tick checks the deadline. finished is true only on the call that ended
// the session by timeout.
func (s *Session) Tick() (st Status, finished bool) {
	if s.state == StateFinished {
		return s.Status(), false
	}
	finished = s.expire()
	return s.Status(), finished
}

// Finish ends the session. Unanswered questions stay unanswered. Finishing
// a finished session is a no-op; finishing past the deadline records a
// timeout whatever the reason given.
func (s *Session) Finish(reason FinishReason) {
	if s.state == StateFinished {
		return
	}
	if s.expire() {
		return
	}
	if reason == "" {
		reason = FinishSubmitted
	}
	s.finish(reason, s.clock.Now())
}

func (s *Session) Status() Status {
	s.expire()
	now := s.now()
	rem := s.remaining(now)
	return Status{
		State:           s.state,
		Position:        s.position,
		Total:           len(s.items),
		Answered:        s.answeredCount(),
		RemainingSecs:   rem,
		Remaining:       FormatClock(rem),
		Warning:         s.state == StateInProgress && rem < int(WarningThreshold/time.Second),
		ProgressPercent: progressPercent(s.position, len(s.items)),
		FinishReason:    s.reason,
	}
}

// guard enforces the deadline before any mutating operation.
func (s *Session) guard() error {
	s.expire()
	if s.state == StateFinished {
		return ErrSessionFinished
	}
	return nil
}

// expire finishes an in-progress session whose deadline has passed and
// reports whether it did so.
func (s *Session) expire() bool {
	if s.state != StateInProgress {
		return false
	}
	if s.clock.Now().Before(s.Deadline()) {
		return false
	}
	s.finish(FinishTimeout, s.Deadline())
	return true
}

func (s *Session) finish(reason FinishReason, at time.Time) {
	s.state = StateFinished
	s.reason = reason
	s.finishedAt = at
}

// now is the clock time for in-progress sessions and the finish time after.
func (s *Session) now() time.Time {
	if s.state == StateFinished {
		return s.finishedAt
	}
	return s.clock.Now()
}

func (s *Session) remaining(now time.Time) int {
	if s.state == StateFinished && s.reason == FinishTimeout {
		return 0
	}
	return ceilSeconds(s.Deadline().Sub(now))
}

func (s *Session) view(position int, now time.Time) View {
	item := s.items[position]
	v := View{
		Position:        position,
		Total:           len(s.items),
		ID:              item.Question.ID,
		Type:            item.Question.Type,
		Question:        item.Question.Question,
		Image:           item.Question.Image,
		Options:         item.Presentation.Labeled(),
		AnsweredCount:   s.answeredCount(),
		ProgressPercent: progressPercent(position, len(s.items)),
		Remaining:       s.remaining(now),
	}
	if rec := s.answers[position]; rec != nil {
		v.Locked = true
		v.Selected = slices.Clone(rec.Selected)
	}
	return v
}

func (s *Session) answeredCount() int {
	n := 0
	for _, a := range s.answers {
		if a != nil {
			n++
		}
	}
	return n
}

// ─── Accessors ─────────────────────────────────────────────────────────

func (s *Session) State() State { return s.state }
func (s *Session) FinishReason() FinishReason { return s.reason }
func (s *Session) Position() int { return s.position }
func (s *Session) Len() int { return len(s.items) }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) FinishedAt() time.Time { return s.finishedAt }
func (s *Session) TimeLimit() time.Duration { return s.limit }
func (s *Session) Deadline() time.Time { return s.startedAt.Add(s.limit) }
func (s *Session) Randomized() bool { return s.randomized }
func (s *Session) Truncated() bool { return s.truncated }
func (s *Session) Item(position int) Item { return s.items[position] }
func (s *Session) Answer(position int) *AnswerRecord {
	return s.answers[position]
}

// Items returns the test instance in order.
func (s *Session) Items() []Item {
	return slices.Clone(s.items)
}
