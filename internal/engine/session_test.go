package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-practice/internal/model"
)

func startSession(t *testing.T, bank []model.Question, plan Plan, seed int64) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s, err := Start(bank, plan, WithClock(clock), WithRand(seeded(seed)))
	require.NoError(t, err)
	return s, clock
}

func TestStart_PlanValidation(t *testing.T) {
	bank := uniformBank(5)
	tests := []struct {
		name  string
		plan  Plan
		field string
	}{
		{"start below one", Plan{RangeStart: -1, Count: 1, TimeLimit: time.Minute}, "range_start"},
		{"start past bank", Plan{RangeStart: 6, Count: 1, TimeLimit: time.Minute}, "range_start"},
		{"end before start", Plan{RangeStart: 3, RangeEnd: 2, Count: 1, TimeLimit: time.Minute}, "range_end"},
		{"end past bank", Plan{RangeStart: 1, RangeEnd: 9, Count: 1, TimeLimit: time.Minute}, "range_end"},
		{"zero count", Plan{Count: 0, TimeLimit: time.Minute}, "question_count"},
		{"no time", Plan{Count: 1}, "time_limit_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Start(bank, tt.plan)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfRange)

			var re *RangeError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.field, re.Field)
		})
	}
}

func TestStart_EmptyBank(t *testing.T) {
	_, err := Start(nil, Plan{Count: 1, TimeLimit: time.Minute})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestStart_RangeAndTruncation(t *testing.T) {
	bank := uniformBank(10)
	s, _ := startSession(t, bank, Plan{RangeStart: 4, RangeEnd: 6, Count: 5, TimeLimit: time.Minute}, 1)

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Truncated())
	assert.Equal(t, StateInProgress, s.State())
	for _, item := range s.Items() {
		n := item.Question.ID.String()
		assert.Contains(t, []string{"4", "5", "6"}, n)
	}
	for i := 0; i < s.Len(); i++ {
		assert.Nil(t, s.Answer(i))
	}
}

func TestStart_IdentityWithoutRandomization(t *testing.T) {
	s, _ := startSession(t, uniformBank(3), Plan{Count: 3, TimeLimit: time.Minute}, 1)
	for _, item := range s.Items() {
		assert.Equal(t, []int{0, 1, 2, 3}, item.Presentation.Mapping)
	}
	assert.False(t, s.Randomized())
}

func TestSession_NavigationAndNext(t *testing.T) {
	s, _ := startSession(t, uniformBank(3), Plan{Count: 3, TimeLimit: time.Minute}, 1)

	v := s.Current()
	assert.Equal(t, 0, v.Position)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 33, v.ProgressPercent)
	assert.Equal(t, "A", v.Options[0].Label)

	v, atEnd, err := s.Next()
	require.NoError(t, err)
	assert.False(t, atEnd)
	assert.Equal(t, 1, v.Position)

	v, atEnd, err = s.Next()
	require.NoError(t, err)
	assert.False(t, atEnd)
	assert.Equal(t, 2, v.Position)
	assert.Equal(t, 100, v.ProgressPercent)

	v, atEnd, err = s.Next()
	require.NoError(t, err)
	assert.True(t, atEnd)
	assert.Equal(t, 2, v.Position)

	v, err = s.Navigate(0)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Position)
	assert.Equal(t, 0, s.Position())

	_, err = s.Navigate(3)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSession_SubmitRoundTripUnderRandomization(t *testing.T) {
	bank := []model.Question{
		question(1, 1, []string{"a", "b", "c", "d"}, 2, 4),
		question(2, 1, []string{"w", "x", "y", "z"}, 3),
	}
	s, _ := startSession(t, bank, Plan{Count: 2, TimeLimit: time.Minute, RandomizeOptions: true}, 17)

	for pos, item := range s.Items() {
		var slots []int
		for slot, idx := range item.Presentation.Mapping {
			for _, key := range item.Question.Answer {
				if idx+1 == key {
					slots = append(slots, slot)
				}
			}
		}
		fb, err := s.Submit(pos, slots)
		require.NoError(t, err)
		assert.True(t, fb.Correct)
		assert.Equal(t, item.Question.Answer, s.Answer(pos).Canonical)
		assert.Len(t, fb.CorrectAnswer, len(item.Question.Answer))
	}
}

func TestSession_SubsetAndSupersetAreWrong(t *testing.T) {
	bank := []model.Question{question(1, 1, []string{"a", "b", "c", "d"}, 1, 3)}

	subset, _ := startSession(t, bank, Plan{Count: 1, TimeLimit: time.Minute}, 1)
	fb, err := subset.Submit(0, []int{0})
	require.NoError(t, err)
	assert.False(t, fb.Correct)
	assert.Equal(t, []CanonicalOption{{Key: 1, Label: "A", Text: "a"}}, fb.YourAnswer)
	assert.Equal(t, []CanonicalOption{{Key: 1, Label: "A", Text: "a"}, {Key: 3, Label: "C", Text: "c"}}, fb.CorrectAnswer)

	superset, _ := startSession(t, bank, Plan{Count: 1, TimeLimit: time.Minute}, 1)
	fb, err = superset.Submit(0, []int{0, 1, 2})
	require.NoError(t, err)
	assert.False(t, fb.Correct)

	exact, _ := startSession(t, bank, Plan{Count: 1, TimeLimit: time.Minute}, 1)
	fb, err = exact.Submit(0, []int{2, 0, 2})
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, []int{0, 2}, exact.Answer(0).Selected)
}

func TestSession_SubmitErrors(t *testing.T) {
	s, _ := startSession(t, uniformBank(2), Plan{Count: 2, TimeLimit: time.Minute}, 1)

	_, err := s.Submit(0, nil)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = s.Submit(0, []int{4})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.Submit(5, []int{0})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.Submit(0, []int{1})
	require.NoError(t, err)
	_, err = s.Submit(0, []int{0})
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	assert.False(t, s.Answer(0).Correct)

	v, err := s.Navigate(0)
	require.NoError(t, err)
	assert.True(t, v.Locked)
	assert.Equal(t, []int{1}, v.Selected)
	assert.Equal(t, 1, v.AnsweredCount)

	assert.Equal(t, StateInProgress, s.State())
}

func TestSession_TimeoutAfterTwoTicks(t *testing.T) {
	s, clock := startSession(t, uniformBank(3), Plan{Count: 3, TimeLimit: time.Second}, 1)

	_, err := s.Submit(1, []int{0})
	require.NoError(t, err)

	clock.Advance(500 * time.Millisecond)
	st, finished := s.Tick()
	assert.False(t, finished)
	assert.Equal(t, StateInProgress, st.State)
	assert.Equal(t, 1, st.RemainingSecs)
	assert.True(t, st.Warning)

	clock.Advance(time.Second)
	st, finished = s.Tick()
	assert.True(t, finished)
	assert.Equal(t, StateFinished, st.State)
	assert.Equal(t, FinishTimeout, st.FinishReason)
	assert.Equal(t, 0, st.RemainingSecs)
	assert.Equal(t, "00:00", st.Remaining)

	_, finished = s.Tick()
	assert.False(t, finished)

	res, err := Score(s)
	require.NoError(t, err)
	assert.Equal(t, FinishTimeout, res.FinishReason)
	assert.Equal(t, 1, res.Answered)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 1, res.ElapsedSeconds)
	require.Len(t, res.Missed, 2)
	assert.True(t, res.Missed[0].Unanswered)
	assert.True(t, res.Missed[1].Unanswered)
	assert.Equal(t, 0, res.Missed[0].Position)
	assert.Equal(t, 2, res.Missed[1].Position)
}

func TestSession_DeadlineEnforcedBeforeOperations(t *testing.T) {
	s, clock := startSession(t, uniformBank(2), Plan{Count: 2, TimeLimit: time.Minute}, 1)
	clock.Advance(2 * time.Minute)

	_, err := s.Submit(0, []int{0})
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, FinishTimeout, s.FinishReason())
	assert.Equal(t, s.Deadline(), s.FinishedAt())

	_, err = s.Navigate(1)
	assert.ErrorIs(t, err, ErrSessionFinished)
	_, _, err = s.Next()
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestSession_FinishIsIdempotent(t *testing.T) {
	s, clock := startSession(t, uniformBank(2), Plan{Count: 2, TimeLimit: time.Minute}, 1)
	clock.Advance(75 * time.Second / 2)

	_, err := Score(s)
	assert.ErrorIs(t, err, ErrSessionInProgress)

	s.Finish(FinishSubmitted)
	finishedAt := s.FinishedAt()
	clock.Advance(time.Hour)
	s.Finish(FinishCompleted)

	assert.Equal(t, FinishSubmitted, s.FinishReason())
	assert.Equal(t, finishedAt, s.FinishedAt())

	res, err := Score(s)
	require.NoError(t, err)
	assert.Equal(t, 37, res.ElapsedSeconds)
	assert.Equal(t, "00:37", res.Elapsed)
	assert.Equal(t, 0, res.AccuracyPercent)
	assert.Equal(t, 0, res.Answered)
	assert.Len(t, res.Missed, 2)

	st := s.Status()
	assert.False(t, st.Warning)
	assert.Equal(t, 23, st.RemainingSecs)
}

func TestSession_FinishPastDeadlineRecordsTimeout(t *testing.T) {
	s, clock := startSession(t, uniformBank(1), Plan{Count: 1, TimeLimit: time.Minute}, 1)
	clock.Advance(time.Minute)
	s.Finish(FinishSubmitted)
	assert.Equal(t, FinishTimeout, s.FinishReason())
}

func TestState_TextRoundTrip(t *testing.T) {
	for _, st := range []State{StateSetup, StateInProgress, StateFinished} {
		text, err := st.MarshalText()
		require.NoError(t, err)

		var back State
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, st, back)
	}

	var st State
	assert.Error(t, st.UnmarshalText([]byte("paused")))
}
