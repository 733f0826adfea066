//go:build cucumber

package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/stemsi/exstem-practice/internal/model"
)

// TestSessionScenarios runs the session feature scenarios.
func TestSessionScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "session",
		ScenarioInitializer: InitializeSessionScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{"features"},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeSessionScenario wires steps for session scenarios.
func InitializeSessionScenario(ctx *godog.ScenarioContext) {
	state := &sessionScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^a bank of (\d+) single-answer questions where option A is correct$`, state.givenBank)
	ctx.Step(`^I start a session with (\d+) questions and a (\d+) (minute|second) limit$`, state.whenStart)
	ctx.Step(`^I start a session over questions (\d+) to (\d+) with (\d+) questions and a (\d+) minute limit$`, state.whenStartRange)
	ctx.Step(`^I answer every question with option ([A-Z])$`, state.whenAnswerAll)
	ctx.Step(`^I answer question (\d+) with option ([A-Z])$`, state.whenAnswer)
	ctx.Step(`^I finish the session$`, state.whenFinish)
	ctx.Step(`^the clock ticks twice$`, state.whenTickTwice)
	ctx.Step(`^the accuracy is (\d+) percent$`, state.thenAccuracy)
	ctx.Step(`^the accuracy after finishing is (\d+) percent$`, state.thenAccuracyAfterFinish)
	ctx.Step(`^(\d+) questions are listed as missed$`, state.thenMissed)
	ctx.Step(`^the missed questions include unanswered ones$`, state.thenMissedUnanswered)
	ctx.Step(`^answering question (\d+) with option ([A-Z]) is rejected as already answered$`, state.thenAlreadyAnswered)
	ctx.Step(`^the session finished because of a timeout$`, state.thenTimeout)
	ctx.Step(`^the session holds (\d+) questions$`, state.thenLen)
	ctx.Step(`^the session is marked truncated$`, state.thenTruncated)
}

type sessionScenarioState struct {
	bank    []model.Question
	clock   *fakeClock
	session *Session
	ticked  bool
}

// reset clears scenario state.
func (s *sessionScenarioState) reset() {
	*s = sessionScenarioState{clock: newFakeClock()}
}

func (s *sessionScenarioState) givenBank(n int) error {
	s.bank = uniformBank(n)
	return nil
}

func (s *sessionScenarioState) start(plan Plan) error {
	sess, err := Start(s.bank, plan, WithClock(s.clock), WithRand(seeded(1)))
	if err != nil {
		return err
	}
	s.session = sess
	return nil
}

func (s *sessionScenarioState) whenStart(count, amount int, unit string) error {
	limit := time.Duration(amount) * time.Minute
	if unit == "second" {
		limit = time.Duration(amount) * time.Second
	}
	return s.start(Plan{Count: count, TimeLimit: limit})
}

func (s *sessionScenarioState) whenStartRange(from, to, count, minutes int) error {
	return s.start(Plan{RangeStart: from, RangeEnd: to, Count: count, TimeLimit: time.Duration(minutes) * time.Minute})
}

func (s *sessionScenarioState) whenAnswerAll(label string) error {
	for i := 0; i < s.session.Len(); i++ {
		if _, err := s.session.Submit(i, []int{slotOf(label)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *sessionScenarioState) whenAnswer(position int, label string) error {
	_, err := s.session.Submit(position-1, []int{slotOf(label)})
	return err
}

func (s *sessionScenarioState) whenFinish() error {
	s.session.Finish(FinishSubmitted)
	return nil
}

func (s *sessionScenarioState) whenTickTwice() error {
	for i := 0; i < 2; i++ {
		s.clock.Advance(600 * time.Millisecond)
		if _, finished := s.session.Tick(); finished {
			s.ticked = true
		}
	}
	return nil
}

func (s *sessionScenarioState) thenAccuracy(want int) error {
	res, err := Score(s.session)
	if err != nil {
		return err
	}
	if res.AccuracyPercent != want {
		return fmt.Errorf("accuracy = %d, want %d", res.AccuracyPercent, want)
	}
	return nil
}

func (s *sessionScenarioState) thenAccuracyAfterFinish(want int) error {
	s.session.Finish(FinishSubmitted)
	return s.thenAccuracy(want)
}

func (s *sessionScenarioState) thenMissed(want int) error {
	res, err := Score(s.session)
	if err != nil {
		return err
	}
	if len(res.Missed) != want {
		return fmt.Errorf("missed = %d, want %d", len(res.Missed), want)
	}
	return nil
}

func (s *sessionScenarioState) thenMissedUnanswered() error {
	res, err := Score(s.session)
	if err != nil {
		return err
	}
	for _, m := range res.Missed {
		if m.Unanswered {
			return nil
		}
	}
	return errors.New("no unanswered question in review")
}

func (s *sessionScenarioState) thenAlreadyAnswered(position int, label string) error {
	_, err := s.session.Submit(position-1, []int{slotOf(label)})
	if !errors.Is(err, ErrAlreadyAnswered) {
		return fmt.Errorf("expected ErrAlreadyAnswered, got %v", err)
	}
	return nil
}

func (s *sessionScenarioState) thenTimeout() error {
	if !s.ticked {
		return errors.New("no tick reported the timeout")
	}
	if s.session.FinishReason() != FinishTimeout {
		return fmt.Errorf("finish reason = %q", s.session.FinishReason())
	}
	return nil
}

func (s *sessionScenarioState) thenLen(want int) error {
	if s.session.Len() != want {
		return fmt.Errorf("session has %d questions, want %d", s.session.Len(), want)
	}
	return nil
}

func (s *sessionScenarioState) thenTruncated() error {
	if !s.session.Truncated() {
		return errors.New("session not marked truncated")
	}
	return nil
}

func slotOf(label string) int {
	return int(label[0] - 'A')
}
