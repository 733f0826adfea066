package service

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/engine"
)

// ErrNoActiveSession is returned by every session operation before Start
// or after Reset.
var ErrNoActiveSession = errors.New("no active practice session")

// EventType classifies a session broadcast.
type EventType string

const (
	EventStarted  EventType = "started"
	EventTick     EventType = "tick"
	EventFinished EventType = "finished"
	EventReset    EventType = "reset"
)

// Event is pushed to subscribers. Result is set on EventFinished.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Status    *engine.Status `json:"status,omitempty"`
	Result    *engine.Result `json:"result,omitempty"`
}

// StartResult describes a freshly started session.
type StartResult struct {
	SessionID        string        `json:"session_id"`
	Total            int           `json:"total"`
	Truncated        bool          `json:"truncated"`
	Randomized       bool          `json:"randomized"`
	TimeLimitSeconds int           `json:"time_limit_seconds"`
	Deadline         time.Time     `json:"deadline"`
	View             engine.View   `json:"view"`
	Status           engine.Status `json:"status"`
}

// SessionSnapshot is the current question plus the session status.
type SessionSnapshot struct {
	SessionID string        `json:"session_id"`
	View      engine.View   `json:"view"`
	Status    engine.Status `json:"status"`
}

// NextResult is the view after advancing. AtEnd is set when the examinee
// was already on the last question.
type NextResult struct {
	View  engine.View `json:"view"`
	AtEnd bool        `json:"at_end"`
}

// PracticeService owns the single active session of this process.
type PracticeService struct {
	bank         *BankService
	clock        engine.Clock
	seed         int64
	defaultLimit time.Duration
	log          zerolog.Logger

	mu        sync.Mutex
	session   *engine.Session
	sessionID string
	announced bool

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// PracticeOption customizes a PracticeService.
type PracticeOption func(*PracticeService)

// WithClock sets the clock handed to every session.
func WithClock(c engine.Clock) PracticeOption {
	return func(s *PracticeService) { s.clock = c }
}

// WithSeed fixes the random source of every session. Zero keeps
// clock-seeded randomness.
func WithSeed(seed int64) PracticeOption {
	return func(s *PracticeService) { s.seed = seed }
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(bank *BankService, defaultLimit time.Duration, log zerolog.Logger, opts ...PracticeOption) *PracticeService {
	s := &PracticeService{
		bank:         bank,
		clock:        engine.SystemClock,
		defaultLimit: defaultLimit,
		log:          log.With().Str("component", "practice_service").Logger(),
		subs:         make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start discards any current session and starts a new one. A zero time
// limit falls back to the configured default.
func (s *PracticeService) Start(plan engine.Plan) (StartResult, error) {
	bank := s.bank.Questions()
	if len(bank) == 0 {
		return StartResult{}, ErrBankEmpty
	}
	if plan.TimeLimit == 0 {
		plan.TimeLimit = s.defaultLimit
	}

	opts := []engine.StartOption{engine.WithClock(s.clock)}
	if s.seed != 0 {
		opts = append(opts, engine.WithRand(rand.New(rand.NewSource(s.seed))))
	}

	sess, err := engine.Start(bank, plan, opts...)
	if err != nil {
		return StartResult{}, err
	}

	s.mu.Lock()
	s.session = sess
	s.sessionID = uuid.New().String()
	s.announced = false
	res := StartResult{
		SessionID:        s.sessionID,
		Total:            sess.Len(),
		Truncated:        sess.Truncated(),
		Randomized:       sess.Randomized(),
		TimeLimitSeconds: int(sess.TimeLimit() / time.Second),
		Deadline:         sess.Deadline(),
		View:             sess.Current(),
		Status:           sess.Status(),
	}
	s.mu.Unlock()

	s.log.Info().
		Str("session_id", res.SessionID).
		Int("questions", res.Total).
		Bool("truncated", res.Truncated).
		Bool("randomized", res.Randomized).
		Int("time_limit_seconds", res.TimeLimitSeconds).
		Msg("Practice session started")

	st := res.Status
	s.broadcast(Event{Type: EventStarted, SessionID: res.SessionID, Status: &st})
	return res, nil
}

// Current returns the view at the current position.
func (s *PracticeService) Current() (SessionSnapshot, error) {
	var snap SessionSnapshot
	err := s.with(func(sess *engine.Session) error {
		snap = SessionSnapshot{SessionID: s.sessionID, View: sess.Current(), Status: sess.Status()}
		return nil
	})
	return snap, err
}

// Status returns the session status.
func (s *PracticeService) Status() (engine.Status, error) {
	var st engine.Status
	err := s.with(func(sess *engine.Session) error {
		st = sess.Status()
		return nil
	})
	return st, err
}

// Navigate moves to position (0-based).
func (s *PracticeService) Navigate(position int) (engine.View, error) {
	var v engine.View
	err := s.with(func(sess *engine.Session) error {
		var err error
		v, err = sess.Navigate(position)
		return err
	})
	return v, err
}

// Next advances to the following question.
func (s *PracticeService) Next() (NextResult, error) {
	var res NextResult
	err := s.with(func(sess *engine.Session) error {
		v, atEnd, err := sess.Next()
		res = NextResult{View: v, AtEnd: atEnd}
		return err
	})
	return res, err
}

// Submit records an answer given as presentation slots.
func (s *PracticeService) Submit(position int, selections []int) (engine.Feedback, error) {
	var fb engine.Feedback
	err := s.with(func(sess *engine.Session) error {
		var err error
		fb, err = sess.Submit(position, selections)
		return err
	})
	return fb, err
}

// Finish ends the session and returns its score.
func (s *PracticeService) Finish(reason engine.FinishReason) (engine.Result, error) {
	var res engine.Result
	err := s.with(func(sess *engine.Session) error {
		sess.Finish(reason)
		var err error
		res, err = engine.Score(sess)
		return err
	})
	return res, err
}

// Result scores the session; it fails while the session is in progress.
func (s *PracticeService) Result() (engine.Result, error) {
	var res engine.Result
	err := s.with(func(sess *engine.Session) error {
		var err error
		res, err = engine.Score(sess)
		return err
	})
	return res, err
}

// Tick drives the session timer. ok is false when there is nothing to tick.
func (s *PracticeService) Tick() (st engine.Status, finished, ok bool) {
	s.mu.Lock()
	sess := s.session
	if sess == nil || sess.State() == engine.StateFinished {
		s.mu.Unlock()
		return engine.Status{}, false, false
	}
	st, finished = sess.Tick()
	id := s.sessionID
	s.mu.Unlock()

	s.broadcast(Event{Type: EventTick, SessionID: id, Status: &st})
	s.announceFinish()
	return st, finished, true
}

// Reset discards the session, finished or not.
func (s *PracticeService) Reset() error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	id := s.sessionID
	s.session = nil
	s.sessionID = ""
	s.mu.Unlock()

	s.log.Info().Str("session_id", id).Msg("Practice session reset")
	s.broadcast(Event{Type: EventReset, SessionID: id})
	return nil
}

// SessionID returns the active session's id, or "" when there is none.
func (s *PracticeService) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Subscribe registers a listener for session events. Slow listeners miss
// events rather than blocking the session. Call cancel to unsubscribe.
func (s *PracticeService) Subscribe() (events <-chan Event, cancel func()) {
	ch := make(chan Event, 8)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// with runs fn on the active session under the lock, then announces a
// finish that fn (or the deadline) caused.
func (s *PracticeService) with(fn func(sess *engine.Session) error) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	err := fn(s.session)
	s.mu.Unlock()

	s.announceFinish()
	return err
}

// announceFinish broadcasts the result once per finished session.
func (s *PracticeService) announceFinish() {
	s.mu.Lock()
	sess := s.session
	if sess == nil || s.announced || sess.State() != engine.StateFinished {
		s.mu.Unlock()
		return
	}
	s.announced = true
	id := s.sessionID
	res, err := engine.Score(sess)
	st := sess.Status()
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Str("session_id", id).Msg("Score finished session")
		return
	}

	s.log.Info().
		Str("session_id", id).
		Str("reason", string(res.FinishReason)).
		Int("correct", res.Correct).
		Int("answered", res.Answered).
		Int("total", res.Total).
		Int("accuracy_percent", res.AccuracyPercent).
		Msg("Practice session finished")

	s.broadcast(Event{Type: EventFinished, SessionID: id, Status: &st, Result: &res})
}

func (s *PracticeService) broadcast(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
