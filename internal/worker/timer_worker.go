package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/engine"
)

// DefaultTickInterval is how often the session deadline is checked.
const DefaultTickInterval = time.Second

// SessionTicker is the part of the practice service the timer drives.
type SessionTicker interface {
	Tick() (st engine.Status, finished, ok bool)
}

// TimerWorker ticks the active session so it times out even when the
// examinee stops interacting.
type TimerWorker struct {
	sessions SessionTicker
	interval time.Duration
	log      zerolog.Logger

	// warned is set once the final-minute warning is logged for the
	// current session and cleared when the session ends.
	warned bool
}

func NewTimerWorker(sessions SessionTicker, interval time.Duration, log zerolog.Logger) *TimerWorker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TimerWorker{
		sessions: sessions,
		interval: interval,
		log:      log.With().Str("component", "timer_worker").Logger(),
	}
}

// Start runs the tick loop until ctx is cancelled. Call in a goroutine.
func (w *TimerWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("TimerWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("TimerWorker stopped")
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *TimerWorker) tick() {
	st, finished, ok := w.sessions.Tick()
	if !ok {
		w.warned = false
		return
	}
	if finished {
		w.warned = false
		w.log.Info().
			Int("answered", st.Answered).
			Int("total", st.Total).
			Msg("Time is up, session auto-submitted")
		return
	}
	if !st.Warning {
		w.warned = false
		return
	}
	if !w.warned {
		w.warned = true
		w.log.Warn().Int("remaining_seconds", st.RemainingSecs).Msg("Session entering final minute")
	}
}
