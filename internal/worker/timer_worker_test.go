package worker

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/exstem-practice/internal/engine"
)

type countingTicker struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTicker) Tick() (engine.Status, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return engine.Status{State: engine.StateInProgress}, c.calls == 3, true
}

func (c *countingTicker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestTimerWorker_TicksUntilCancelled(t *testing.T) {
	ticker := &countingTicker{}
	w := NewTimerWorker(ticker, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return ticker.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	stopped := ticker.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, ticker.count())
}

func TestNewTimerWorker_DefaultInterval(t *testing.T) {
	w := NewTimerWorker(&countingTicker{}, 0, zerolog.Nop())
	assert.Equal(t, DefaultTickInterval, w.interval)
}

type scriptedTicker struct {
	steps []engine.Status
	i     int
}

func (s *scriptedTicker) Tick() (engine.Status, bool, bool) {
	if s.i >= len(s.steps) {
		return engine.Status{}, false, false
	}
	st := s.steps[s.i]
	s.i++
	return st, st.State == engine.StateFinished, true
}

func TestTimerWorker_WarnsOncePerSession(t *testing.T) {
	running := func(secs int) engine.Status {
		return engine.Status{
			State:         engine.StateInProgress,
			RemainingSecs: secs,
			Warning:       time.Duration(secs)*time.Second < engine.WarningThreshold,
		}
	}
	// 59 is skipped and 58 repeats, as with a late ticker.
	ticker := &scriptedTicker{steps: []engine.Status{
		running(61), running(60), running(58), running(58), running(30),
		{State: engine.StateFinished},
		running(20),
	}}

	var buf bytes.Buffer
	w := NewTimerWorker(ticker, time.Second, zerolog.New(&buf))
	for range ticker.steps {
		w.tick()
	}

	assert.Equal(t, 2, strings.Count(buf.String(), "Session entering final minute"))
}
