package websocket

import (
	"github.com/stemsi/exstem-practice/internal/engine"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing   Action = "ping"
	ActionStatus Action = "status"
	ActionFinish Action = "finish"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventPong     Event = "pong"
	EventStatus   Event = "status"
	EventStarted  Event = "started"
	EventTick     Event = "tick"
	EventFinished Event = "finished"
	EventReset    Event = "reset"
)

// StatusResponse carries the session clock and progress; sent on every
// tick and in answer to a status action.
type StatusResponse struct {
	Event     Event         `json:"event"`
	SessionID string        `json:"session_id,omitempty"`
	Status    engine.Status `json:"status"`
}

// FinishedResponse is sent once when the session ends, by timeout or
// explicit submission.
type FinishedResponse struct {
	Event     Event         `json:"event"`
	SessionID string        `json:"session_id,omitempty"`
	Status    engine.Status `json:"status"`
	Result    engine.Result `json:"result"`
}

type ResetResponse struct {
	Event     Event  `json:"event"`
	SessionID string `json:"session_id,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
