package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/engine"
	"github.com/stemsi/exstem-practice/internal/service"
	ws "github.com/stemsi/exstem-practice/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the practice session clock over WebSocket.
type WSHandler struct {
	practice *service.PracticeService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(practice *service.PracticeService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		practice: practice,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/session/stream
// Pushes tick, finished and reset events of the active session. Clients may
// send ping, status and finish actions.
func (h *WSHandler) SessionStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := h.practice.Subscribe()
	defer cancel()

	wsLog := h.log.With().Str("remote", c.ClientIP()).Logger()
	wsLog.Info().Msg("Session stream connected")

	// gorilla/websocket allows one concurrent writer; the reader hands its
	// replies to the loop below instead of writing itself.
	replies := make(chan interface{}, 4)
	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)
	go h.readLoop(conn, wsLog, replies, done, quit)

	if st, err := h.practice.Status(); err == nil {
		replies <- ws.StatusResponse{Event: ws.EventStatus, SessionID: h.practice.SessionID(), Status: st}
	}

	for {
		select {
		case <-done:
			return
		case msg := <-replies:
			if err := ws.WriteTyped(conn, msg); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, toWSMessage(ev)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, replies chan<- interface{}, done chan<- struct{}, quit <-chan struct{}) {
	defer close(done)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		case ws.ActionStatus:
			st, err := h.practice.Status()
			if err != nil {
				reply = ws.ErrorResponse{Event: ws.EventError, Error: err.Error()}
				break
			}
			reply = ws.StatusResponse{Event: ws.EventStatus, SessionID: h.practice.SessionID(), Status: st}
		case ws.ActionFinish:
			// The finished event reaches this client through its subscription.
			if _, err := h.practice.Finish(engine.FinishSubmitted); err != nil {
				reply = ws.ErrorResponse{Event: ws.EventError, Error: err.Error()}
			}
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		}

		if reply == nil {
			continue
		}
		select {
		case replies <- reply:
		case <-quit:
			return
		}
	}
}

func toWSMessage(ev service.Event) interface{} {
	switch ev.Type {
	case service.EventFinished:
		msg := ws.FinishedResponse{Event: ws.EventFinished, SessionID: ev.SessionID}
		if ev.Status != nil {
			msg.Status = *ev.Status
		}
		if ev.Result != nil {
			msg.Result = *ev.Result
		}
		return msg
	case service.EventReset:
		return ws.ResetResponse{Event: ws.EventReset, SessionID: ev.SessionID}
	}

	event := ws.EventTick
	if ev.Type == service.EventStarted {
		event = ws.EventStarted
	}
	msg := ws.StatusResponse{Event: event, SessionID: ev.SessionID}
	if ev.Status != nil {
		msg.Status = *ev.Status
	}
	return msg
}
