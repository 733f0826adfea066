package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/engine"
	"github.com/stemsi/exstem-practice/internal/model"
	"github.com/stemsi/exstem-practice/internal/response"
	"github.com/stemsi/exstem-practice/internal/service"
	"github.com/stemsi/exstem-practice/internal/validator"
)

// SessionHandler drives the practice session. Positions in paths and
// payloads are 0-based.
type SessionHandler struct {
	practice *service.PracticeService
	log      zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(practice *service.PracticeService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		practice: practice,
		log:      log.With().Str("component", "session_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/session
// Draws the questions and starts the timer. Replaces any current session.
func (h *SessionHandler) Start(c *gin.Context) {
	var req model.StartSessionRequest
	if errs := validator.Bind(c, &req); errs != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, errs)
		return
	}

	res, err := h.practice.Start(engine.Plan{
		RangeStart:       req.RangeStart,
		RangeEnd:         req.RangeEnd,
		Count:            req.QuestionCount,
		TimeLimit:        time.Duration(req.TimeLimitMinutes) * time.Minute,
		RandomizeOptions: req.RandomizeOptions,
	})
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, res)
}

// Current godoc
// GET /api/v1/session
// Returns the question at the current position and the session status.
func (h *SessionHandler) Current(c *gin.Context) {
	snap, err := h.practice.Current()
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, snap)
}

// Navigate godoc
// GET /api/v1/session/questions/:position
// Jumps to a question. Answered questions come back locked.
func (h *SessionHandler) Navigate(c *gin.Context) {
	position, ok := positionParam(c)
	if !ok {
		return
	}

	view, err := h.practice.Navigate(position)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// Next godoc
// POST /api/v1/session/next
// Advances one question; at_end is set when already on the last one.
func (h *SessionHandler) Next(c *gin.Context) {
	res, err := h.practice.Next()
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// Submit godoc
// POST /api/v1/session/questions/:position/answer
// Records the selected presentation slots and returns immediate feedback.
func (h *SessionHandler) Submit(c *gin.Context) {
	position, ok := positionParam(c)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if errs := validator.Bind(c, &req); errs != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, errs)
		return
	}

	fb, err := h.practice.Submit(position, req.Selections)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, fb)
}

// Finish godoc
// POST /api/v1/session/finish
// Ends the session and returns the score. The body is optional.
func (h *SessionHandler) Finish(c *gin.Context) {
	var req model.FinishSessionRequest
	if c.Request.ContentLength > 0 {
		if errs := validator.Bind(c, &req); errs != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, errs)
			return
		}
	}

	res, err := h.practice.Finish(engine.FinishReason(req.Reason))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// Result godoc
// GET /api/v1/session/result
// Returns the score of a finished session.
func (h *SessionHandler) Result(c *gin.Context) {
	res, err := h.practice.Result()
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// Reset godoc
// DELETE /api/v1/session
// Discards the session, finished or not.
func (h *SessionHandler) Reset(c *gin.Context) {
	if err := h.practice.Reset(); err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Session reset"})
}

func positionParam(c *gin.Context) (int, bool) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidParameter, map[string]string{
			"position": "position must be an integer",
		})
		return 0, false
	}
	return position, true
}
