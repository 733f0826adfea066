package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/engine"
	"github.com/stemsi/exstem-practice/internal/response"
	"github.com/stemsi/exstem-practice/internal/service"
)

// failWithError maps service and engine errors onto the response envelope.
// Anything unrecognized is logged and reported as an internal error.
func failWithError(c *gin.Context, log zerolog.Logger, err error) {
	var re *engine.RangeError
	switch {
	case errors.As(err, &re):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrRange, map[string]string{re.Field: re.Error()})
	case errors.Is(err, engine.ErrEmptySelection):
		response.Fail(c, http.StatusBadRequest, response.ErrEmptySelection)
	case errors.Is(err, engine.ErrAlreadyAnswered):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyAnswered)
	case errors.Is(err, engine.ErrSessionFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionFinished)
	case errors.Is(err, engine.ErrSessionInProgress):
		response.Fail(c, http.StatusConflict, response.ErrSessionInProgress)
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	case errors.Is(err, service.ErrBankEmpty):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrBankEmpty)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
