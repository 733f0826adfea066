package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/model"
	"github.com/stemsi/exstem-practice/internal/response"
	"github.com/stemsi/exstem-practice/internal/service"
	"github.com/stemsi/exstem-practice/internal/validator"
)

const defaultPerPage = 20

// BankHandler exposes the loaded question bank.
type BankHandler struct {
	bank *service.BankService
	log  zerolog.Logger
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bank *service.BankService, log zerolog.Logger) *BankHandler {
	return &BankHandler{
		bank: bank,
		log:  log.With().Str("component", "bank_handler").Logger(),
	}
}

// Preview godoc
// GET /api/v1/bank
// Lists the bank with canonical option and answer labels. Pagination
// applies when page or per_page is given.
func (h *BankHandler) Preview(c *gin.Context) {
	var q model.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidParameter, validator.TranslateErrors(err))
		return
	}

	items := h.bank.Preview()
	if len(items) == 0 {
		failWithError(c, h.log, service.ErrBankEmpty)
		return
	}
	loadedAt := h.bank.LoadedAt().UTC().Format(time.RFC3339)

	if q.Page == 0 && q.PerPage == 0 {
		response.Success(c, http.StatusOK, gin.H{"loaded_at": loadedAt, "questions": items})
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = defaultPerPage
	}

	pagination := response.NewPagination(q.Page, q.PerPage, len(items))
	from, to := pagination.Bounds()
	response.SuccessWithPagination(c, http.StatusOK, gin.H{
		"loaded_at": loadedAt,
		"questions": items[from:to],
	}, pagination)
}

// Weighted godoc
// GET /api/v1/bank/weighted
// Lists the questions of a range that are drawn more often than the default.
func (h *BankHandler) Weighted(c *gin.Context) {
	var q model.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidParameter, validator.TranslateErrors(err))
		return
	}

	items, err := h.bank.Weighted(q.RangeStart, q.RangeEnd)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": items})
}

// Export godoc
// GET /api/v1/bank/export
// Downloads the normalized bank as canonical JSON.
func (h *BankHandler) Export(c *gin.Context) {
	data, err := h.bank.Export()
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Attachment(c, "questions.json", "application/json", data)
}

// Reload godoc
// POST /api/v1/bank/reload
// Re-reads the bank from its source. A failed reload keeps the current bank.
func (h *BankHandler) Reload(c *gin.Context) {
	if err := h.bank.Load(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Bank reload failed")
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, map[string]string{"detail": err.Error()})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": h.bank.Len()})
}
