package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-practice/internal/config"
	"github.com/stemsi/exstem-practice/internal/handler"
	"github.com/stemsi/exstem-practice/internal/repository"
	"github.com/stemsi/exstem-practice/internal/service"
)

const bankJSON = `[
  {"question": "2 + 2?", "options": ["3", "4"], "answer": "B"},
  {"question": "Capital of France?", "options": ["Paris", "Rome"], "answer": 1, "weight": 2}
]`

func newRouter(t *testing.T, origins []string) http.Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, os.WriteFile(path, []byte(bankJSON), 0o600))

	log := zerolog.Nop()
	bank := service.NewBankService(repository.NewFileBankSource(path), log)
	require.NoError(t, bank.Load(context.Background()))
	practice := service.NewPracticeService(bank, time.Minute, log)

	cfg := &config.Config{GinMode: "test", AllowedOrigins: origins}
	return SetupRouter(&Handlers{
		Bank:    handler.NewBankHandler(bank, log),
		Session: handler.NewSessionHandler(practice, log),
		WS:      handler.NewWSHandler(practice, log, origins),
		System:  handler.NewSystemHandler(bank, practice, nil, log),
	}, cfg)
}

func serve(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_Routes(t *testing.T) {
	r := newRouter(t, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/bank", http.StatusOK},
		{http.MethodGet, "/api/v1/bank/weighted", http.StatusOK},
		{http.MethodGet, "/api/v1/bank/export", http.StatusOK},
		{http.MethodGet, "/api/v1/session", http.StatusNotFound},
		{http.MethodGet, "/api/v1/session/result", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/session", http.StatusNotFound},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := serve(r, tt.method, tt.path, nil)
		assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestSetupRouter_Headers(t *testing.T) {
	r := newRouter(t, []string{"http://localhost:5173"})

	w := serve(r, http.MethodGet, "/api/v1/bank", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "private, max-age=30", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
