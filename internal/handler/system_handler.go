package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/engine"
	"github.com/stemsi/exstem-practice/internal/response"
	"github.com/stemsi/exstem-practice/internal/service"
)

const metricsInterval = 5 * time.Second

// SystemHandler reports process health and streams runtime metrics via SSE.
type SystemHandler struct {
	bank      *service.BankService
	practice  *service.PracticeService
	rdb       *redis.Client // nil unless the bank lives in Redis
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. rdb may be nil.
func NewSystemHandler(bank *service.BankService, practice *service.PracticeService, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		bank:      bank,
		practice:  practice,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Bank and session
	BankQuestions int            `json:"bank_questions"`
	BankLoadedAt  string         `json:"bank_loaded_at,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	Session       *engine.Status `json:"session,omitempty"`

	// Go Application
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	HeapSys     uint64 `json:"heap_sys"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes,omitempty"`
	GoVersion   string `json:"go_version"`

	// Redis round trip, when configured
	RedisPingMillis *int64 `json:"redis_ping_ms,omitempty"`
}

// Health godoc
// GET /health
// Reports whether a bank is loaded and the id of the active session.
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if h.bank.Len() == 0 {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	response.Success(c, code, gin.H{
		"status":         status,
		"bank_questions": h.bank.Len(),
		"session_id":     h.practice.SessionID(),
		"uptime":         formatDuration(time.Since(h.startTime)),
	})
}

// MetricsSSE godoc
// GET /api/v1/system/metrics
// Streams runtime, bank and session metrics as server-sent events.
func (h *SystemHandler) MetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Client connected to metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Client disconnected from metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	m := h.collect(c.Request.Context())
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	m := systemMetrics{
		Timestamp:     time.Now().Unix(),
		Uptime:        formatDuration(time.Since(h.startTime)),
		GoVersion:     runtime.Version(),
		BankQuestions: h.bank.Len(),
		SessionID:     h.practice.SessionID(),
	}
	if at := h.bank.LoadedAt(); !at.IsZero() {
		m.BankLoadedAt = at.UTC().Format(time.RFC3339)
	}
	if st, err := h.practice.Status(); err == nil {
		m.Session = &st
	}

	// ── Go Runtime ──
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.HeapSys = ms.Sys
	m.NumGC = ms.NumGC
	m.AppRSSBytes, _ = readProcessRSS()

	// ── Redis ──
	if h.rdb != nil {
		start := time.Now()
		if err := h.rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			m.RedisPingMillis = &ms
		}
	}

	return m
}

// readProcessRSS reads VmRSS from /proc; it fails off Linux.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				break
			}
			kb, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return 0, err
			}
			return kb * 1024, nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
