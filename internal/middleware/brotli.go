package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliOptions tunes the Brotli middleware.
type BrotliOptions struct {
	// Level is the brotli quality, 0 to 11.
	Level int
	// MinSize is the body size below which responses go out uncompressed.
	MinSize int
	// ExcludedPaths are path prefixes that are never compressed.
	ExcludedPaths []string
}

var DefaultBrotliOptions = BrotliOptions{
	Level:   brotli.DefaultCompression,
	MinSize: 1024,
}

// brotliWriter holds the body back until it either reaches MinSize, at
// which point it switches to brotli, or the handler finishes.
type brotliWriter struct {
	gin.ResponseWriter
	enc     *brotli.Writer
	pending []byte
	minSize int
	level   int
	mode    writeMode
}

type writeMode int

const (
	modeUndecided writeMode = iota
	modeCompress
	modePlain
)

func (w *brotliWriter) Write(data []byte) (int, error) {
	switch w.mode {
	case modeCompress:
		return w.enc.Write(data)
	case modePlain:
		return w.ResponseWriter.Write(data)
	}

	w.pending = append(w.pending, data...)
	if len(w.pending) < w.minSize {
		return len(data), nil
	}
	if err := w.startCompression(); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush commits to plain output if nothing has been compressed yet, so
// streaming handlers see their bytes immediately.
func (w *brotliWriter) Flush() {
	switch w.mode {
	case modeCompress:
		_ = w.enc.Flush()
	case modeUndecided:
		_ = w.release()
	}
	w.ResponseWriter.Flush()
}

func (w *brotliWriter) startCompression() error {
	h := w.ResponseWriter.Header()
	if h.Get("Content-Encoding") != "" {
		return w.release()
	}
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	w.mode = modeCompress
	w.enc = brotli.NewWriterLevel(w.ResponseWriter, w.level)
	_, err := w.enc.Write(w.pending)
	w.pending = nil
	return err
}

// release writes whatever is pending uncompressed.
func (w *brotliWriter) release() error {
	w.mode = modePlain
	if len(w.pending) == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.pending)
	w.pending = nil
	return err
}

func (w *brotliWriter) close() error {
	if w.mode == modeCompress {
		return w.enc.Close()
	}
	return w.release()
}

// Brotli compresses responses with the default options.
func Brotli() gin.HandlerFunc {
	return BrotliWith(DefaultBrotliOptions)
}

// BrotliWith compresses responses for clients that accept "br".
func BrotliWith(opts BrotliOptions) gin.HandlerFunc {
	if opts.Level < brotli.BestSpeed || opts.Level > brotli.BestCompression {
		opts.Level = brotli.DefaultCompression
	}
	if opts.MinSize <= 0 {
		opts.MinSize = DefaultBrotliOptions.MinSize
	}

	return func(c *gin.Context) {
		if !compressible(c, opts.ExcludedPaths) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		w := &brotliWriter{
			ResponseWriter: c.Writer,
			minSize:        opts.MinSize,
			level:          opts.Level,
		}
		c.Writer = w

		defer func() {
			if err := w.close(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

func compressible(c *gin.Context, excluded []string) bool {
	// WebSocket handshakes and event streams must pass through unbuffered.
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return false
	}
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return false
	}
	for _, prefix := range excluded {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			return false
		}
	}
	return acceptsBrotli(c.Request)
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
