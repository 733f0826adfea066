package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/exstem-practice/internal/config"
	"github.com/stemsi/exstem-practice/internal/handler"
	"github.com/stemsi/exstem-practice/internal/middleware"
	"github.com/stemsi/exstem-practice/internal/response"
)

// bankCacheSeconds is how long clients may reuse bank reads.
const bankCacheSeconds = 30

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Bank    *handler.BankHandler
	Session *handler.SessionHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures the Gin routes and global middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// AllowedOrigins restricts browsers to that list; empty allows all.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.BrotliWith(middleware.BrotliOptions{
		MinSize:       middleware.DefaultBrotliOptions.MinSize,
		ExcludedPaths: []string{"/ws/"},
	}))

	router.GET("/health", handlers.System.Health)

	// ─── 1. Bank ───────────────────────────────────────────────────────
	bank := router.Group("/api/v1/bank")
	{
		bank.GET("", middleware.CacheControl(bankCacheSeconds), handlers.Bank.Preview)
		bank.GET("/weighted", middleware.CacheControl(bankCacheSeconds), handlers.Bank.Weighted)
		bank.GET("/export", handlers.Bank.Export)
		bank.POST("/reload", handlers.Bank.Reload)
	}

	// ─── 2. Session ────────────────────────────────────────────────────
	session := router.Group("/api/v1/session")
	session.Use(middleware.NoStore())
	{
		session.POST("", handlers.Session.Start)
		session.GET("", handlers.Session.Current)
		session.DELETE("", handlers.Session.Reset)
		session.GET("/questions/:position", handlers.Session.Navigate)
		session.POST("/questions/:position/answer", handlers.Session.Submit)
		session.POST("/next", handlers.Session.Next)
		session.POST("/finish", handlers.Session.Finish)
		session.GET("/result", handlers.Session.Result)
	}

	// ─── 3. System ─────────────────────────────────────────────────────
	router.GET("/api/v1/system/metrics", handlers.System.MetricsSSE)

	// ─── 4. WebSocket ──────────────────────────────────────────────────
	router.GET("/ws/v1/session/stream", handlers.WS.SessionStream)

	return router
}
