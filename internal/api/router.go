package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/mw"
)

// RouterConfig tunes the middleware in front of the API.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration

	// Limiter is shared with the caller so it can sweep idle clients. When nil one is built
	// from RateLimitPerSec and RateLimitBurst.
	Limiter *mw.IPRateLimiter
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 10
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}

	if cfg.Limiter == nil {
		cfg.Limiter = mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	}
	rateLimiter := cfg.Limiter.Middleware()
	caching := mw.Cache(h.cache, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/availability", caching, h.GetAvailability)
		api.POST("/availability", h.PostAvailability)
		api.DELETE("/availability/:id", h.DeleteAvailability)

		api.GET("/meetings/user/:userId", caching, h.GetMeetingsForUser)

		api.GET("/employees/:id/schedule", h.GetSchedule)
		api.GET("/employees/:id/schedule/ics", h.GetScheduleICS)
		api.POST("/employees/:id/sessions", h.OpenSession)

		sessions := api.Group("/sessions/:sid")
		sessions.GET("", h.GetSession())
		sessions.DELETE("", h.CancelSession)
		sessions.PUT("/date", h.RetargetSession)
		sessions.POST("/toggle", h.ToggleSlot())
		sessions.POST("/available", h.MarkAvailable())
		sessions.POST("/unavailable", h.RequestUnavailable())
		sessions.PUT("/prompt/reason", h.SetPromptReason())
		sessions.POST("/prompt/confirm", h.ConfirmPrompt())
		sessions.POST("/prompt/cancel", h.CancelPrompt())
		sessions.POST("/save", h.SaveSession)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
