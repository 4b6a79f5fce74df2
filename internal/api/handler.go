package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/service"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/session"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/upstream"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	availability  store.AvailabilityStore
	meetings      store.MeetingStore
	subscriptions store.SubscriptionStore
	schedule      *service.Service
	webpush       *webpush.Options
	cache         *cache.Cache
	logger        *zap.Logger
}

// Deps are the collaborators a Handler serves. Subscriptions and Webpush may be nil.
type Deps struct {
	Availability  store.AvailabilityStore
	Meetings      store.MeetingStore
	Subscriptions store.SubscriptionStore
	Schedule      *service.Service
	Webpush       *webpush.Options
	Cache         *cache.Cache
	Logger        *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Cache == nil {
		d.Cache = cache.New(time.Minute, 2*time.Minute)
	}
	return &Handler{
		availability:  d.Availability,
		meetings:      d.Meetings,
		subscriptions: d.Subscriptions,
		schedule:      d.Schedule,
		webpush:       d.Webpush,
		cache:         d.Cache,
		logger:        d.Logger,
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var se *upstream.StatusError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput), errors.Is(err, session.ErrInvalidIndex):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrDateClosed):
		return http.StatusForbidden
	case errors.Is(err, session.ErrNotEditing),
		errors.Is(err, session.ErrPromptOpen),
		errors.Is(err, session.ErrNoPrompt),
		errors.Is(err, session.ErrNoSelection),
		errors.Is(err, session.ErrSessionExists):
		return http.StatusConflict
	case errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// dateQuery reads the "date" query parameter, defaulting to today.
func (h *Handler) dateQuery(c *gin.Context) (time.Time, bool) {
	loc := h.schedule.Location()
	raw := c.Query("date")
	if raw == "" {
		return parse.TruncateToDay(h.schedule.Now(), loc), true
	}
	date, err := parse.Date(raw, loc)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, false
	}
	return date, true
}
