package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/session"
)

// OpenSession handles POST /api/employees/:id/sessions?date=.
func (h *Handler) OpenSession(c *gin.Context) {
	date, ok := h.dateQuery(c)
	if !ok {
		return
	}

	sess, err := h.schedule.OpenSession(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.schedule.ViewSession(sess))
}

// withSession resolves :sid, runs fn and renders the session afterwards.
func (h *Handler) withSession(fn func(c *gin.Context, sess *session.Session) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := h.schedule.Session(c.Param("sid"))
		if err != nil {
			h.fail(c, err)
			return
		}
		if err := fn(c, sess); err != nil {
			if !c.IsAborted() {
				h.fail(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, h.schedule.ViewSession(sess))
	}
}

// GetSession handles GET /api/sessions/:sid.
func (h *Handler) GetSession() gin.HandlerFunc {
	return h.withSession(func(c *gin.Context, sess *session.Session) error { return nil })
}

type toggleRequest struct {
	Index *int `json:"index" binding:"required"`
}

// ToggleSlot handles POST /api/sessions/:sid/toggle.
func (h *Handler) ToggleSlot() gin.HandlerFunc {
	return h.withSession(func(c *gin.Context, sess *session.Session) error {
		var req toggleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return err
		}
		_, err := sess.Toggle(*req.Index)
		return err
	})
}

// MarkAvailable handles POST /api/sessions/:sid/available.
func (h *Handler) MarkAvailable() gin.HandlerFunc {
	return h.withSession(func(c *gin.Context, sess *session.Session) error {
		return sess.MarkAvailable()
	})
}

// RequestUnavailable handles POST /api/sessions/:sid/unavailable.
func (h *Handler) RequestUnavailable() gin.HandlerFunc {
	return h.withSession(func(c *gin.Context, sess *session.Session) error {
		return sess.RequestUnavailable()
	})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// SetPromptReason handles PUT /api/sessions/:sid/prompt/reason.
func (h *Handler) SetPromptReason() gin.HandlerFunc {
	return h.withSession(func(c *gin.Context, sess *session.Session) error {
		var req reasonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return err
		}
		return sess.SetPendingReason(req.Reason)
	})
}

// ConfirmPrompt handles POST /api/sessions/:sid/prompt/confirm. The body is optional.
func (h *Handler) ConfirmPrompt() gin.HandlerFunc {
	return h.withSession(func(c *gin.Context, sess *session.Session) error {
		var req reasonRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return err
			}
		}
		return sess.ConfirmPrompt(req.Reason)
	})
}

// CancelPrompt handles POST /api/sessions/:sid/prompt/cancel.
func (h *Handler) CancelPrompt() gin.HandlerFunc {
	return h.withSession(func(c *gin.Context, sess *session.Session) error {
		return sess.CancelPrompt()
	})
}

// RetargetSession handles PUT /api/sessions/:sid/date?date=.
func (h *Handler) RetargetSession(c *gin.Context) {
	date, err := parse.Date(c.Query("date"), h.schedule.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.schedule.RetargetSession(c.Request.Context(), c.Param("sid"), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.schedule.ViewSession(sess))
}

// SaveSession handles POST /api/sessions/:sid/save.
func (h *Handler) SaveSession(c *gin.Context) {
	res, err := h.schedule.SaveSession(c.Request.Context(), c.Param("sid"))
	if res != nil {
		h.invalidateAvailability()
	}
	if err != nil && res == nil {
		h.fail(c, err)
		return
	}
	if err != nil {
		// Writes that succeeded are not rolled back; the session stays open for a retry.
		failures := make([]string, 0)
		for _, e := range multierr.Errors(err) {
			failures = append(failures, e.Error())
		}
		h.logger.Warn("availability save incomplete", zap.String("session_id", c.Param("sid")), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":    "availability sync incomplete",
			"failures": failures,
			"deleted":  res.Deleted,
			"upserted": res.Upserted,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted":  res.Deleted,
		"upserted": res.Upserted,
		"records":  res.Records,
	})
}

// CancelSession handles DELETE /api/sessions/:sid.
func (h *Handler) CancelSession(c *gin.Context) {
	if err := h.schedule.CancelSession(c.Param("sid")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
