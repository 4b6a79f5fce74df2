package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/ics"
)

// GetSchedule handles GET /api/employees/:id/schedule?date=.
func (h *Handler) GetSchedule(c *gin.Context) {
	date, ok := h.dateQuery(c)
	if !ok {
		return
	}

	view, err := h.schedule.Day(c.Request.Context(), h.schedule.Context(c.Param("id"), date))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetScheduleICS handles GET /api/employees/:id/schedule/ics?date=.
func (h *Handler) GetScheduleICS(c *gin.Context) {
	date, ok := h.dateQuery(c)
	if !ok {
		return
	}

	sc := h.schedule.Context(c.Param("id"), date)
	day, err := h.schedule.Calendar(c.Request.Context(), sc)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	err = ics.Encode(&buf, day)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.ics"`, sc.EmployeeID, date.Format("2006-01-02")))
	c.Header("Last-Modified", sc.Now.UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}
