package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/mw"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
)

// GetAvailability handles GET /api/availability?employeeId=&date=.
func (h *Handler) GetAvailability(c *gin.Context) {
	employeeID := c.Query("employeeId")
	if employeeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employeeId is required"})
		return
	}
	date, err := parse.Date(c.Query("date"), h.schedule.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.availability.ListAvailability(c.Request.Context(), employeeID, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []model.AvailabilityRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

type postAvailabilityRequest struct {
	EmployeeID string            `json:"employeeId" binding:"required"`
	Slots      []model.SlotInput `json:"slots" binding:"required,dive"`
}

// PostAvailability handles POST /api/availability with a batch of unavailable windows.
func (h *Handler) PostAvailability(c *gin.Context) {
	var req postAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.availability.UpsertAvailability(c.Request.Context(), req.EmployeeID, req.Slots)
	h.invalidateAvailability()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"count": len(req.Slots)})
}

// DeleteAvailability handles DELETE /api/availability/:id.
func (h *Handler) DeleteAvailability(c *gin.Context) {
	err := h.availability.DeleteAvailability(c.Request.Context(), c.Param("id"))
	h.invalidateAvailability()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) invalidateAvailability() {
	mw.Invalidate(h.cache, "/api/availability")
}

// GetMeetingsForUser handles GET /api/meetings/user/:userId.
func (h *Handler) GetMeetingsForUser(c *gin.Context) {
	meetings, err := h.meetings.ListMeetingsForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if meetings == nil {
		meetings = []model.Meeting{}
	}
	c.JSON(http.StatusOK, gin.H{"data": meetings})
}
