package upstream

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
)

// envelope is the response body shape of the scheduling API.
type envelope[T any] struct {
	Data T `json:"data"`
}

type upsertRequest struct {
	EmployeeID string            `json:"employeeId"`
	Slots      []model.SlotInput `json:"slots"`
}

// Timestamps stay strings until parsed so one bad value only drops its own entry.
type wireRecord struct {
	ID         string `json:"_id"`
	EmployeeID string `json:"employeeId"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Status     string `json:"status"`
	Reason     string `json:"reason"`
}

func (w wireRecord) record(loc *time.Location) (model.AvailabilityRecord, error) {
	start, err := parse.Timestamp(w.StartTime, loc)
	if err != nil {
		return model.AvailabilityRecord{}, fmt.Errorf("start time: %w", err)
	}
	r := model.AvailabilityRecord{
		ID:         w.ID,
		EmployeeID: w.EmployeeID,
		StartTime:  start,
		Status:     model.AvailabilityStatus(w.Status),
		Reason:     w.Reason,
	}
	// A missing end time does not affect the merge.
	if end, err := parse.Timestamp(w.EndTime, loc); err == nil {
		r.EndTime = end
	}
	return r, nil
}

type wireMeeting struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Host  struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"host"`
	IsVirtual bool   `json:"isVirtual"`
	Location  string `json:"location"`
	TimeSlots []struct {
		Date      string `json:"date"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	} `json:"timeSlots"`
}

func (w wireMeeting) meeting(loc *time.Location, logger *zap.Logger) model.Meeting {
	m := model.Meeting{
		ID:        w.ID,
		Title:     w.Title,
		Host:      model.MeetingHost{ID: w.Host.ID, Name: w.Host.Name},
		IsVirtual: w.IsVirtual,
		Location:  w.Location,
	}
	for _, ts := range w.TimeSlots {
		date, dErr := parse.Timestamp(ts.Date, loc)
		start, sErr := parse.Timestamp(ts.StartTime, loc)
		if err := multierr.Combine(dErr, sErr); err != nil {
			logger.Debug("dropping malformed meeting time slot", zap.String("meeting_id", w.ID), zap.Error(err))
			continue
		}
		slot := model.MeetingTimeSlot{MeetingID: w.ID, Date: date, StartTime: start}
		if end, err := parse.Timestamp(ts.EndTime, loc); err == nil {
			slot.EndTime = end
		}
		m.TimeSlots = append(m.TimeSlots, slot)
	}
	return m
}
