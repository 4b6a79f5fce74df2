// Package merge overlays availability records and booked meetings onto the slot grid.
package merge

import (
	"time"

	"go.uber.org/zap"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
)

// Engine merges the three schedule sources for one day. Precedence is
// meeting > availability record > default available.
type Engine struct {
	loc    *time.Location
	logger *zap.Logger
}

// NewEngine creates an engine that reads wall-clock times in loc.
func NewEngine(loc *time.Location, logger *zap.Logger) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{loc: loc, logger: logger}
}

// Location returns the engine's wall-clock location.
func (e *Engine) Location() *time.Location {
	return e.loc
}

type booking struct {
	meetingID string
	title     string
	person    string
	link      string
}

// RecordIndex groups records on date by the minute their window starts, preserving input
// order. Records with unusable start times or on other days are dropped.
func (e *Engine) RecordIndex(records []model.AvailabilityRecord, date time.Time) map[int][]model.AvailabilityRecord {
	index := make(map[int][]model.AvailabilityRecord, len(records))
	for _, r := range records {
		minute, ok := parse.MinuteOfDay(r.StartTime, e.loc)
		if !ok {
			e.logger.Debug("dropping availability record with malformed start time", zap.String("record_id", r.ID))
			continue
		}
		if !parse.SameDay(r.StartTime, date, e.loc) {
			e.logger.Debug("dropping availability record outside target date",
				zap.String("record_id", r.ID), zap.Time("start_time", r.StartTime))
			continue
		}
		index[minute] = append(index[minute], r)
	}
	return index
}

func (e *Engine) bookingIndex(meetings []model.Meeting, date time.Time) map[int]booking {
	index := make(map[int]booking)
	for _, m := range meetings {
		for _, ts := range m.TimeSlots {
			if !parse.SameDay(ts.Date, date, e.loc) {
				continue
			}
			minute, ok := parse.MinuteOfDay(ts.StartTime, e.loc)
			if !ok {
				e.logger.Debug("dropping meeting time slot with malformed start time", zap.String("meeting_id", m.ID))
				continue
			}
			if existing, taken := index[minute]; taken {
				// Conflicts should have been rejected when the meeting was created.
				e.logger.Warn("meetings collide on the same slot, keeping the first",
					zap.String("time", parse.FormatDisplay(minute)),
					zap.String("kept_meeting_id", existing.meetingID),
					zap.String("dropped_meeting_id", m.ID))
				continue
			}
			b := booking{meetingID: m.ID, title: m.Title, person: m.Host.Name}
			if m.IsVirtual {
				b.link = m.Location
			}
			index[minute] = b
		}
	}
	return index
}

// Merge returns a copy of grid with bookings and availability records for date applied.
// The result has the grid's length and order. Nil or empty datasets leave slots untouched.
func (e *Engine) Merge(grid []slot.Slot, records []model.AvailabilityRecord, meetings []model.Meeting, date time.Time) []slot.Slot {
	out := slot.Clone(grid)
	if len(out) == 0 {
		return out
	}

	recordsAt := e.RecordIndex(records, date)
	bookingsAt := e.bookingIndex(meetings, date)

	for i := range out {
		s := &out[i]
		if b, ok := bookingsAt[s.Minute]; ok {
			s.Available = false
			s.Booked = true
			s.Reason = b.title
			s.Person = b.person
			s.MeetingLink = b.link
			s.Type = slot.TypeMeeting
			continue
		}
		if rs, ok := recordsAt[s.Minute]; ok {
			r := rs[0]
			s.Available = r.Status != model.StatusUnavailable
			s.Booked = false
			s.Reason = r.Reason
		}
	}
	return out
}
