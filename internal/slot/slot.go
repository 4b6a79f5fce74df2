// Package slot defines the unit of schedulability and the canonical day grid.
package slot

import "github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"

// TypeMeeting tags slots occupied by a booked meeting.
const TypeMeeting = "meeting"

// Slot is one bookable unit of a working day.
type Slot struct {
	Minute      int    `json:"minute"` // minutes since midnight, the join key
	Time        string `json:"time"`   // "09:30 AM", derived from Minute
	Available   bool   `json:"available"`
	Booked      bool   `json:"booked"`
	Reason      string `json:"reason,omitempty"`
	Person      string `json:"person,omitempty"`
	MeetingLink string `json:"meetingLink,omitempty"`
	Type        string `json:"type,omitempty"`
}

// New returns an available slot starting at minute.
func New(minute int) Slot {
	return Slot{
		Minute:    minute,
		Time:      parse.FormatDisplay(minute),
		Available: true,
	}
}

// Valid reports whether the slot's start falls inside a day.
func (s Slot) Valid() bool {
	return s.Minute >= 0 && s.Minute < parse.MinutesPerDay
}

// Clone returns a copy of slots that shares no backing array with the input.
func Clone(slots []Slot) []Slot {
	if slots == nil {
		return nil
	}
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}
