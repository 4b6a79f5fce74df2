// Package policy decides whether a date or slot may still be edited.
package policy

import (
	"time"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
)

// DefaultCutoff is the end of the working day, in minutes since midnight.
const DefaultCutoff = 18 * 60

// EditWindow evaluates edit-window rules against an injected clock.
type EditWindow struct {
	Now      func() time.Time
	Cutoff   int // minutes since midnight after which today is closed
	Location *time.Location
}

// NewEditWindow returns a window using now, the given cutoff and loc.
// A nil now falls back to time.Now and a nil loc to time.Local.
func NewEditWindow(now func() time.Time, cutoff int, loc *time.Location) *EditWindow {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &EditWindow{Now: now, Cutoff: cutoff, Location: loc}
}

type dayRelation int

const (
	dayPast dayRelation = iota
	dayToday
	dayFuture
)

func (w *EditWindow) relate(date, now time.Time) dayRelation {
	d := parse.TruncateToDay(date, w.Location)
	today := parse.TruncateToDay(now, w.Location)
	switch {
	case d.Before(today):
		return dayPast
	case d.Equal(today):
		return dayToday
	default:
		return dayFuture
	}
}

// CanEditDate reports whether date's schedule may be changed. Today stays open up to and
// including the cutoff instant.
func (w *EditWindow) CanEditDate(date time.Time) bool {
	now := w.Now()
	switch w.relate(date, now) {
	case dayPast:
		return false
	case dayToday:
		cutoff := parse.At(now, w.Cutoff, w.Location)
		return !now.After(cutoff)
	default:
		return true
	}
}

// CanEditSlot reports whether s on date may be changed. On today the slot must start
// strictly after now.
func (w *EditWindow) CanEditSlot(s slot.Slot, date time.Time) bool {
	if !s.Valid() {
		return false
	}
	now := w.Now()
	switch w.relate(date, now) {
	case dayPast:
		return false
	case dayToday:
		return parse.At(date, s.Minute, w.Location).After(now)
	default:
		return true
	}
}

// IsSlotInPast reports whether s on date has already started. Used for display only, so a
// slot starting exactly now counts as past.
func (w *EditWindow) IsSlotInPast(s slot.Slot, date time.Time) bool {
	if !s.Valid() {
		return false
	}
	now := w.Now()
	switch w.relate(date, now) {
	case dayPast:
		return true
	case dayToday:
		return !parse.At(date, s.Minute, w.Location).After(now)
	default:
		return false
	}
}
