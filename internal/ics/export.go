// Package ics renders a merged day as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
)

const productID = "-//workplace-management-system//schedule//EN"

// Day describes the merged slots of one employee's day.
type Day struct {
	EmployeeID string
	Date       time.Time
	Slots      []slot.Slot
	Interval   time.Duration  // length of one slot
	Location   *time.Location // wall clock the slot minutes are in
	Stamp      time.Time      // DTSTAMP for every event
}

// block is a run of adjacent slots sharing the same state.
type block struct {
	first slot.Slot
	start int
	end   int
}

func sameState(a, b slot.Slot) bool {
	return a.Available == b.Available && a.Booked == b.Booked && a.Reason == b.Reason &&
		a.Person == b.Person && a.MeetingLink == b.MeetingLink
}

// blocks groups busy slots into contiguous runs. Available slots produce no events.
func blocks(slots []slot.Slot, interval int) []block {
	var out []block
	for _, s := range slots {
		if s.Available || !s.Valid() {
			continue
		}
		if n := len(out); n > 0 && out[n-1].end == s.Minute && sameState(out[n-1].first, s) {
			out[n-1].end = s.Minute + interval
			continue
		}
		out = append(out, block{first: s, start: s.Minute, end: s.Minute + interval})
	}
	return out
}

// Calendar builds a VCALENDAR with one VEVENT per busy block.
func Calendar(d Day) *ical.Calendar {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	interval := int(d.Interval / time.Minute)
	if interval <= 0 {
		interval = 30
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, b := range blocks(d.Slots, interval) {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s-%04d@schedule",
			d.EmployeeID, d.Date.In(loc).Format("20060102"), b.start))
		event.Props.SetDateTime(ical.PropDateTimeStamp, d.Stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, parse.At(d.Date, b.start, loc).UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, parse.At(d.Date, b.end, loc).UTC())

		if b.first.Booked {
			event.Props.SetText(ical.PropSummary, b.first.Reason)
			event.Props.SetText(ical.PropCategories, "MEETING")
			if b.first.Person != "" {
				event.Props.SetText(ical.PropDescription, "Hosted by "+b.first.Person)
			}
			if b.first.MeetingLink != "" {
				event.Props.SetText(ical.PropLocation, b.first.MeetingLink)
			}
		} else {
			summary := b.first.Reason
			if summary == "" {
				summary = "Unavailable"
			}
			event.Props.SetText(ical.PropSummary, summary)
			event.Props.SetText(ical.PropCategories, "UNAVAILABLE")
			event.Props.SetText(ical.PropTransparency, "OPAQUE")
		}
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// Encode writes the day's calendar to w.
func Encode(w io.Writer, d Day) error {
	if err := ical.NewEncoder(w).Encode(Calendar(d)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
