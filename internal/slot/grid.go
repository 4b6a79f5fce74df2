package slot

import (
	"fmt"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
)

// GridConfig describes the working day the grid covers.
type GridConfig struct {
	StartHour       int
	StartMinute     int
	EndHour         int
	EndMinute       int
	IntervalMinutes int
}

// DefaultGrid is 09:30 to 18:00 in 30 minute steps.
func DefaultGrid() GridConfig {
	return GridConfig{
		StartHour:       9,
		StartMinute:     30,
		EndHour:         18,
		EndMinute:       0,
		IntervalMinutes: 30,
	}
}

// GridFromClock builds a GridConfig from "HH:MM" bounds.
func GridFromClock(start, end string, interval int) (GridConfig, error) {
	s, err := parse.ClockTime(start)
	if err != nil {
		return GridConfig{}, fmt.Errorf("day start: %w", err)
	}
	e, err := parse.ClockTime(end)
	if err != nil {
		return GridConfig{}, fmt.Errorf("day end: %w", err)
	}
	if interval <= 0 {
		return GridConfig{}, fmt.Errorf("interval must be positive, got %d", interval)
	}
	return GridConfig{
		StartHour:       s / 60,
		StartMinute:     s % 60,
		EndHour:         e / 60,
		EndMinute:       e % 60,
		IntervalMinutes: interval,
	}, nil
}

// Start returns the first slot's minute.
func (c GridConfig) Start() int { return c.StartHour*60 + c.StartMinute }

// End returns the last minute a slot may start at. An end of 24:00 stops at the last minute
// of the day.
func (c GridConfig) End() int {
	end := c.EndHour*60 + c.EndMinute
	if end >= parse.MinutesPerDay {
		end = parse.MinutesPerDay - 1
	}
	return end
}

// Len returns the number of slots Generate produces.
func (c GridConfig) Len() int {
	if c.IntervalMinutes <= 0 || c.Start() > c.End() {
		return 0
	}
	return (c.End()-c.Start())/c.IntervalMinutes + 1
}

// Generate returns the canonical ordered slots covering [start, end] inclusive.
// A start after the end, or a non-positive interval, yields an empty grid.
func (c GridConfig) Generate() []Slot {
	slots := make([]Slot, 0, c.Len())
	if c.IntervalMinutes <= 0 {
		return slots
	}
	for m := c.Start(); m <= c.End(); m += c.IntervalMinutes {
		slots = append(slots, New(m))
	}
	return slots
}
