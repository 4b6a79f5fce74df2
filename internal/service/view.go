package service

import (
	"time"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/policy"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/session"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
)

// SlotView is a merged slot with what a client needs to render it.
type SlotView struct {
	Index int `json:"index"`
	slot.Slot
	Display  slot.Display `json:"display"`
	Past     bool         `json:"past"`
	Editable bool         `json:"editable"`
}

// DayView is one employee's merged day.
type DayView struct {
	EmployeeID string     `json:"employeeId"`
	Date       string     `json:"date"`
	Editable   bool       `json:"editable"`
	Slots      []SlotView `json:"slots"`
}

// PromptView is the state of the reason prompt.
type PromptView struct {
	Open    bool   `json:"open"`
	Indices []int  `json:"indices,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// SessionView is an open edit session.
type SessionView struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employeeId"`
	Date       string        `json:"date"`
	State      session.State `json:"state"`
	Slots      []SlotView    `json:"slots"`
	Selected   []int         `json:"selected"`
	Prompt     PromptView    `json:"prompt"`
}

func slotViews(slots []slot.Slot, window *policy.EditWindow, date time.Time) []SlotView {
	out := make([]SlotView, len(slots))
	for i, s := range slots {
		out[i] = SlotView{
			Index:    i,
			Slot:     s,
			Display:  slot.Resolve(s),
			Past:     window.IsSlotInPast(s, date),
			Editable: !s.Booked && window.CanEditSlot(s, date),
		}
	}
	return out
}
