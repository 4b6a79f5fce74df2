// Package session implements the interactive edit session over a merged day.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/merge"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/policy"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/reconcile"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
)

// Controller errors.
var (
	ErrNotEditing   = errors.New("not in edit mode")
	ErrDateClosed   = errors.New("date can no longer be edited")
	ErrPromptOpen   = errors.New("reason prompt is open")
	ErrNoPrompt     = errors.New("reason prompt is not open")
	ErrNoSelection  = errors.New("no slots selected")
	ErrInvalidIndex = errors.New("slot index out of range")
)

// DefaultUnavailableReason is stored when the operator confirms an empty reason.
const DefaultUnavailableReason = "Unavailable"

// State is the controller's top-level mode.
type State string

const (
	StateViewing State = "viewing"
	StateEditing State = "editing"
)

// Dependencies are the collaborators a Controller needs.
type Dependencies struct {
	Grid   []slot.Slot
	Window *policy.EditWindow
	Engine *merge.Engine
	Syncer *reconcile.Syncer
}

type reasonPrompt struct {
	indices []int
	reason  string
}

// Controller owns the merged view of one employee's day and the optional edit session on top
// of it. Every transition replaces the working slot list as a whole.
type Controller struct {
	mu sync.Mutex

	deps       Dependencies
	employeeID string
	date       time.Time

	// Last fetched data and the view merged from it.
	records  []model.AvailabilityRecord
	meetings []model.Meeting
	merged   []slot.Slot

	editing  bool
	working  []slot.Slot
	selected map[int]struct{}
	prompt   *reasonPrompt
}

// NewController creates a controller in the viewing state with an unmerged grid.
func NewController(deps Dependencies, employeeID string, date time.Time) *Controller {
	return &Controller{
		deps:       deps,
		employeeID: employeeID,
		date:       date,
		merged:     slot.Clone(deps.Grid),
		selected:   make(map[int]struct{}),
	}
}

// EmployeeID returns the employee whose day is shown.
func (c *Controller) EmployeeID() string { return c.employeeID }

// Date returns the day being shown.
func (c *Controller) Date() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Load replaces the last fetched data and re-merges the view. An open edit session keeps its
// working copy; the new records become the baseline for the next save.
func (c *Controller) Load(records []model.AvailabilityRecord, meetings []model.Meeting) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load(records, meetings)
}

func (c *Controller) load(records []model.AvailabilityRecord, meetings []model.Meeting) {
	c.records = records
	c.meetings = meetings
	c.merged = c.deps.Engine.Merge(c.deps.Grid, records, meetings, c.date)
}

// Retarget switches the controller to another date. A working copy from the old date is stale,
// so an open session is re-seeded from the new merge with selection and prompt cleared.
func (c *Controller) Retarget(date time.Time, records []model.AvailabilityRecord, meetings []model.Meeting) {
	c.mu.Lock()
	defer c.mu.Unlock()

	loc := c.deps.Engine.Location()
	changed := !parse.SameDay(c.date, date, loc)
	c.date = date
	c.load(records, meetings)
	if c.editing && changed {
		c.working = slot.Clone(c.merged)
		c.clearSelection()
		c.prompt = nil
	}
}

// State returns the current mode.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing {
		return StateEditing
	}
	return StateViewing
}

// Slots returns a copy of the working list while editing, the merged view otherwise.
func (c *Controller) Slots() []slot.Slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing {
		return slot.Clone(c.working)
	}
	return slot.Clone(c.merged)
}

// Selected returns the selected indices in ascending order.
func (c *Controller) Selected() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedIndices()
}

// Prompt reports whether the reason prompt is open, with its pending indices and reason text.
func (c *Controller) Prompt() (open bool, indices []int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == nil {
		return false, nil, ""
	}
	return true, append([]int(nil), c.prompt.indices...), c.prompt.reason
}

// Begin enters edit mode, seeding the working copy from the latest merge.
func (c *Controller) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing {
		return nil
	}
	if !c.deps.Window.CanEditDate(c.date) {
		return ErrDateClosed
	}
	c.editing = true
	c.working = slot.Clone(c.merged)
	c.clearSelection()
	c.prompt = nil
	return nil
}

// Toggle flips selection of the slot at index. Booked slots and slots outside the edit window
// are ignored, reported by a false return.
func (c *Controller) Toggle(index int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return false, ErrNotEditing
	}
	if c.prompt != nil {
		return false, ErrPromptOpen
	}
	if index < 0 || index >= len(c.working) {
		return false, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	s := c.working[index]
	if s.Booked || !c.deps.Window.CanEditSlot(s, c.date) {
		return false, nil
	}

	if _, ok := c.selected[index]; ok {
		delete(c.selected, index)
	} else {
		c.selected[index] = struct{}{}
	}
	return true, nil
}

// MarkAvailable clears every selected slot and empties the selection.
func (c *Controller) MarkAvailable() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return ErrNotEditing
	}
	if c.prompt != nil {
		return ErrPromptOpen
	}

	next := slot.Clone(c.working)
	for i := range c.selected {
		next[i].Available = true
		next[i].Booked = false
		next[i].Reason = ""
	}
	c.working = next
	c.clearSelection()
	return nil
}

// RequestUnavailable opens the reason prompt for the current selection without touching slots.
func (c *Controller) RequestUnavailable() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return ErrNotEditing
	}
	if c.prompt != nil {
		return ErrPromptOpen
	}
	if len(c.selected) == 0 {
		return ErrNoSelection
	}
	c.prompt = &reasonPrompt{indices: c.selectedIndices()}
	return nil
}

// SetPendingReason stages reason text in the open prompt.
func (c *Controller) SetPendingReason(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prompt == nil {
		return ErrNoPrompt
	}
	c.prompt.reason = reason
	return nil
}

// ConfirmPrompt marks the pending slots unavailable. An empty reason falls back to the staged
// text, then to DefaultUnavailableReason. The prompt closes and the selection is cleared.
func (c *Controller) ConfirmPrompt(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prompt == nil {
		return ErrNoPrompt
	}

	text := strings.TrimSpace(reason)
	if text == "" {
		text = strings.TrimSpace(c.prompt.reason)
	}
	if text == "" {
		text = DefaultUnavailableReason
	}

	next := slot.Clone(c.working)
	for _, i := range c.prompt.indices {
		next[i].Available = false
		next[i].Booked = false
		next[i].Reason = text
	}
	c.working = next
	c.prompt = nil
	c.clearSelection()
	return nil
}

// CancelPrompt discards the pending indices and reason. The selection is kept so the operator
// can retry.
func (c *Controller) CancelPrompt() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prompt == nil {
		return ErrNoPrompt
	}
	c.prompt = nil
	return nil
}

// Cancel discards the session unconditionally and restores a fresh merge of the last fetched
// data.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.editing = false
	c.working = nil
	c.prompt = nil
	c.clearSelection()
	c.merged = c.deps.Engine.Merge(c.deps.Grid, c.records, c.meetings, c.date)
}

// Save hands the working copy to the syncer and returns to viewing with the refreshed
// availability merged in. On failure the working copy stays in place so the operator can
// retry or cancel; the selection is cleared either way.
func (c *Controller) Save(ctx context.Context) (*reconcile.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return nil, ErrNotEditing
	}
	if c.prompt != nil {
		return nil, ErrPromptOpen
	}
	c.clearSelection()

	res, err := c.deps.Syncer.Sync(ctx, c.employeeID, c.date, c.working, c.records)
	if err != nil {
		return res, err
	}

	c.editing = false
	c.working = nil
	c.load(res.Records, c.meetings)
	return res, nil
}

func (c *Controller) clearSelection() {
	c.selected = make(map[int]struct{})
}

func (c *Controller) selectedIndices() []int {
	out := make([]int, 0, len(c.selected))
	for i := range c.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
