package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/merge"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/policy"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/reconcile"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
)

var (
	loc   = time.UTC
	today = time.Date(2026, 10, 20, 0, 0, 0, 0, loc)
)

// Grid indices on the default 09:30 grid.
const (
	idx0930 = 0
	idx1000 = 1
	idx1030 = 2
	idx1100 = 3
	idx1130 = 4
)

// memStore is an in-memory AvailabilityStore.
type memStore struct {
	records   map[string]model.AvailabilityRecord
	seq       int
	upsertErr error
}

func newMemStore(records ...model.AvailabilityRecord) *memStore {
	m := &memStore{records: make(map[string]model.AvailabilityRecord)}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

func (m *memStore) ListAvailability(ctx context.Context, employeeID string, date time.Time) ([]model.AvailabilityRecord, error) {
	var out []model.AvailabilityRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID && parse.SameDay(r.StartTime, date, loc) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) UpsertAvailability(ctx context.Context, employeeID string, slots []model.SlotInput) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, in := range slots {
		m.seq++
		id := fmt.Sprintf("rec-%d", m.seq)
		m.records[id] = model.AvailabilityRecord{
			ID: id, EmployeeID: employeeID, StartTime: in.StartTime, EndTime: in.EndTime,
			Status: in.Status, Reason: in.Reason,
		}
	}
	return nil
}

func (m *memStore) DeleteAvailability(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func clockAt(hour, minute int) func() time.Time {
	now := time.Date(2026, 10, 20, hour, minute, 0, 0, loc)
	return func() time.Time { return now }
}

func newController(s store.AvailabilityStore, now func() time.Time, date time.Time) *Controller {
	engine := merge.NewEngine(loc, nil)
	return NewController(Dependencies{
		Grid:   slot.DefaultGrid().Generate(),
		Window: policy.NewEditWindow(now, policy.DefaultCutoff, loc),
		Engine: engine,
		Syncer: reconcile.NewSyncer(s, engine, 0, nil),
	}, "emp-1", date)
}

func standup() model.Meeting {
	start := today.Add(11 * time.Hour)
	return model.Meeting{
		ID:        "m-1",
		Title:     "Standup",
		TimeSlots: []model.MeetingTimeSlot{{Date: today, StartTime: start, EndTime: start.Add(30 * time.Minute)}},
	}
}

func TestBegin_RespectsEditWindow(t *testing.T) {
	testCases := []struct {
		name     string
		now      func() time.Time
		date     time.Time
		expected error
	}{
		{name: "Today before cutoff", now: clockAt(10, 0), date: today, expected: nil},
		{name: "Today after cutoff", now: clockAt(18, 1), date: today, expected: ErrDateClosed},
		{name: "Yesterday", now: clockAt(8, 0), date: today.AddDate(0, 0, -1), expected: ErrDateClosed},
		{name: "Tomorrow", now: clockAt(23, 0), date: today.AddDate(0, 0, 1), expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newController(newMemStore(), tc.now, tc.date)
			err := c.Begin()
			if tc.expected == nil {
				require.NoError(t, err)
				assert.Equal(t, StateEditing, c.State())
			} else {
				assert.ErrorIs(t, err, tc.expected)
				assert.Equal(t, StateViewing, c.State())
			}
		})
	}
}

func TestToggle_SkipsBookedAndPastSlots(t *testing.T) {
	c := newController(newMemStore(), clockAt(10, 0), today)
	c.Load(nil, []model.Meeting{standup()})
	require.NoError(t, c.Begin())

	for _, idx := range []int{idx0930, idx1000, idx1100} {
		ok, err := c.Toggle(idx)
		require.NoError(t, err)
		assert.False(t, ok, "index %d should not be selectable", idx)
	}

	ok, err := c.Toggle(idx1030)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{idx1030}, c.Selected())

	ok, err = c.Toggle(idx1030)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, c.Selected())
}

func TestToggle_Errors(t *testing.T) {
	c := newController(newMemStore(), clockAt(10, 0), today)

	_, err := c.Toggle(idx1030)
	assert.ErrorIs(t, err, ErrNotEditing)

	require.NoError(t, c.Begin())
	_, err = c.Toggle(-1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = c.Toggle(len(c.Slots()))
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestMarkUnavailable_ThroughPrompt(t *testing.T) {
	c := newController(newMemStore(), clockAt(10, 0), today)
	require.NoError(t, c.Begin())

	_, _ = c.Toggle(idx1130)
	_, _ = c.Toggle(idx1030)
	require.NoError(t, c.RequestUnavailable())

	open, indices, _ := c.Prompt()
	assert.True(t, open)
	assert.Equal(t, []int{idx1030, idx1130}, indices)

	// Slots are untouched until the prompt is confirmed.
	assert.True(t, c.Slots()[idx1030].Available)

	_, err := c.Toggle(idx1030)
	assert.ErrorIs(t, err, ErrPromptOpen)
	assert.ErrorIs(t, c.MarkAvailable(), ErrPromptOpen)

	require.NoError(t, c.ConfirmPrompt("  Focus time  "))

	slots := c.Slots()
	for _, idx := range []int{idx1030, idx1130} {
		assert.False(t, slots[idx].Available)
		assert.False(t, slots[idx].Booked)
		assert.Equal(t, "Focus time", slots[idx].Reason)
	}
	assert.Empty(t, c.Selected())
	open, _, _ = c.Prompt()
	assert.False(t, open)
}

func TestConfirmPrompt_ReasonFallbacks(t *testing.T) {
	testCases := []struct {
		name     string
		staged   string
		given    string
		expected string
	}{
		{name: "Given reason wins", staged: "Staged", given: "Given", expected: "Given"},
		{name: "Staged reason used when none given", staged: " Staged ", given: "", expected: "Staged"},
		{name: "Blank falls back to default", staged: "   ", given: "  ", expected: DefaultUnavailableReason},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newController(newMemStore(), clockAt(10, 0), today)
			require.NoError(t, c.Begin())
			_, _ = c.Toggle(idx1030)
			require.NoError(t, c.RequestUnavailable())
			require.NoError(t, c.SetPendingReason(tc.staged))
			require.NoError(t, c.ConfirmPrompt(tc.given))
			assert.Equal(t, tc.expected, c.Slots()[idx1030].Reason)
		})
	}
}

func TestPromptErrors(t *testing.T) {
	c := newController(newMemStore(), clockAt(10, 0), today)
	require.NoError(t, c.Begin())

	assert.ErrorIs(t, c.RequestUnavailable(), ErrNoSelection)
	assert.ErrorIs(t, c.ConfirmPrompt("x"), ErrNoPrompt)
	assert.ErrorIs(t, c.CancelPrompt(), ErrNoPrompt)
	assert.ErrorIs(t, c.SetPendingReason("x"), ErrNoPrompt)
}

func TestCancelPrompt_PreservesSelection(t *testing.T) {
	c := newController(newMemStore(), clockAt(10, 0), today)
	require.NoError(t, c.Begin())
	_, _ = c.Toggle(idx1030)
	require.NoError(t, c.RequestUnavailable())
	require.NoError(t, c.SetPendingReason("Dentist"))

	require.NoError(t, c.CancelPrompt())

	assert.Equal(t, []int{idx1030}, c.Selected())
	assert.True(t, c.Slots()[idx1030].Available)
	open, _, reason := c.Prompt()
	assert.False(t, open)
	assert.Empty(t, reason)
}

func TestCancel_RestoresMergedView(t *testing.T) {
	rec := model.AvailabilityRecord{
		ID: "rec-a", EmployeeID: "emp-1", StartTime: today.Add(10*time.Hour + 30*time.Minute),
		Status: model.StatusUnavailable, Reason: "Lunch",
	}
	c := newController(newMemStore(rec), clockAt(10, 0), today)
	c.Load([]model.AvailabilityRecord{rec}, nil)
	require.NoError(t, c.Begin())

	_, _ = c.Toggle(idx1030)
	require.NoError(t, c.MarkAvailable())
	assert.True(t, c.Slots()[idx1030].Available)
	assert.Empty(t, c.Slots()[idx1030].Reason)

	c.Cancel()

	assert.Equal(t, StateViewing, c.State())
	assert.Empty(t, c.Selected())
	assert.False(t, c.Slots()[idx1030].Available)
	assert.Equal(t, "Lunch", c.Slots()[idx1030].Reason)
}

func TestSave_PersistsAndReturnsToViewing(t *testing.T) {
	s := newMemStore()
	c := newController(s, clockAt(10, 0), today)
	require.NoError(t, c.Begin())

	_, _ = c.Toggle(idx1030)
	require.NoError(t, c.RequestUnavailable())
	require.NoError(t, c.ConfirmPrompt("Lunch"))

	res, err := c.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upserted)
	assert.Len(t, s.records, 1)
	assert.Equal(t, StateViewing, c.State())
	assert.False(t, c.Slots()[idx1030].Available)
	assert.Equal(t, "Lunch", c.Slots()[idx1030].Reason)

	// Re-saving the same state is a no-op.
	require.NoError(t, c.Begin())
	res, err = c.Save(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Plan.Empty())
	assert.Len(t, s.records, 1)
}

func TestSave_FailureKeepsWorkingCopy(t *testing.T) {
	s := newMemStore()
	s.upsertErr = errors.New("gateway timeout")
	c := newController(s, clockAt(10, 0), today)
	require.NoError(t, c.Begin())

	_, _ = c.Toggle(idx1030)
	require.NoError(t, c.RequestUnavailable())
	require.NoError(t, c.ConfirmPrompt("Lunch"))

	_, err := c.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateEditing, c.State())
	assert.False(t, c.Slots()[idx1030].Available)
	assert.Empty(t, c.Selected())
}

func TestSave_Guards(t *testing.T) {
	c := newController(newMemStore(), clockAt(10, 0), today)
	_, err := c.Save(context.Background())
	assert.ErrorIs(t, err, ErrNotEditing)

	require.NoError(t, c.Begin())
	_, _ = c.Toggle(idx1030)
	require.NoError(t, c.RequestUnavailable())
	_, err = c.Save(context.Background())
	assert.ErrorIs(t, err, ErrPromptOpen)
}

func TestRetarget(t *testing.T) {
	c := newController(newMemStore(), clockAt(10, 0), today)
	require.NoError(t, c.Begin())
	_, _ = c.Toggle(idx1030)
	require.NoError(t, c.RequestUnavailable())
	require.NoError(t, c.ConfirmPrompt("Lunch"))
	_, _ = c.Toggle(idx1130)

	// Same day keeps the working copy.
	c.Retarget(today.Add(3*time.Hour), nil, nil)
	assert.False(t, c.Slots()[idx1030].Available)
	assert.Equal(t, []int{idx1130}, c.Selected())

	tomorrow := today.AddDate(0, 0, 1)
	c.Retarget(tomorrow, nil, []model.Meeting{standup()})

	assert.Equal(t, StateEditing, c.State())
	assert.True(t, c.Date().Equal(tomorrow))
	assert.True(t, c.Slots()[idx1030].Available)
	assert.False(t, c.Slots()[idx1100].Booked, "meeting belongs to the previous day")
	assert.Empty(t, c.Selected())
}
