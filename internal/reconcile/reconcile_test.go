package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/merge"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
)

var date = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

// mockStore records calls made by the syncer.
type mockStore struct {
	deleted  []string
	upserted [][]model.SlotInput
	listed   int

	DeleteFunc func(id string) error
	UpsertFunc func(slots []model.SlotInput) error
	ListFunc   func() ([]model.AvailabilityRecord, error)
}

func (m *mockStore) ListAvailability(ctx context.Context, employeeID string, date time.Time) ([]model.AvailabilityRecord, error) {
	m.listed++
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil, nil
}

func (m *mockStore) UpsertAvailability(ctx context.Context, employeeID string, slots []model.SlotInput) error {
	if m.UpsertFunc != nil {
		if err := m.UpsertFunc(slots); err != nil {
			return err
		}
	}
	m.upserted = append(m.upserted, slots)
	return nil
}

func (m *mockStore) DeleteAvailability(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		if err := m.DeleteFunc(id); err != nil {
			return err
		}
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func newSyncer(s *mockStore) *Syncer {
	return NewSyncer(s, merge.NewEngine(time.UTC, nil), 0, nil)
}

func unavailableRecord(id string, minute int, reason string) model.AvailabilityRecord {
	start := date.Add(time.Duration(minute) * time.Minute)
	return model.AvailabilityRecord{
		ID:        id,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    model.StatusUnavailable,
		Reason:    reason,
	}
}

func TestDiff_MarkAvailableDeletesExistingRecord(t *testing.T) {
	syncer := newSyncer(&mockStore{})
	existing := []model.AvailabilityRecord{unavailableRecord("rec-1", 14*60, "Lunch")}

	staged := slot.DefaultGrid().Generate() // every slot available

	plan := syncer.Diff(staged, existing, date)
	assert.Equal(t, []string{"rec-1"}, plan.Deletes)
	assert.Empty(t, plan.Upserts)
}

func TestDiff_MarkUnavailableCreatesRecord(t *testing.T) {
	syncer := newSyncer(&mockStore{})
	staged := slot.DefaultGrid().Generate()
	staged[1].Available = false
	staged[1].Reason = "Interview prep"

	plan := syncer.Diff(staged, nil, date)
	assert.Empty(t, plan.Deletes)
	require.Len(t, plan.Upserts, 1)

	up := plan.Upserts[0]
	assert.Equal(t, time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC), up.StartTime)
	assert.Equal(t, 30*time.Minute, up.EndTime.Sub(up.StartTime))
	assert.Equal(t, model.StatusUnavailable, up.Status)
	assert.Equal(t, "Interview prep", up.Reason)
}

func TestDiff_UnchangedDayIsEmpty(t *testing.T) {
	engine := merge.NewEngine(time.UTC, nil)
	syncer := NewSyncer(&mockStore{}, engine, 30*time.Minute, nil)

	existing := []model.AvailabilityRecord{
		unavailableRecord("rec-1", 14*60, "Lunch"),
		{
			ID:        "rec-2",
			StartTime: date.Add(16 * time.Hour),
			EndTime:   date.Add(16*time.Hour + 30*time.Minute),
			Status:    model.StatusOutOfOffice,
			Reason:    "Offsite",
		},
	}
	meetings := []model.Meeting{{
		ID:    "mtg-1",
		Title: "Board Sync",
		TimeSlots: []model.MeetingTimeSlot{
			{Date: date, StartTime: date.Add(15 * time.Hour), EndTime: date.Add(15*time.Hour + 30*time.Minute)},
		},
	}}

	staged := engine.Merge(slot.DefaultGrid().Generate(), existing, meetings, date)
	plan := syncer.Diff(staged, existing, date)
	assert.True(t, plan.Empty(), "re-saving the merged day must not write: %+v", plan)
}

func TestDiff_ChangedReasonReplacesRecord(t *testing.T) {
	syncer := newSyncer(&mockStore{})
	existing := []model.AvailabilityRecord{unavailableRecord("rec-1", 14*60, "Lunch")}

	staged := slot.DefaultGrid().Generate()
	for i := range staged {
		if staged[i].Minute == 14*60 {
			staged[i].Available = false
			staged[i].Reason = "Team lunch"
		}
	}

	plan := syncer.Diff(staged, existing, date)
	assert.Equal(t, []string{"rec-1"}, plan.Deletes)
	require.Len(t, plan.Upserts, 1)
	assert.Equal(t, "Team lunch", plan.Upserts[0].Reason)
}

func TestDiff_BookedSlotsAreIgnored(t *testing.T) {
	syncer := newSyncer(&mockStore{})
	existing := []model.AvailabilityRecord{unavailableRecord("rec-1", 15*60, "Hidden by meeting")}

	staged := slot.DefaultGrid().Generate()
	for i := range staged {
		if staged[i].Minute == 15*60 {
			staged[i].Available = false
			staged[i].Booked = true
			staged[i].Reason = "Board Sync"
		}
	}

	assert.True(t, syncer.Diff(staged, existing, date).Empty())
}

func TestDiff_DuplicateRecordsAreCollapsed(t *testing.T) {
	syncer := newSyncer(&mockStore{})
	existing := []model.AvailabilityRecord{
		unavailableRecord("rec-1", 10*60, "Focus"),
		unavailableRecord("rec-2", 10*60, "Focus"),
	}

	staged := slot.DefaultGrid().Generate()
	staged[1].Available = false
	staged[1].Reason = "Focus"

	plan := syncer.Diff(staged, existing, date)
	assert.Equal(t, []string{"rec-2"}, plan.Deletes)
	assert.Empty(t, plan.Upserts)
}

func TestSync_RunsDeletesThenUpsertThenRefresh(t *testing.T) {
	refreshed := []model.AvailabilityRecord{unavailableRecord("rec-new", 10*60, "Interview prep")}
	ms := &mockStore{ListFunc: func() ([]model.AvailabilityRecord, error) { return refreshed, nil }}
	syncer := newSyncer(ms)

	existing := []model.AvailabilityRecord{unavailableRecord("rec-1", 14*60, "Lunch")}
	staged := slot.DefaultGrid().Generate()
	staged[1].Available = false
	staged[1].Reason = "Interview prep"

	res, err := syncer.Sync(context.Background(), "emp-1", date, staged, existing)
	require.NoError(t, err)

	assert.Equal(t, []string{"rec-1"}, ms.deleted)
	require.Len(t, ms.upserted, 1, "upserts go out as one batch")
	assert.Len(t, ms.upserted[0], 1)
	assert.Equal(t, 1, ms.listed)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.Upserted)
	assert.Equal(t, refreshed, res.Records)
}

func TestSync_IdempotentSecondRun(t *testing.T) {
	ms := &mockStore{}
	syncer := newSyncer(ms)

	existing := []model.AvailabilityRecord{unavailableRecord("rec-1", 14*60, "Lunch")}
	staged := merge.NewEngine(time.UTC, nil).Merge(slot.DefaultGrid().Generate(), existing, nil, date)

	res, err := syncer.Sync(context.Background(), "emp-1", date, staged, existing)
	require.NoError(t, err)
	assert.True(t, res.Plan.Empty())
	assert.Empty(t, ms.deleted)
	assert.Empty(t, ms.upserted)
	assert.Equal(t, 1, ms.listed, "only the refresh call is made")
}

func TestSync_SurfacesPartialFailure(t *testing.T) {
	ms := &mockStore{
		DeleteFunc: func(id string) error {
			if id == "rec-2" {
				return errors.New("gateway timeout")
			}
			return nil
		},
		UpsertFunc: func(slots []model.SlotInput) error { return errors.New("validation failed") },
	}
	syncer := newSyncer(ms)

	existing := []model.AvailabilityRecord{
		unavailableRecord("rec-1", 9*60+30, "A"),
		unavailableRecord("rec-2", 10*60, "B"),
	}
	staged := slot.DefaultGrid().Generate()
	staged[5].Available = false

	res, err := syncer.Sync(context.Background(), "emp-1", date, staged, existing)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "gateway timeout")
	assert.Contains(t, err.Error(), "validation failed")

	assert.Equal(t, []string{"rec-1"}, ms.deleted, "successful deletions are not rolled back")
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 0, res.Upserted)
	assert.Equal(t, 0, ms.listed, "no refresh after a failed sync")
}

func TestSync_RefreshFailure(t *testing.T) {
	ms := &mockStore{ListFunc: func() ([]model.AvailabilityRecord, error) { return nil, errors.New("unreachable") }}
	syncer := newSyncer(ms)

	_, err := syncer.Sync(context.Background(), "emp-1", date, slot.DefaultGrid().Generate(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh availability")
}

func TestSync_MissingRecordCountsAsDeleted(t *testing.T) {
	s := &mockStore{DeleteFunc: func(id string) error { return store.ErrNotFound }}
	syncer := newSyncer(s)
	existing := []model.AvailabilityRecord{unavailableRecord("rec-1", 9*60+30, "Focus")}

	res, err := syncer.Sync(context.Background(), "emp-1", date, slot.DefaultGrid().Generate(), existing)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, s.listed)
}
