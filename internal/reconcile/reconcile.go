// Package reconcile turns a staged slot list into the minimal create/delete calls against the
// availability store.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/merge"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
)

// DefaultSlotDuration is the length of a window created for an unavailable slot.
const DefaultSlotDuration = 30 * time.Minute

// Plan is the set of store calls needed to persist a staged day.
type Plan struct {
	Deletes []string
	Upserts []model.SlotInput
}

// Empty reports whether the plan issues no writes.
func (p Plan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Upserts) == 0
}

// Result describes what a sync did.
type Result struct {
	Plan     Plan
	Deleted  int
	Upserted int
	Records  []model.AvailabilityRecord // availability re-fetched after the writes
}

// Syncer computes and replays plans against an AvailabilityStore.
type Syncer struct {
	store    store.AvailabilityStore
	engine   *merge.Engine
	duration time.Duration
	logger   *zap.Logger
}

// NewSyncer creates a Syncer. A non-positive duration falls back to DefaultSlotDuration.
func NewSyncer(s store.AvailabilityStore, engine *merge.Engine, duration time.Duration, logger *zap.Logger) *Syncer {
	if duration <= 0 {
		duration = DefaultSlotDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: s, engine: engine, duration: duration, logger: logger}
}

// Diff compares staged slots for date with the records previously fetched for it.
//
// An available slot deletes every record at its time unless the record already merges to the
// same state. An unavailable, unbooked slot keeps an identical UNAVAILABLE record or replaces
// whatever is there with a new one. Booked slots are never touched.
func (s *Syncer) Diff(staged []slot.Slot, existing []model.AvailabilityRecord, date time.Time) Plan {
	index := s.engine.RecordIndex(existing, date)
	loc := s.engine.Location()

	var plan Plan
	for _, st := range staged {
		if !st.Valid() || st.Booked {
			continue
		}
		records := index[st.Minute]

		if st.Available {
			for _, r := range records {
				if r.Status == model.StatusUnavailable || r.Reason != st.Reason {
					plan.Deletes = append(plan.Deletes, r.ID)
				}
			}
			continue
		}

		kept := false
		for _, r := range records {
			if !kept && r.Status == model.StatusUnavailable && r.Reason == st.Reason {
				kept = true
				continue
			}
			plan.Deletes = append(plan.Deletes, r.ID)
		}
		if kept {
			continue
		}

		start := parse.At(date, st.Minute, loc)
		plan.Upserts = append(plan.Upserts, model.SlotInput{
			StartTime: start,
			EndTime:   start.Add(s.duration),
			Status:    model.StatusUnavailable,
			Reason:    st.Reason,
		})
	}
	return plan
}

// Sync diffs staged against existing, runs every deletion, submits the upserts as one batch
// and re-fetches the day. A record that is already gone counts as deleted. Failures are
// collected and returned together; writes that already succeeded are not rolled back.
func (s *Syncer) Sync(ctx context.Context, employeeID string, date time.Time, staged []slot.Slot, existing []model.AvailabilityRecord) (*Result, error) {
	plan := s.Diff(staged, existing, date)
	res := &Result{Plan: plan}

	var errs error
	for _, id := range plan.Deletes {
		if err := s.store.DeleteAvailability(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("delete availability %s: %w", id, err))
			continue
		}
		res.Deleted++
	}

	if len(plan.Upserts) > 0 {
		if err := s.store.UpsertAvailability(ctx, employeeID, plan.Upserts); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("upsert %d availability slots: %w", len(plan.Upserts), err))
		} else {
			res.Upserted = len(plan.Upserts)
		}
	}

	if errs != nil {
		s.logger.Error("availability sync incomplete",
			zap.String("employee_id", employeeID),
			zap.String("date", date.Format("2006-01-02")),
			zap.Int("deleted", res.Deleted),
			zap.Int("planned_deletes", len(plan.Deletes)),
			zap.Int("upserted", res.Upserted),
			zap.Error(errs))
		return res, errs
	}

	records, err := s.store.ListAvailability(ctx, employeeID, date)
	if err != nil {
		return res, fmt.Errorf("refresh availability: %w", err)
	}
	res.Records = records

	s.logger.Info("availability synced",
		zap.String("employee_id", employeeID),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("deleted", res.Deleted),
		zap.Int("upserted", res.Upserted))
	return res, nil
}
