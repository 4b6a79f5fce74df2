// Package service composes the stores, merge engine and edit sessions into per-request
// operations.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/ics"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/merge"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/notification"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/policy"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/reconcile"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/session"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
)

const dateLayout = "2006-01-02"

// SchedulingContext identifies whose day is requested and at what instant.
type SchedulingContext struct {
	EmployeeID string
	Date       time.Time
	Now        time.Time
}

// Notifier receives a job after availability was saved.
type Notifier interface {
	Dispatch(job notification.Job) bool
}

// Options configures a Service.
type Options struct {
	Grid         slot.GridConfig
	Cutoff       int // minutes since midnight
	SlotDuration time.Duration
	Location     *time.Location
	Now          func() time.Time
}

// Service serves merged day views and edit sessions.
type Service struct {
	availability store.AvailabilityStore
	meetings     store.MeetingStore
	notifier     Notifier

	grid     []slot.Slot
	interval time.Duration
	cutoff   int
	loc      *time.Location
	now      func() time.Time
	engine   *merge.Engine
	syncer   *reconcile.Syncer
	sessions *session.Manager
	logger   *zap.Logger
}

// New creates a Service. notifier may be nil.
func New(availability store.AvailabilityStore, meetings store.MeetingStore, notifier Notifier, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	engine := merge.NewEngine(opts.Location, logger.Named("merge"))
	return &Service{
		availability: availability,
		meetings:     meetings,
		notifier:     notifier,
		grid:         opts.Grid.Generate(),
		interval:     time.Duration(opts.Grid.IntervalMinutes) * time.Minute,
		cutoff:       opts.Cutoff,
		loc:          opts.Location,
		now:          opts.Now,
		engine:       engine,
		syncer:       reconcile.NewSyncer(availability, engine, opts.SlotDuration, logger.Named("sync")),
		sessions:     session.NewManager(opts.Now),
		logger:       logger,
	}
}

// Location returns the wall clock the service schedules in.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// Context builds a SchedulingContext for employeeID and date at the current instant.
func (s *Service) Context(employeeID string, date time.Time) SchedulingContext {
	return SchedulingContext{EmployeeID: employeeID, Date: date, Now: s.now()}
}

func (s *Service) fetch(ctx context.Context, employeeID string, date time.Time) ([]model.AvailabilityRecord, []model.Meeting, error) {
	records, err := s.availability.ListAvailability(ctx, employeeID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch availability: %w", err)
	}
	meetings, err := s.meetings.ListMeetingsForUser(ctx, employeeID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch meetings: %w", err)
	}
	return records, meetings, nil
}

// Day returns the merged day for sc with display metadata and edit flags evaluated at sc.Now.
func (s *Service) Day(ctx context.Context, sc SchedulingContext) (*DayView, error) {
	records, meetings, err := s.fetch(ctx, sc.EmployeeID, sc.Date)
	if err != nil {
		return nil, err
	}
	merged := s.engine.Merge(s.grid, records, meetings, sc.Date)

	window := s.windowAt(sc.Now)
	return &DayView{
		EmployeeID: sc.EmployeeID,
		Date:       sc.Date.In(s.loc).Format(dateLayout),
		Editable:   window.CanEditDate(sc.Date),
		Slots:      slotViews(merged, window, sc.Date),
	}, nil
}

// Calendar returns the merged day for sc ready for iCalendar export.
func (s *Service) Calendar(ctx context.Context, sc SchedulingContext) (ics.Day, error) {
	records, meetings, err := s.fetch(ctx, sc.EmployeeID, sc.Date)
	if err != nil {
		return ics.Day{}, err
	}
	return ics.Day{
		EmployeeID: sc.EmployeeID,
		Date:       sc.Date,
		Slots:      s.engine.Merge(s.grid, records, meetings, sc.Date),
		Interval:   s.interval,
		Location:   s.loc,
		Stamp:      sc.Now,
	}, nil
}

func (s *Service) windowAt(now time.Time) *policy.EditWindow {
	return policy.NewEditWindow(func() time.Time { return now }, s.cutoff, s.loc)
}

func (s *Service) newController(employeeID string, date time.Time) *session.Controller {
	return session.NewController(session.Dependencies{
		Grid:   s.grid,
		Window: policy.NewEditWindow(s.now, s.cutoff, s.loc),
		Engine: s.engine,
		Syncer: s.syncer,
	}, employeeID, date)
}

// OpenSession starts editing the employee's day, or returns the session already open for it.
func (s *Service) OpenSession(ctx context.Context, employeeID string, date time.Time) (*session.Session, error) {
	key := date.In(s.loc).Format(dateLayout)
	if !policy.NewEditWindow(s.now, s.cutoff, s.loc).CanEditDate(date) {
		return nil, session.ErrDateClosed
	}

	records, meetings, err := s.fetch(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}

	sess, created := s.sessions.Open(employeeID, key, func() *session.Controller {
		return s.newController(employeeID, date)
	})
	sess.Load(records, meetings)
	if !created {
		return sess, nil
	}
	if err := sess.Begin(); err != nil {
		s.sessions.Close(sess.ID)
		return nil, err
	}

	s.logger.Info("edit session opened",
		zap.String("session_id", sess.ID),
		zap.String("employee_id", employeeID),
		zap.String("date", key))
	return sess, nil
}

// Session looks up an open session.
func (s *Service) Session(id string) (*session.Session, error) {
	return s.sessions.Get(id)
}

// RetargetSession moves a session to another date and re-seeds its working copy. A date that
// can no longer be edited is rejected and the session stays where it was.
func (s *Service) RetargetSession(ctx context.Context, id string, date time.Time) (*session.Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if !policy.NewEditWindow(s.now, s.cutoff, s.loc).CanEditDate(date) {
		return nil, session.ErrDateClosed
	}
	records, meetings, err := s.fetch(ctx, sess.EmployeeID, date)
	if err != nil {
		return nil, err
	}
	err = s.sessions.Move(id, date.In(s.loc).Format(dateLayout), func(c *session.Controller) {
		c.Retarget(date, records, meetings)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SaveSession persists the session's working copy. On success the session is closed and
// subscribers are notified when anything changed. A failed save leaves the session open.
func (s *Service) SaveSession(ctx context.Context, id string) (*reconcile.Result, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	res, err := sess.Save(ctx)
	if err != nil {
		return res, err
	}
	s.sessions.Close(id)

	if s.notifier != nil && !res.Plan.Empty() {
		s.notifier.Dispatch(notification.Job{
			EmployeeID: sess.EmployeeID,
			Date:       sess.DateKey(),
			Deleted:    res.Deleted,
			Upserted:   res.Upserted,
		})
	}
	return res, nil
}

// CancelSession discards a session.
func (s *Service) CancelSession(id string) error {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return err
	}
	sess.Cancel()
	s.sessions.Close(id)
	return nil
}

// PruneSessions drops sessions idle for longer than ttl.
func (s *Service) PruneSessions(ttl time.Duration) int {
	n := s.sessions.Prune(ttl)
	if n > 0 {
		s.logger.Info("pruned idle edit sessions", zap.Int("count", n))
	}
	return n
}

// RunPruner prunes idle sessions every interval until ctx is done.
func (s *Service) RunPruner(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PruneSessions(ttl)
		}
	}
}

// ViewSession renders a session for clients.
func (s *Service) ViewSession(sess *session.Session) *SessionView {
	date := sess.Controller.Date()
	window := policy.NewEditWindow(s.now, s.cutoff, s.loc)
	open, indices, reason := sess.Prompt()
	return &SessionView{
		ID:         sess.ID,
		EmployeeID: sess.EmployeeID,
		Date:       sess.DateKey(),
		State:      sess.State(),
		Slots:      slotViews(sess.Slots(), window, date),
		Selected:   sess.Selected(),
		Prompt:     PromptView{Open: open, Indices: indices, Reason: reason},
	}
}
