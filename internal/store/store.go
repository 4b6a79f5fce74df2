package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
)

// Store errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// AvailabilityStore reads and writes declared unavailability.
type AvailabilityStore interface {
	ListAvailability(ctx context.Context, employeeID string, date time.Time) ([]model.AvailabilityRecord, error)
	UpsertAvailability(ctx context.Context, employeeID string, slots []model.SlotInput) error
	DeleteAvailability(ctx context.Context, id string) error
}

// MeetingStore reads committed meetings.
type MeetingStore interface {
	ListMeetingsForUser(ctx context.Context, userID string) ([]model.Meeting, error)
}

// SubscriptionStore manages push subscriptions to employee schedules.
type SubscriptionStore interface {
	PutSubscription(ctx context.Context, sub model.PushSubscription, employeeIDs []string) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	SubscriptionsForEmployee(ctx context.Context, employeeID string) ([]model.PushSubscription, error)
}

// Store defines the interface for all database operations.
type Store interface {
	AvailabilityStore
	MeetingStore
	SubscriptionStore
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	loc *time.Location
}

// NewGormStore creates a new GORM-backed store. Day boundaries are computed in loc.
func NewGormStore(db *gorm.DB, loc *time.Location) Store {
	if loc == nil {
		loc = time.Local
	}
	return &gormStore{db: db, loc: loc}
}

// ListAvailability returns the employee's records starting on date, ordered by start time.
func (s *gormStore) ListAvailability(ctx context.Context, employeeID string, date time.Time) ([]model.AvailabilityRecord, error) {
	from := parse.TruncateToDay(date, s.loc)
	to := from.AddDate(0, 0, 1)

	var records []model.AvailabilityRecord
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND start_time >= ? AND start_time < ?", employeeID, from, to).
		Order("start_time").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list availability for %s: %w", employeeID, err)
	}
	return records, nil
}

// UpsertAvailability writes a batch of records for the employee in one transaction. A record
// that already exists at the same start time is overwritten.
func (s *gormStore) UpsertAvailability(ctx context.Context, employeeID string, slots []model.SlotInput) error {
	if len(slots) == 0 {
		return nil
	}

	records := make([]model.AvailabilityRecord, 0, len(slots))
	for _, in := range slots {
		if !in.Status.Valid() {
			return fmt.Errorf("%w: availability status %q", ErrInvalidInput, in.Status)
		}
		if !in.EndTime.After(in.StartTime) {
			return fmt.Errorf("%w: availability window must end after it starts: %s", ErrInvalidInput, in.StartTime.Format(time.RFC3339))
		}
		records = append(records, model.AvailabilityRecord{
			EmployeeID: employeeID,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			Status:     in.Status,
			Reason:     in.Reason,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "start_time"}},
			DoUpdates: clause.AssignmentColumns([]string{"end_time", "status", "reason"}),
		}).Create(&records).Error
	})
}

// DeleteAvailability removes one record by id.
func (s *gormStore) DeleteAvailability(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.AvailabilityRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete availability %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete availability %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListMeetingsForUser returns meetings the user hosts or attends, with their time slots.
func (s *gormStore) ListMeetingsForUser(ctx context.Context, userID string) ([]model.Meeting, error) {
	attending := s.db.Model(&model.MeetingParticipant{}).Select("meeting_id").Where("user_id = ?", userID)

	var meetings []model.Meeting
	err := s.db.WithContext(ctx).
		Preload("TimeSlots", func(db *gorm.DB) *gorm.DB { return db.Order("start_time") }).
		Where("host_id = ? OR id IN (?)", userID, attending).
		Order("created_at").
		Find(&meetings).Error
	if err != nil {
		return nil, fmt.Errorf("list meetings for %s: %w", userID, err)
	}
	return meetings, nil
}
