package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityStatus is the kind of unavailability an operator declared.
type AvailabilityStatus string

const (
	StatusUnavailable AvailabilityStatus = "UNAVAILABLE"
	StatusOutOfOffice AvailabilityStatus = "OUT_OF_OFFICE"
	StatusEmergency   AvailabilityStatus = "EMERGENCY"
)

// Valid reports whether s is a known status.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case StatusUnavailable, StatusOutOfOffice, StatusEmergency:
		return true
	}
	return false
}

// AvailabilityRecord is a manually declared unavailability window. Records are created and
// deleted, never updated in place.
type AvailabilityRecord struct {
	ID         string             `gorm:"primaryKey;size:36" json:"_id"`
	EmployeeID string             `gorm:"size:64;not null;uniqueIndex:idx_availability_employee_start" json:"employeeId"`
	StartTime  time.Time          `gorm:"not null;uniqueIndex:idx_availability_employee_start" json:"startTime"`
	EndTime    time.Time          `gorm:"not null" json:"endTime"`
	Status     AvailabilityStatus `gorm:"size:32;not null" json:"status"`
	Reason     string             `gorm:"size:512;not null;default:''" json:"reason"`
	CreatedAt  time.Time          `gorm:"not null" json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *AvailabilityRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// SlotInput is one entry of a batch availability upsert.
type SlotInput struct {
	StartTime time.Time          `json:"startTime" binding:"required"`
	EndTime   time.Time          `json:"endTime" binding:"required"`
	Status    AvailabilityStatus `json:"status" binding:"required"`
	Reason    string             `json:"reason"`
}
