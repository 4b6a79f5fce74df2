package model

import "time"

// MeetingHost identifies the organizer of a meeting.
type MeetingHost struct {
	ID   string `gorm:"size:64;index" json:"_id"`
	Name string `gorm:"size:256" json:"name"`
}

// Meeting is a committed meeting. Creation and conflict detection happen elsewhere; the
// scheduling engine only reads these.
type Meeting struct {
	ID        string      `gorm:"primaryKey;size:36" json:"_id"`
	Title     string      `gorm:"size:256;not null" json:"title"`
	Host      MeetingHost `gorm:"embedded;embeddedPrefix:host_" json:"host"`
	IsVirtual bool        `gorm:"not null;default:false" json:"isVirtual"`
	Location  string      `gorm:"size:512" json:"location"`
	CreatedAt time.Time   `json:"createdAt"`

	// Associations
	TimeSlots    []MeetingTimeSlot    `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"timeSlots"`
	Participants []MeetingParticipant `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
}

// MeetingTimeSlot is one occurrence of a meeting.
type MeetingTimeSlot struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	MeetingID string    `gorm:"size:36;index;not null" json:"-"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	StartTime time.Time `gorm:"not null" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`
}

// MeetingParticipant links a user other than the host to a meeting.
type MeetingParticipant struct {
	MeetingID string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:64;index"`
}
