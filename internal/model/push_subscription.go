package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Employees []SubscriptionEmployee `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// SubscriptionEmployee maps a subscription to an employee whose schedule it follows.
type SubscriptionEmployee struct {
	Endpoint   string `gorm:"primaryKey"`
	EmployeeID string `gorm:"primaryKey;size:64;index"`
}
