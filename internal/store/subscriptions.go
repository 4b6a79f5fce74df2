package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
)

// PutSubscription creates or replaces a subscription and the employees it follows.
func (s *gormStore) PutSubscription(ctx context.Context, sub model.PushSubscription, employeeIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub.Employees = nil
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("upsert subscription: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.SubscriptionEmployee{}).Error; err != nil {
			return fmt.Errorf("clear subscription employees: %w", err)
		}

		if len(employeeIDs) == 0 {
			return nil
		}
		links := make([]model.SubscriptionEmployee, 0, len(employeeIDs))
		for _, id := range employeeIDs {
			links = append(links, model.SubscriptionEmployee{Endpoint: sub.Endpoint, EmployeeID: id})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return fmt.Errorf("link subscription employees: %w", err)
		}
		return nil
	})
}

// DeleteSubscription removes a subscription and its employee links.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.SubscriptionEmployee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error
	})
}

// GetSubscription loads a subscription with its employees.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Employees").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

// SubscriptionsForEmployee returns every subscription following the employee.
func (s *gormStore) SubscriptionsForEmployee(ctx context.Context, employeeID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_employees se ON se.endpoint = push_subscriptions.endpoint").
		Where("se.employee_id = ?", employeeID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("subscriptions for employee %s: %w", employeeID, err)
	}
	return subs, nil
}
