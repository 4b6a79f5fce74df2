package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/config"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
)

func TestInit_SQLiteMigrates(t *testing.T) {
	gormDB, err := Init(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:db_init_test?mode=memory&cache=shared",
	}, "production", nil)
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, table := range []any{&model.AvailabilityRecord{}, &model.Meeting{}, &model.MeetingTimeSlot{},
		&model.MeetingParticipant{}, &model.PushSubscription{}, &model.SubscriptionEmployee{}} {
		assert.True(t, gormDB.Migrator().HasTable(table))
	}
	assert.True(t, gormDB.Migrator().HasIndex(&model.AvailabilityRecord{}, "idx_availability_employee_start"))
}

func TestInit_UnknownDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "mysql"}, "development", nil)
	assert.Error(t, err)
}
