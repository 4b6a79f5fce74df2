package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func respond(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}
}

const subscriptionQuery = `SELECT .* FROM "push_subscriptions".*JOIN subscription_employees se.*WHERE se\.employee_id = \$1`

func subscriptionRows(endpoint string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
		AddRow(endpoint, "test_p256dh", "test_auth", time.Now())
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(db, time.UTC), &webpush.Options{}, nil)

	assert.True(t, wp.Dispatch(Job{EmployeeID: "emp-1", Date: "2026-10-20"}))

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "emp-1", job.EmployeeID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchDropsWhenFull(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(db, time.UTC), &webpush.Options{}, nil)

	for i := 0; i < cap(wp.jobs); i++ {
		require.True(t, wp.Dispatch(Job{EmployeeID: fmt.Sprintf("emp-%d", i)}))
	}
	assert.False(t, wp.Dispatch(Job{EmployeeID: "overflow"}))
}

func TestWorkerPool_SendsToSubscribers(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(gormDB, time.UTC), &webpush.Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			defer wg.Done()
			assert.Equal(t, "https://example.com/push", sub.Endpoint)

			var p Payload
			assert.NoError(t, json.Unmarshal(payload, &p))
			assert.Equal(t, "emp-1", p.EmployeeID)
			assert.Equal(t, "2026-10-20", p.Date)
			assert.Contains(t, p.Body, "1 marked unavailable")
			return respond(http.StatusCreated), nil
		},
	}

	mock.ExpectQuery(subscriptionQuery).
		WithArgs("emp-1").
		WillReturnRows(subscriptionRows("https://example.com/push"))

	wp.Dispatch(Job{EmployeeID: "emp-1", Date: "2026-10-20", Upserted: 1})
	wg.Wait()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerPool_DeletesExpiredSubscription(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(gormDB, time.UTC), &webpush.Options{}, nil)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return respond(http.StatusGone), nil
		},
	}

	endpoint := "https://example.com/expired"
	mock.ExpectQuery(subscriptionQuery).
		WithArgs("emp-2").
		WillReturnRows(subscriptionRows(endpoint))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "subscription_employees" WHERE endpoint = \$1`).
		WithArgs(endpoint).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
		WithArgs(endpoint).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	wp.process(context.Background(), Job{EmployeeID: "emp-2", Date: "2026-10-20"})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerPool_NoSubscribersSendsNothing(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(gormDB, time.UTC), &webpush.Options{}, nil)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			t.Fatal("no notification expected")
			return nil, nil
		},
	}

	mock.ExpectQuery(subscriptionQuery).
		WithArgs("emp-3").
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}))

	wp.process(context.Background(), Job{EmployeeID: "emp-3", Date: "2026-10-20"})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerPool_LookupErrorIsLogged(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(gormDB, time.UTC), &webpush.Options{}, nil)

	mock.ExpectQuery(subscriptionQuery).
		WithArgs("emp-4").
		WillReturnError(fmt.Errorf("connection reset"))

	wp.process(context.Background(), Job{EmployeeID: "emp-4"})
	assert.NoError(t, mock.ExpectationsWereMet())
}
