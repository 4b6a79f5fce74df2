// Package notification pushes availability changes to subscribed browsers.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job announces that an employee's availability for a day was saved.
type Job struct {
	EmployeeID string
	Date       string // YYYY-MM-DD
	Deleted    int
	Upserted   int
}

// Payload is the JSON body delivered to the browser.
type Payload struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
}

func (j Job) payload() Payload {
	return Payload{
		Title:      "Availability updated",
		Body:       fmt.Sprintf("Schedule for %s changed (%d cleared, %d marked unavailable)", j.Date, j.Deleted, j.Upserted),
		EmployeeID: j.EmployeeID,
		Date:       j.Date,
	}
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, subs store.SubscriptionStore, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*4),
		store:   subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// SetSender replaces the transport used to deliver notifications.
func (wp *WorkerPool) SetSender(sender NotificationSender) {
	wp.sender = sender
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.logger.With(zap.Int("worker", id))
	log.Debug("notification worker started")
	for {
		select {
		case job := <-wp.jobs:
			wp.process(ctx, job)
		case <-ctx.Done():
			log.Debug("notification worker shutting down")
			return
		}
	}
}

// Dispatch queues a job without blocking. It reports false when the queue is full and the job
// was dropped.
func (wp *WorkerPool) Dispatch(job Job) bool {
	select {
	case wp.jobs <- job:
		return true
	default:
		wp.logger.Warn("notification queue full, dropping job",
			zap.String("employee_id", job.EmployeeID), zap.String("date", job.Date))
		return false
	}
}

func (wp *WorkerPool) process(ctx context.Context, job Job) {
	subs, err := wp.store.SubscriptionsForEmployee(ctx, job.EmployeeID)
	if err != nil {
		wp.logger.Error("fetch subscriptions failed", zap.String("employee_id", job.EmployeeID), zap.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(job.payload())
	if err != nil {
		wp.logger.Error("encode push payload failed", zap.Error(err))
		return
	}

	wp.logger.Info("sending availability notifications",
		zap.String("employee_id", job.EmployeeID),
		zap.String("date", job.Date),
		zap.Int("subscriptions", len(subs)))
	for _, sub := range subs {
		wp.send(ctx, sub, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("push send failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("delete expired subscription failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
