package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"printfarm-backend/internal/diagnostics"
	"printfarm-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// alertPayload is the JSON body pushed to subscribers.
type alertPayload struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	PrinterID   string `json:"printerId"`
	TaskCount   int    `json:"taskCount"`
	TopSeverity string `json:"topSeverity"`
}

// WorkerPool manages a pool of workers for sending maintenance-due alerts.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool. Jobs are printer ids.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case printerID := <-wp.jobs:
			wp.notifyForPrinter(ctx, printerID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a maintenance alert for one printer.
func (wp *WorkerPool) Dispatch(printerID string) {
	wp.jobs <- printerID
}

// notifyForPrinter evaluates the printer's due tasks and pushes an alert to
// every subscription attached to it.
func (wp *WorkerPool) notifyForPrinter(ctx context.Context, printerID string) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_printer_mapping spm ON spm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("spm.printer_unit_id = ?", printerID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for printer %s: %v", printerID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var printer model.PrinterUnit
	if err := wp.db.WithContext(ctx).First(&printer, "id = ?", printerID).Error; err != nil {
		log.Printf("error fetching printer %s: %v", printerID, err)
		return
	}

	tasks := diagnostics.Evaluate(printer)
	if len(tasks) == 0 {
		return
	}

	label := printer.Name
	if label == "" {
		label = printerID
	}

	payload, err := json.Marshal(alertPayload{
		Title:       "Maintenance due",
		Body:        fmt.Sprintf("%s has %d maintenance task(s) due, next: %s", label, len(tasks), tasks[0].Label),
		PrinterID:   printer.ID,
		TaskCount:   len(tasks),
		TopSeverity: tasks[0].Severity.String(),
	})
	if err != nil {
		log.Printf("error encoding alert for printer %s: %v", printerID, err)
		return
	}

	log.Printf("sending %d maintenance alerts for printer %s", len(subscriptions), printerID)
	for _, sub := range subscriptions {
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
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are removed so they are not retried forever.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
