package notification

import (
	"bytes"
	"context"
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
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

var printerColumns = []string{
	"id", "name", "brand", "model", "status", "power_watts", "price",
	"yield_total", "total_hours", "last_maintenance_hour",
	"maintenance_interval_hours", "history",
}

func expectSubscriptionQuery(mock sqlmock.Sqlmock, printerID, endpoint string) {
	mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN .*subscription_printer_mapping.*WHERE .*spm\.printer_unit_id = \$1`).
		WithArgs(printerID).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
			AddRow(endpoint, "test_p256dh", "test_auth", time.Now()))
}

func expectPrinterQuery(mock sqlmock.Sqlmock, printerID string, totalHours float64) {
	mock.ExpectQuery(`SELECT \* FROM "printer_units" WHERE id = \$1.*LIMIT \$[0-9]+`).
		WithArgs(printerID, 1).
		WillReturnRows(sqlmock.NewRows(printerColumns).
			AddRow(printerID, "Ender 3", "Creality", "V2", "printing", 200.0, 1000.0,
				0.0, totalHours, 0.0, 300.0, "[]"))
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch("p-123")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "p-123", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends maintenance alert for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				// 280h since service: belts, lubrication and cleaning are due.
				assert.Contains(t, string(payload), `"taskCount":3`)
				assert.Contains(t, string(payload), "Belt tension check")
				assert.Contains(t, string(payload), "Ender 3")
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		expectSubscriptionQuery(mock, "p-101", "https://example.com/push")
		expectPrinterQuery(mock, "p-101", 280)

		wp.Dispatch("p-101")
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		expectSubscriptionQuery(mock, "p-102", "https://example.com/expired")
		expectPrinterQuery(mock, "p-102", 280)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch("p-102")

		// A short sleep to allow the worker to process the job.
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fully serviced printer sends nothing", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("no notification expected for a serviced printer")
				return nil, nil
			},
		}

		expectSubscriptionQuery(mock, "p-103", "https://example.com/push")
		expectPrinterQuery(mock, "p-103", 10)

		wp.Dispatch("p-103")

		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
