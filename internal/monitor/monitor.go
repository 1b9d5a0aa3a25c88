// Package monitor periodically sweeps the fleet and dispatches push alerts
// for printers whose set of due maintenance tasks has grown since the last
// sweep. Alerts fire once per newly-due task, not on every tick.
package monitor

import (
	"context"
	"log"
	"time"

	"printfarm-backend/config"
	"printfarm-backend/internal/diagnostics"
	"printfarm-backend/internal/store"
)

// Notifier queues a maintenance alert for one printer.
type Notifier interface {
	Dispatch(printerID string)
}

// Service runs the periodic maintenance sweep.
type Service struct {
	cfg      *config.Config
	store    store.Store
	notifier Notifier

	// seen tracks the due task ids observed per printer on the last sweep.
	seen map[string]map[string]bool
}

// NewService creates a monitor that reads printers from the store and
// dispatches alerts through the notifier.
func NewService(cfg *config.Config, s store.Store, n Notifier) *Service {
	return &Service{
		cfg:      cfg,
		store:    s,
		notifier: n,
		seen:     make(map[string]map[string]bool),
	}
}

// Run starts the sweep loop. It returns when ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Monitor.Enabled {
		log.Println("Maintenance monitor is disabled. Not starting.")
		return
	}
	log.Println("Starting maintenance monitor...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Monitor.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Maintenance monitor shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Monitor.Interval)
		}
	}
}

// SweepOnce evaluates every printer once and dispatches alerts for printers
// with newly-due tasks.
func (s *Service) SweepOnce(ctx context.Context) {
	printers, err := s.store.ListPrinters(ctx)
	if err != nil {
		log.Printf("monitor: listing printers failed: %v", err)
		return
	}

	current := make(map[string]map[string]bool, len(printers))
	for _, p := range printers {
		tasks := diagnostics.Evaluate(p)
		due := make(map[string]bool, len(tasks))
		newlyDue := false
		for _, t := range tasks {
			due[t.ID] = true
			if !s.seen[p.ID][t.ID] {
				newlyDue = true
			}
		}
		current[p.ID] = due

		if newlyDue {
			s.notifier.Dispatch(p.ID)
		}
	}

	// Replacing the whole map also forgets removed printers and shrinks the
	// due set after a maintenance reset, re-arming the alert.
	s.seen = current
}
