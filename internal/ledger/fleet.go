package ledger

import (
	"context"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"printfarm-backend/internal/model"
	"printfarm-backend/internal/normalize"
	"printfarm-backend/internal/store"
)

// FleetLedger holds the canonical in-memory collection of printer units.
// It follows the same optimistic-mutation shape as the inventory ledger,
// plus the narrow status-transition and maintenance-reset operations.
type FleetLedger struct {
	mu       sync.Mutex
	store    store.Store
	printers []model.PrinterUnit
	loading  atomic.Bool
	now      func() time.Time
}

// NewFleet creates a fleet ledger backed by the given store.
func NewFleet(s store.Store) *FleetLedger {
	return &FleetLedger{store: s, now: time.Now}
}

// Loading reports whether a non-silent fetch is in flight.
func (l *FleetLedger) Loading() bool {
	return l.loading.Load()
}

// Snapshot returns a copy of the current collection.
func (l *FleetLedger) Snapshot() []model.PrinterUnit {
	l.mu.Lock()
	defer l.mu.Unlock()
	return clonePrinters(l.printers)
}

// Get returns the printer with the given id, if present.
func (l *FleetLedger) Get(id string) (model.PrinterUnit, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := indexOfPrinter(l.printers, id); i >= 0 {
		return clonePrinter(l.printers[i]), true
	}
	return model.PrinterUnit{}, false
}

// FetchAll replaces the collection with normalized store data. Failures
// empty the collection and are logged, never returned. silent suppresses
// the loading signal.
func (l *FleetLedger) FetchAll(ctx context.Context, silent bool) []model.PrinterUnit {
	if !silent {
		l.loading.Store(true)
		defer l.loading.Store(false)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reload(ctx)
	return clonePrinters(l.printers)
}

func (l *FleetLedger) reload(ctx context.Context) {
	rows, err := l.store.ListPrinters(ctx)
	if err != nil {
		log.Printf("fleet: fetch failed: %v", err)
		l.printers = nil
		return
	}
	printers := make([]model.PrinterUnit, 0, len(rows))
	for _, r := range rows {
		printers = append(printers, normalize.Printer(normalize.PrinterStorage(r)))
	}
	l.printers = printers
}

// Upsert normalizes and saves one printer. A record without an id is a
// creation: it gets a provisional id, status idle and a zeroed maintenance
// counter. On success the ledger silently re-fetches to reconcile the
// store-assigned id; on failure the pre-mutation collection is restored and
// the error returned to the caller.
func (l *FleetLedger) Upsert(ctx context.Context, raw map[string]any) (model.PrinterUnit, error) {
	p := normalize.Printer(raw)

	l.mu.Lock()
	defer l.mu.Unlock()

	if p.ID == "" {
		p.ID = NewProvisionalID()
		p.Status = model.StatusIdle
		p.LastMaintenanceHour = 0
	}

	err := applyOptimistic(ctx, &l.printers, clonePrinters,
		func() {
			if i := indexOfPrinter(l.printers, p.ID); i >= 0 {
				l.printers[i] = p
			} else {
				l.printers = append([]model.PrinterUnit{p}, l.printers...)
			}
		},
		func(ctx context.Context) error {
			persisted := p
			if IsProvisional(persisted.ID) {
				persisted.ID = ""
			}
			saved, err := l.store.SavePrinter(ctx, persisted)
			if err != nil {
				return err
			}
			p = saved
			return nil
		})
	if err != nil {
		return model.PrinterUnit{}, err
	}

	l.reload(ctx)
	return p, nil
}

// Remove deletes a printer. Provisional ids are removed locally with no
// store call; otherwise the removal is optimistic with rollback on failure
// (logged, not returned).
func (l *FleetLedger) Remove(ctx context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOfPrinter(l.printers, id)
	if i < 0 {
		return
	}

	if IsProvisional(id) {
		l.printers = slices.Delete(l.printers, i, i+1)
		return
	}

	err := applyOptimistic(ctx, &l.printers, clonePrinters,
		func() {
			l.printers = slices.Delete(l.printers, i, i+1)
		},
		func(ctx context.Context) error {
			return l.store.DeletePrinter(ctx, id)
		})
	if err != nil {
		log.Printf("fleet: delete of %s failed, rolled back: %v", id, err)
	}
}

// UpdateStatus re-sends the full record with only status changed, used for
// quick state toggles without a full edit. Best-effort: failures roll back
// and are logged. Unknown ids and unrecognized statuses are no-ops.
func (l *FleetLedger) UpdateStatus(ctx context.Context, id string, status model.PrinterStatus) {
	if !model.ValidStatus(status) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOfPrinter(l.printers, id)
	if i < 0 {
		return
	}

	err := applyOptimistic(ctx, &l.printers, clonePrinters,
		func() {
			l.printers[i].Status = status
		},
		func(ctx context.Context) error {
			_, err := l.store.SavePrinter(ctx, clonePrinter(l.printers[i]))
			return err
		})
	if err != nil {
		log.Printf("fleet: status update for %s failed, rolled back: %v", id, err)
	}
}

// RegisterMaintenance records a completed service: the maintenance counter
// catches up to totalHours, a history entry is prepended, and a unit parked
// in maintenance or error state is released back to idle. Like Upsert this
// is a deliberate user action, so a persistence failure is returned after
// rollback.
func (l *FleetLedger) RegisterMaintenance(ctx context.Context, id, serviceType string) (model.PrinterUnit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOfPrinter(l.printers, id)
	if i < 0 {
		return model.PrinterUnit{}, nil
	}
	if serviceType == "" {
		serviceType = "general service"
	}

	err := applyOptimistic(ctx, &l.printers, clonePrinters,
		func() {
			p := &l.printers[i]
			p.LastMaintenanceHour = p.TotalHours
			p.History = append(model.MaintenanceHistory{{
				Date:        l.now().UTC(),
				Type:        serviceType,
				HourAtEvent: p.TotalHours,
			}}, p.History...)
			if p.Status == model.StatusMaintenance || p.Status == model.StatusError {
				p.Status = model.StatusIdle
			}
		},
		func(ctx context.Context) error {
			_, err := l.store.SavePrinter(ctx, clonePrinter(l.printers[i]))
			return err
		})
	if err != nil {
		return model.PrinterUnit{}, err
	}
	return clonePrinter(l.printers[i]), nil
}

func indexOfPrinter(printers []model.PrinterUnit, id string) int {
	for i, p := range printers {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// clonePrinter deep-copies the history slice so snapshots never alias
// ledger-owned state.
func clonePrinter(p model.PrinterUnit) model.PrinterUnit {
	p.History = slices.Clone(p.History)
	return p
}

func clonePrinters(printers []model.PrinterUnit) []model.PrinterUnit {
	out := make([]model.PrinterUnit, len(printers))
	for i, p := range printers {
		out[i] = clonePrinter(p)
	}
	return out
}
