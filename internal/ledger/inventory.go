package ledger

import (
	"context"
	"log"
	"slices"
	"sync"
	"sync/atomic"

	"printfarm-backend/internal/model"
	"printfarm-backend/internal/normalize"
	"printfarm-backend/internal/store"
)

// InventoryLedger holds the canonical in-memory collection of filament
// spools. It is constructed once at the composition root and shared by
// reference.
type InventoryLedger struct {
	mu      sync.Mutex
	store   store.Store
	spools  []model.FilamentSpool
	loading atomic.Bool
}

// NewInventory creates an inventory ledger backed by the given store.
func NewInventory(s store.Store) *InventoryLedger {
	return &InventoryLedger{store: s}
}

// Loading reports whether a non-silent fetch is in flight.
func (l *InventoryLedger) Loading() bool {
	return l.loading.Load()
}

// Snapshot returns a copy of the current collection.
func (l *InventoryLedger) Snapshot() []model.FilamentSpool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.spools)
}

// Get returns the spool with the given id, if present.
func (l *InventoryLedger) Get(id string) (model.FilamentSpool, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, sp := range l.spools {
		if sp.ID == id {
			return sp, true
		}
	}
	return model.FilamentSpool{}, false
}

// FetchAll replaces the collection with normalized store data. A transport
// failure empties the collection and is logged, never returned: the caller
// always gets a usable (possibly empty) slice. silent suppresses the
// loading signal, for background reconciliation.
func (l *InventoryLedger) FetchAll(ctx context.Context, silent bool) []model.FilamentSpool {
	if !silent {
		l.loading.Store(true)
		defer l.loading.Store(false)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reload(ctx)
	return slices.Clone(l.spools)
}

// reload refreshes the collection from the store. Caller holds the mutex.
func (l *InventoryLedger) reload(ctx context.Context) {
	rows, err := l.store.ListFilaments(ctx)
	if err != nil {
		log.Printf("inventory: fetch failed: %v", err)
		l.spools = nil
		return
	}
	spools := make([]model.FilamentSpool, 0, len(rows))
	for _, r := range rows {
		spools = append(spools, normalize.Filament(normalize.FilamentStorage(r)))
	}
	l.spools = spools
}

// Save normalizes and upserts one spool. A record without an id gets a
// provisional one and is prepended; a known id replaces the record in place,
// and an unknown id falls through to insert-as-new. On success the ledger
// silently re-fetches so store-assigned ids and timestamps reconcile; on
// failure the pre-mutation collection is restored and the error returned.
func (l *InventoryLedger) Save(ctx context.Context, raw map[string]any) (model.FilamentSpool, error) {
	sp := normalize.Filament(raw)

	l.mu.Lock()
	defer l.mu.Unlock()

	if sp.ID == "" {
		sp.ID = NewProvisionalID()
	}

	err := applyOptimistic(ctx, &l.spools, slices.Clone,
		func() {
			if i := indexOfSpool(l.spools, sp.ID); i >= 0 {
				l.spools[i] = sp
			} else {
				l.spools = append([]model.FilamentSpool{sp}, l.spools...)
			}
		},
		func(ctx context.Context) error {
			persisted := sp
			if IsProvisional(persisted.ID) {
				persisted.ID = ""
			}
			saved, err := l.store.SaveFilament(ctx, persisted)
			if err != nil {
				return err
			}
			sp = saved
			return nil
		})
	if err != nil {
		return model.FilamentSpool{}, err
	}

	l.reload(ctx)
	return sp, nil
}

// QuickAdjustWeight records filament consumption by mutating only
// weightCurrent. This is a best-effort background operation: a persistence
// failure rolls back and is logged, not returned. An unknown id is a no-op.
func (l *InventoryLedger) QuickAdjustWeight(ctx context.Context, id string, newWeight float64) {
	if newWeight < 0 {
		newWeight = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOfSpool(l.spools, id)
	if i < 0 {
		return
	}

	err := applyOptimistic(ctx, &l.spools, slices.Clone,
		func() {
			if newWeight > l.spools[i].WeightTotal {
				newWeight = l.spools[i].WeightTotal
			}
			l.spools[i].WeightCurrent = newWeight
		},
		func(ctx context.Context) error {
			_, err := l.store.SaveFilament(ctx, normalize.Filament(normalize.FilamentStorage(l.spools[i])))
			return err
		})
	if err != nil {
		log.Printf("inventory: weight adjust for %s failed, rolled back: %v", id, err)
	}
}

// Delete removes a spool. A provisional id was never persisted, so removal
// is local-only and final. Otherwise the removal is optimistic: the store
// delete follows, and a failure restores the record (logged, not returned).
func (l *InventoryLedger) Delete(ctx context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOfSpool(l.spools, id)
	if i < 0 {
		return
	}

	if IsProvisional(id) {
		l.spools = slices.Delete(l.spools, i, i+1)
		return
	}

	err := applyOptimistic(ctx, &l.spools, slices.Clone,
		func() {
			l.spools = slices.Delete(l.spools, i, i+1)
		},
		func(ctx context.Context) error {
			return l.store.DeleteFilament(ctx, id)
		})
	if err != nil {
		log.Printf("inventory: delete of %s failed, rolled back: %v", id, err)
	}
}

func indexOfSpool(spools []model.FilamentSpool, id string) int {
	for i, sp := range spools {
		if sp.ID == id {
			return i
		}
	}
	return -1
}
