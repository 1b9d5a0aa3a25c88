package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gorm.io/gorm"

	"printfarm-backend/internal/model"
)

// fakeStore is an in-memory Store with switchable failure modes, used to
// exercise the optimistic-mutation rollback paths.
type fakeStore struct {
	mu        sync.Mutex
	filaments []model.FilamentSpool
	printers  []model.PrinterUnit

	failSave   bool
	failDelete bool
	failList   bool

	saveCalls   int
	deleteCalls int
	nextID      int
}

var errStore = errors.New("store unavailable")

func (f *fakeStore) assignID() string {
	f.nextID++
	return fmt.Sprintf("srv-%d", f.nextID)
}

func (f *fakeStore) ListFilaments(ctx context.Context) ([]model.FilamentSpool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errStore
	}
	return slices.Clone(f.filaments), nil
}

func (f *fakeStore) SaveFilament(ctx context.Context, sp model.FilamentSpool) (model.FilamentSpool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.failSave {
		return model.FilamentSpool{}, errStore
	}
	if sp.ID == "" {
		sp.ID = f.assignID()
	}
	for i, existing := range f.filaments {
		if existing.ID == sp.ID {
			f.filaments[i] = sp
			return sp, nil
		}
	}
	f.filaments = append([]model.FilamentSpool{sp}, f.filaments...)
	return sp, nil
}

func (f *fakeStore) DeleteFilament(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failDelete {
		return errStore
	}
	f.filaments = slices.DeleteFunc(f.filaments, func(sp model.FilamentSpool) bool { return sp.ID == id })
	return nil
}

func (f *fakeStore) ListPrinters(ctx context.Context) ([]model.PrinterUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errStore
	}
	return slices.Clone(f.printers), nil
}

func (f *fakeStore) SavePrinter(ctx context.Context, p model.PrinterUnit) (model.PrinterUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.failSave {
		return model.PrinterUnit{}, errStore
	}
	if p.ID == "" {
		p.ID = f.assignID()
	}
	for i, existing := range f.printers {
		if existing.ID == p.ID {
			f.printers[i] = p
			return p, nil
		}
	}
	f.printers = append([]model.PrinterUnit{p}, f.printers...)
	return p, nil
}

func (f *fakeStore) DeletePrinter(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failDelete {
		return errStore
	}
	f.printers = slices.DeleteFunc(f.printers, func(p model.PrinterUnit) bool { return p.ID == id })
	return nil
}

func (f *fakeStore) DB() *gorm.DB { return nil }
