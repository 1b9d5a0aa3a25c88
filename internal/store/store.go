package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"printfarm-backend/internal/model"
)

// Store is the persistence port the ledgers write through. Save operations
// are full-record upserts: a record without an id is assigned one here, which
// is how server-side ids reach client-created entities.
type Store interface {
	ListFilaments(ctx context.Context) ([]model.FilamentSpool, error)
	SaveFilament(ctx context.Context, f model.FilamentSpool) (model.FilamentSpool, error)
	DeleteFilament(ctx context.Context, id string) error

	ListPrinters(ctx context.Context) ([]model.PrinterUnit, error)
	SavePrinter(ctx context.Context, p model.PrinterUnit) (model.PrinterUnit, error)
	DeletePrinter(ctx context.Context, id string) error

	// DB exposes the underlying connection for the subscription handlers.
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) ListFilaments(ctx context.Context) ([]model.FilamentSpool, error) {
	var spools []model.FilamentSpool
	err := s.db.WithContext(ctx).Order("created_at DESC, id").Find(&spools).Error
	return spools, err
}

func (s *gormStore) SaveFilament(ctx context.Context, f model.FilamentSpool) (model.FilamentSpool, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&f).Error
	return f, err
}

func (s *gormStore) DeleteFilament(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&model.FilamentSpool{}, "id = ?", id).Error
}

func (s *gormStore) ListPrinters(ctx context.Context) ([]model.PrinterUnit, error) {
	var printers []model.PrinterUnit
	err := s.db.WithContext(ctx).Order("created_at DESC, id").Find(&printers).Error
	return printers, err
}

func (s *gormStore) SavePrinter(ctx context.Context, p model.PrinterUnit) (model.PrinterUnit, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.History == nil {
		p.History = model.MaintenanceHistory{}
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&p).Error
	return p, err
}

func (s *gormStore) DeletePrinter(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM subscription_printer_mapping WHERE printer_unit_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PrinterUnit{}, "id = ?", id).Error
	})
}
