package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"printfarm-backend/internal/finance"
	"printfarm-backend/internal/ledger"
	"printfarm-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	inventory *ledger.InventoryLedger
	fleet     *ledger.FleetLedger
	store     store.Store
	tariff    finance.Tariff
	webpush   *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(inventory *ledger.InventoryLedger, fleet *ledger.FleetLedger,
	s store.Store, tariff finance.Tariff, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		inventory: inventory,
		fleet:     fleet,
		store:     s,
		tariff:    tariff,
		webpush:   webpushOptions,
	}
}
