package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"printfarm-backend/config"
	"printfarm-backend/internal/finance"
	"printfarm-backend/internal/ledger"
	"printfarm-backend/internal/mw"
	"printfarm-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, inventory *ledger.InventoryLedger, fleet *ledger.FleetLedger,
	s store.Store, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	tariff := finance.Tariff{
		KwhPrice:        cfg.Tariff.KwhPrice,
		UsefulLifeHours: cfg.Tariff.UsefulLifeHours,
	}
	handler := NewHandler(inventory, fleet, s, tariff, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/filaments", handler.GetFilaments)
		api.POST("/filaments", handler.SaveFilament)
		api.POST("/filaments/:id/weight", handler.AdjustFilamentWeight)
		api.DELETE("/filaments/:id", handler.DeleteFilament)

		api.GET("/printers", handler.GetPrinters)
		api.POST("/printers", handler.SavePrinter)
		api.DELETE("/printers/:id", handler.DeletePrinter)
		api.POST("/printers/:id/status", handler.UpdatePrinterStatus)
		api.POST("/printers/:id/maintenance", handler.RegisterMaintenance)

		// Derived read-only views; cheap to recompute, cached anyway to
		// absorb per-render polling.
		api.GET("/printers/:id/diagnostics", caching, handler.GetPrinterDiagnostics)
		api.GET("/printers/:id/financials", caching, handler.GetPrinterFinancials)
		api.GET("/fleet/summary", caching, handler.GetFleetSummary)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
