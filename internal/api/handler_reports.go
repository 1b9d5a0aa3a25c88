package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printfarm-backend/internal/diagnostics"
	"printfarm-backend/internal/finance"
)

type diagnosticsResponse struct {
	PrinterID         string                        `json:"printerId"`
	HoursSinceService float64                       `json:"hoursSinceService"`
	Tasks             []diagnostics.MaintenanceTask `json:"tasks"`
}

// GetPrinterDiagnostics handles GET /api/printers/:id/diagnostics. The
// result is derived from the current fleet snapshot and never persisted.
func (h *Handler) GetPrinterDiagnostics(c *gin.Context) {
	printer, ok := h.fleet.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "printer not found"})
		return
	}

	tasks := diagnostics.Evaluate(printer)
	if tasks == nil {
		tasks = []diagnostics.MaintenanceTask{}
	}
	c.JSON(http.StatusOK, diagnosticsResponse{
		PrinterID:         printer.ID,
		HoursSinceService: diagnostics.HoursSinceService(printer),
		Tasks:             tasks,
	})
}

// GetPrinterFinancials handles GET /api/printers/:id/financials.
func (h *Handler) GetPrinterFinancials(c *gin.Context) {
	printer, ok := h.fleet.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "printer not found"})
		return
	}
	c.JSON(http.StatusOK, finance.Analyze(printer, h.tariff))
}

type fleetSummaryRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	RoiPercent float64 `json:"roiPercent"`
	PaidOff    bool    `json:"paidOff"`
	TasksDue   int     `json:"tasksDue"`
}

type fleetSummaryResponse struct {
	Printers           []fleetSummaryRow `json:"printers"`
	TotalYield         float64           `json:"totalYield"`
	TotalOperatingCost float64           `json:"totalOperatingCost"`
	TotalNetProfit     float64           `json:"totalNetProfit"`
}

// GetFleetSummary handles GET /api/fleet/summary: the per-printer derived
// figures plus fleet-wide totals, all computed on the fly.
func (h *Handler) GetFleetSummary(c *gin.Context) {
	printers := h.fleet.Snapshot()

	resp := fleetSummaryResponse{Printers: make([]fleetSummaryRow, 0, len(printers))}
	for _, p := range printers {
		snap := finance.Analyze(p, h.tariff)
		resp.Printers = append(resp.Printers, fleetSummaryRow{
			ID:         p.ID,
			Name:       p.Name,
			Status:     string(p.Status),
			RoiPercent: snap.RoiPercent,
			PaidOff:    snap.PaidOff,
			TasksDue:   len(diagnostics.Evaluate(p)),
		})
		resp.TotalYield += p.YieldTotal
		resp.TotalOperatingCost += snap.OperatingCost
		resp.TotalNetProfit += snap.NetProfit
	}
	c.JSON(http.StatusOK, resp)
}
