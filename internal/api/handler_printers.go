package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printfarm-backend/internal/model"
)

// GetPrinters handles GET /api/printers.
func (h *Handler) GetPrinters(c *gin.Context) {
	c.JSON(http.StatusOK, h.fleet.FetchAll(c.Request.Context(), false))
}

// SavePrinter handles POST /api/printers. The body is a loose record in
// either naming convention; presence of an id decides create vs update.
func (h *Handler) SavePrinter(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	printer, err := h.fleet.Upsert(c.Request.Context(), raw)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to persist printer, change was rolled back"})
		return
	}
	c.JSON(http.StatusOK, printer)
}

// DeletePrinter handles DELETE /api/printers/:id.
func (h *Handler) DeletePrinter(c *gin.Context) {
	h.fleet.Remove(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePrinterStatus handles POST /api/printers/:id/status, the quick state
// toggle (e.g. idle -> printing) that skips the full edit flow.
func (h *Handler) UpdatePrinterStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	status := model.PrinterStatus(req.Status)
	if !model.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown printer status"})
		return
	}

	id := c.Param("id")
	h.fleet.UpdateStatus(c.Request.Context(), id, status)

	if printer, ok := h.fleet.Get(id); ok {
		c.JSON(http.StatusAccepted, printer)
		return
	}
	c.Status(http.StatusAccepted)
}

type registerMaintenanceRequest struct {
	Type string `json:"type"`
}

// RegisterMaintenance handles POST /api/printers/:id/maintenance: the
// service counter catches up to the usage counter, a history entry is
// recorded, and a unit held in maintenance or error state goes back to idle.
func (h *Handler) RegisterMaintenance(c *gin.Context) {
	var req registerMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id := c.Param("id")
	if _, ok := h.fleet.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "printer not found"})
		return
	}

	printer, err := h.fleet.RegisterMaintenance(c.Request.Context(), id, req.Type)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to persist maintenance record, change was rolled back"})
		return
	}
	c.JSON(http.StatusOK, printer)
}
