package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetFilaments handles GET /api/filaments.
func (h *Handler) GetFilaments(c *gin.Context) {
	c.JSON(http.StatusOK, h.inventory.FetchAll(c.Request.Context(), false))
}

// SaveFilament handles POST /api/filaments. The body is a loose record in
// either naming convention; presence of an id decides create vs update.
func (h *Handler) SaveFilament(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	spool, err := h.inventory.Save(c.Request.Context(), raw)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to persist filament, change was rolled back"})
		return
	}
	c.JSON(http.StatusOK, spool)
}

type adjustWeightRequest struct {
	WeightCurrent *float64 `json:"weightCurrent" binding:"required"`
}

// AdjustFilamentWeight handles POST /api/filaments/:id/weight, the quick
// consumption adjustment. Best-effort: the response is always accepted, a
// persistence failure only rolls back server-side.
func (h *Handler) AdjustFilamentWeight(c *gin.Context) {
	var req adjustWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id := c.Param("id")
	h.inventory.QuickAdjustWeight(c.Request.Context(), id, *req.WeightCurrent)

	if spool, ok := h.inventory.Get(id); ok {
		c.JSON(http.StatusAccepted, spool)
		return
	}
	c.Status(http.StatusAccepted)
}

// DeleteFilament handles DELETE /api/filaments/:id.
func (h *Handler) DeleteFilament(c *gin.Context) {
	h.inventory.Delete(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}
