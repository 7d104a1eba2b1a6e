package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// InventoryLedger is the part of inventory.Ledger the API exposes
type InventoryLedger interface {
	BulkAdjust(ctx context.Context, adjustments []inventory.Adjustment) (*inventory.BulkAdjustResult, error)
	ListAudit(ctx context.Context, variantID uuid.UUID, limit int) ([]inventory.AuditEntry, error)
}

// InventoryHandler handles stock adjustments and the audit trail
type InventoryHandler struct {
	BaseHandler
	ledger InventoryLedger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger InventoryLedger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// BulkAdjust godoc
// @Summary      Set absolute on-hand quantities
// @Description  Unknown variants are skipped and reported; each applied row writes an ADJUSTMENT audit entry.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.BulkAdjustRequest true "Adjustments"
// @Success      200 {object} dto.Response{data=dto.BulkAdjustResponse}
// @Failure      400 {object} dto.Response
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) BulkAdjust(c *gin.Context) {
	var req dto.BulkAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	res, err := h.ledger.BulkAdjust(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if n := len(res.AuditFailures); n > 0 {
		logger.FromContext(c.Request.Context()).Error("Adjustments committed without audit entries",
			zap.Int("count", n))
	}
	h.Success(c, dto.NewBulkAdjustResponse(res))
}

// ListAudit godoc
// @Summary      Audit trail of one variant, newest first
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Variant ID"
// @Param        limit query int false "Maximum entries (1-500)"
// @Success      200 {object} dto.Response{data=[]dto.AuditEntryResponse}
// @Router       /inventory/variants/{id}/audit [get]
func (h *InventoryHandler) ListAudit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid variant ID format")
		return
	}
	var q dto.AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entries, err := h.ledger.ListAudit(c.Request.Context(), id, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewAuditEntryListResponse(entries))
}
