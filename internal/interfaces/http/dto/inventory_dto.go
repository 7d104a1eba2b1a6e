package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/inventory"
)

// AdjustmentItem sets one variant to an absolute on-hand quantity
type AdjustmentItem struct {
	VariantID   string `json:"variant_id" binding:"required,uuid"`
	NewQuantity *int   `json:"new_quantity" binding:"required,min=0"`
	Reason      string `json:"reason" binding:"max=255"`
}

// BulkAdjustRequest is a batch of absolute adjustments
type BulkAdjustRequest struct {
	Adjustments []AdjustmentItem `json:"adjustments" binding:"required,min=1,max=500,dive"`
}

// ToDomain converts the request; binding has already validated the ids
func (r BulkAdjustRequest) ToDomain() []inventory.Adjustment {
	out := make([]inventory.Adjustment, 0, len(r.Adjustments))
	for _, a := range r.Adjustments {
		out = append(out, inventory.Adjustment{
			VariantID:   uuid.MustParse(a.VariantID),
			NewQuantity: *a.NewQuantity,
			Reason:      a.Reason,
		})
	}
	return out
}

// BulkAdjustResponse reports applied and skipped adjustments
type BulkAdjustResponse struct {
	Applied       []AppliedAdjustmentResponse `json:"applied"`
	Skipped       []SkippedAdjustmentResponse `json:"skipped"`
	AuditFailures []string                    `json:"audit_failures,omitempty"`
}

// AppliedAdjustmentResponse is one written adjustment
type AppliedAdjustmentResponse struct {
	VariantID   string `json:"variant_id"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
	Delta       int    `json:"delta"`
}

// SkippedAdjustmentResponse is one adjustment that was not applied
type SkippedAdjustmentResponse struct {
	VariantID string `json:"variant_id"`
	Reason    string `json:"reason"`
}

// NewBulkAdjustResponse converts a ledger result
func NewBulkAdjustResponse(res *inventory.BulkAdjustResult) BulkAdjustResponse {
	out := BulkAdjustResponse{
		Applied: make([]AppliedAdjustmentResponse, 0, len(res.Applied)),
		Skipped: make([]SkippedAdjustmentResponse, 0, len(res.Skipped)),
	}
	for _, a := range res.Applied {
		out.Applied = append(out.Applied, AppliedAdjustmentResponse{
			VariantID:   a.VariantID.String(),
			OldQuantity: a.OldQuantity,
			NewQuantity: a.NewQuantity,
			Delta:       a.Delta,
		})
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, SkippedAdjustmentResponse{
			VariantID: s.VariantID.String(),
			Reason:    s.Reason,
		})
	}
	for _, f := range res.AuditFailures {
		out.AuditFailures = append(out.AuditFailures, f.Error())
	}
	return out
}

// AuditQuery bounds the number of audit entries returned
type AuditQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// AuditEntryResponse is one audit log row
type AuditEntryResponse struct {
	ID             string    `json:"id"`
	VariantID      string    `json:"variant_id"`
	QuantityChange int       `json:"quantity_change"`
	ChangeType     string    `json:"change_type"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAuditEntryListResponse converts audit entries, preserving order
func NewAuditEntryListResponse(entries []inventory.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:             e.ID.String(),
			VariantID:      e.VariantID.String(),
			QuantityChange: e.QuantityChange,
			ChangeType:     e.ChangeType.String(),
			Reason:         e.Reason,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}
