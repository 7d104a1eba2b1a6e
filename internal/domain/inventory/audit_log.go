package inventory

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType is the reason code of an audit entry
type ChangeType string

const (
	// ChangeTypeReserved is stock taken by an order
	ChangeTypeReserved ChangeType = "RESERVED"
	// ChangeTypeReleased is stock given back by a cancelled order
	ChangeTypeReleased ChangeType = "RELEASED"
	// ChangeTypeAdjustment is a manual or bulk correction of on-hand stock
	ChangeTypeAdjustment ChangeType = "ADJUSTMENT"
	// ChangeTypeSyncCorrection is a channel quantity pushed during reconciliation
	ChangeTypeSyncCorrection ChangeType = "SYNC_CORRECTION"
)

// String returns the string representation of ChangeType
func (t ChangeType) String() string {
	return string(t)
}

// IsValid returns true if the change type is valid
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeTypeReserved, ChangeTypeReleased, ChangeTypeAdjustment, ChangeTypeSyncCorrection:
		return true
	}
	return false
}

// AuditEntry is an immutable record of one quantity change
type AuditEntry struct {
	ID             uuid.UUID
	VariantID      uuid.UUID
	QuantityChange int
	ChangeType     ChangeType
	Reason         string
	CreatedAt      time.Time
}

// NewAuditEntry builds an entry stamped with a fresh ID and the current time
func NewAuditEntry(variantID uuid.UUID, change int, changeType ChangeType, reason string) AuditEntry {
	return AuditEntry{
		ID:             uuid.New(),
		VariantID:      variantID,
		QuantityChange: change,
		ChangeType:     changeType,
		Reason:         reason,
		CreatedAt:      time.Now(),
	}
}
