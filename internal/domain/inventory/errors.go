package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

var (
	// ErrVariantNotFound is returned when a variant id or sku does not resolve
	ErrVariantNotFound = shared.NewDomainError("NOT_FOUND", "Variant not found")
	// ErrInvalidChannel is returned when a channel record key names an unknown channel
	ErrInvalidChannel = shared.NewDomainError("NOT_FOUND", "Channel not found")
	// ErrInsufficientInventory is returned when a reservation cannot be satisfied
	ErrInsufficientInventory = shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient inventory")

	ErrEmptySKU            = shared.NewDomainError("INVALID_INPUT", "SKU is required")
	ErrNegativeQuantity    = shared.NewDomainError("INVALID_INPUT", "Quantity cannot be negative")
	ErrNonPositiveQuantity = shared.NewDomainError("INVALID_INPUT", "Line item quantity must be positive")
	ErrNoLineItems         = shared.NewDomainError("INVALID_INPUT", "At least one line item is required")

	// ErrAuditWriteFailure marks a quantity mutation that persisted without its audit entry
	ErrAuditWriteFailure = errors.New("inventory: audit write failed")
)

// Shortfall describes one line that could not be reserved
type Shortfall struct {
	VariantID uuid.UUID
	Requested int
	Available int
}

// InsufficientInventoryError lists every line that blocked a reservation
type InsufficientInventoryError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientInventoryError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.VariantID, s.Requested, s.Available))
	}
	return "insufficient inventory: " + strings.Join(parts, ", ")
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}

// AuditWriteError reports an audit entry that failed to persist after the
// quantity change it describes was committed.
type AuditWriteError struct {
	Entry AuditEntry
	Err   error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("audit write failed for variant %s (%s %+d): %v",
		e.Entry.VariantID, e.Entry.ChangeType, e.Entry.QuantityChange, e.Err)
}

func (e *AuditWriteError) Unwrap() []error {
	return []error{ErrAuditWriteFailure, e.Err}
}
