package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVariant(t *testing.T) {
	v, err := NewVariant("MUG-01", "Mug", decimal.NewFromFloat(12.5), 4)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.Equal(t, 4, v.LocalQuantity)

	_, err = NewVariant("", "Mug", decimal.Zero, 1)
	assert.ErrorIs(t, err, ErrEmptySKU)

	_, err = NewVariant("MUG-01", "Mug", decimal.Zero, -1)
	assert.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestMergeLineItems(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	merged, err := MergeLineItems([]LineItem{
		{VariantID: a, Quantity: 2},
		{VariantID: b, Quantity: 1},
		{VariantID: a, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []LineItem{{VariantID: a, Quantity: 5}, {VariantID: b, Quantity: 1}}, merged)

	_, err = MergeLineItems([]LineItem{{VariantID: a, Quantity: 0}})
	assert.ErrorIs(t, err, ErrNonPositiveQuantity)
}

func TestInsufficientInventoryError(t *testing.T) {
	err := error(&InsufficientInventoryError{Shortfalls: []Shortfall{{VariantID: uuid.New(), Requested: 3, Available: 1}}})

	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Contains(t, err.Error(), "requested 3, available 1")
}

func TestAuditWriteError(t *testing.T) {
	cause := errors.New("disk full")
	entry := NewAuditEntry(uuid.New(), -2, ChangeTypeSyncCorrection, "channel sync")
	err := error(&AuditWriteError{Entry: entry, Err: cause})

	assert.ErrorIs(t, err, ErrAuditWriteFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "SYNC_CORRECTION -2")
}

func TestChangeType_IsValid(t *testing.T) {
	for _, ct := range []ChangeType{ChangeTypeReserved, ChangeTypeReleased, ChangeTypeAdjustment, ChangeTypeSyncCorrection} {
		assert.True(t, ct.IsValid(), ct)
	}
	assert.False(t, ChangeType("LOCK").IsValid())
}
