package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
)

func TestLedgerEntry_Validate(t *testing.T) {
	tests := []struct {
		name      string
		entry     *domain.LedgerEntry
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid_in_movement",
			entry: &domain.LedgerEntry{
				Barcode:   "8901234567890",
				Direction: domain.DirectionIn,
				Quantity:  10,
			},
			wantError: false,
		},
		{
			name: "valid_out_movement_with_recipient",
			entry: &domain.LedgerEntry{
				Barcode:        "8901234567890",
				Direction:      domain.DirectionOut,
				Quantity:       3,
				RecipientName:  "Alice",
				RecipientPhone: "555-0100",
			},
			wantError: false,
		},
		{
			name: "missing_barcode",
			entry: &domain.LedgerEntry{
				Direction: domain.DirectionIn,
				Quantity:  1,
			},
			wantError: true,
			errorMsg:  "barcode is required",
		},
		{
			name: "invalid_direction",
			entry: &domain.LedgerEntry{
				Barcode:   "8901234567890",
				Direction: "TRANSFER",
				Quantity:  1,
			},
			wantError: true,
			errorMsg:  "transaction_type must be IN or OUT",
		},
		{
			name: "zero_quantity",
			entry: &domain.LedgerEntry{
				Barcode:   "8901234567890",
				Direction: domain.DirectionOut,
				Quantity:  0,
			},
			wantError: true,
			errorMsg:  "quantity must be positive",
		},
		{
			name: "negative_quantity",
			entry: &domain.LedgerEntry{
				Barcode:   "8901234567890",
				Direction: domain.DirectionOut,
				Quantity:  -4,
			},
			wantError: true,
			errorMsg:  "quantity must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLedgerEntry_QuantityDelta(t *testing.T) {
	in := &domain.LedgerEntry{Direction: domain.DirectionIn, Quantity: 7}
	out := &domain.LedgerEntry{Direction: domain.DirectionOut, Quantity: 7}

	assert.Equal(t, 7, in.QuantityDelta())
	assert.Equal(t, -7, out.QuantityDelta())

	// Record followed by the reversing delete must cancel exactly.
	assert.Zero(t, in.QuantityDelta()-in.QuantityDelta())
}

func TestLedgerEntry_PrepareForStorage(t *testing.T) {
	e := &domain.LedgerEntry{
		Barcode:   "123",
		Direction: domain.DirectionIn,
		Quantity:  1,
	}
	e.PrepareForStorage()

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	// Existing identity and timestamp are never reassigned.
	id := e.ID
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e.CreatedAt = ts
	e.PrepareForStorage()
	assert.Equal(t, id, e.ID)
	assert.Equal(t, ts, e.CreatedAt)
}
