// internal/core/domain/ledger.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Direction represents the direction of a stock movement
type Direction string

// Direction constants
const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Valid reports whether the direction is one of the known values.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Sign returns +1 for IN and -1 for OUT movements.
func (d Direction) Sign() int {
	if d == DirectionIn {
		return 1
	}
	return -1
}

// LedgerEntry represents a single recorded stock movement: a restock (IN)
// or a sale line item (OUT). Entries are append-mostly; the product's
// on-hand quantity must always reflect having applied each extant entry's
// effect exactly once.
type LedgerEntry struct {
	ID             uuid.UUID `json:"id"`
	Barcode        string    `json:"barcode"`
	Direction      Direction `json:"transaction_type"`
	Quantity       int       `json:"quantity"`
	RecipientName  string    `json:"recipient_name,omitempty"`
	RecipientPhone string    `json:"recipient_phone,omitempty"`
	RecipientPhoto string    `json:"recipient_photo,omitempty"`
	Memo           string    `json:"memo,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	ProductName    string    `json:"product_name,omitempty"`
	CreatedAt      time.Time `json:"transaction_date"`
}

// Validate performs domain validation on the ledger entry
func (e *LedgerEntry) Validate() error {
	if e.Barcode == "" {
		return fmt.Errorf("%w: barcode is required", ErrValidation)
	}
	if !e.Direction.Valid() {
		return fmt.Errorf("%w: transaction_type must be IN or OUT", ErrValidation)
	}
	if e.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	return nil
}

// QuantityDelta returns the signed effect of this entry on the product's
// on-hand quantity: +quantity for IN, -quantity for OUT.
func (e *LedgerEntry) QuantityDelta() int {
	return e.Direction.Sign() * e.Quantity
}

// PrepareForStorage assigns an identity and creation timestamp if unset.
// The creation timestamp is immutable once the entry exists.
func (e *LedgerEntry) PrepareForStorage() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
}
