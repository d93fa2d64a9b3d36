// internal/core/domain/product.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a barcoded product. Quantity is a cached aggregate of
// the ledger history, maintained eagerly by the ledger engine rather than
// recomputed on read. It may go negative through uncorrected OUT movements;
// that is a valid state, never clamped.
type Product struct {
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"mrp"`
	Quantity  int             `json:"quantity"`
	ImagePath string          `json:"image_path,omitempty"`
	CreatedAt time.Time       `json:"created_date"`
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	if p.Barcode == "" {
		return fmt.Errorf("%w: barcode is required", ErrValidation)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: mrp cannot be negative", ErrValidation)
	}
	return nil
}

// PrepareForStorage sets the creation timestamp if unset.
func (p *Product) PrepareForStorage() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
}
