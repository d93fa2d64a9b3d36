// internal/core/ports/services.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
)

// LedgerService defines the application service port for stock movements.
// This interface is implemented by the application service.
type LedgerService interface {
	Record(ctx context.Context, entry *domain.LedgerEntry) error
	UpdateEntry(ctx context.Context, id uuid.UUID, entry *domain.LedgerEntry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	List(ctx context.Context, params LedgerListParams) (*LedgerListResult, error)
}

// SalesService consolidates OUT movements into sale groups at read time.
type SalesService interface {
	ListSales(ctx context.Context, params LedgerListParams) ([]domain.SaleGroup, error)
}

// ReconcileItem is one row of a bulk sales reconciliation request.
type ReconcileItem struct {
	EntryID        string `json:"entry_id,omitempty"`
	Barcode        string `json:"barcode"`
	Quantity       int    `json:"quantity"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	RecipientPhoto string `json:"recipient_photo,omitempty"`
	Memo           string `json:"memo,omitempty"`
	Notes          string `json:"notes,omitempty"`
	SaleDate       string `json:"sale_date,omitempty"`
}

// ReconcileResult reports the per-item outcome of a bulk reconciliation.
type ReconcileResult struct {
	Updated int      `json:"updated"`
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ReconcileService defines the bulk reconciliation port.
type ReconcileService interface {
	Reconcile(ctx context.Context, items []ReconcileItem) (*ReconcileResult, error)
}
