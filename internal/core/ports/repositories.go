// internal/core/ports/repositories.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
)

// LedgerRepository defines the persistence port for stock movements.
// Save, Update and Delete are atomic: the ledger row and the matching
// product quantity adjustment commit together or not at all.
type LedgerRepository interface {
	// Save inserts the entry and applies its signed quantity delta to the
	// product, when one exists for the barcode.
	Save(ctx context.Context, entry *domain.LedgerEntry) error
	// Update rewrites a stored entry and applies the differential
	// sign(direction) * (newQty - oldQty) to the product.
	Update(ctx context.Context, entry *domain.LedgerEntry) error
	// UpdateMetadata rewrites a stored entry, quantity included, without
	// adjusting the product. Reconciliation uses it: the sheet is the
	// authority on the row, but stock already moved when the sale happened.
	UpdateMetadata(ctx context.Context, entry *domain.LedgerEntry) error
	// Delete removes the entry after reversing its original quantity effect.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	List(ctx context.Context, params LedgerListParams) (*LedgerListResult, error)
	// CountByPhoto counts ledger rows referencing a photo path, excluding
	// at most one entry by id (uuid.Nil excludes nothing).
	CountByPhoto(ctx context.Context, photoPath string, excludeID uuid.UUID) (int64, error)
	// UpdatePhotoForRecipient repoints every entry of one recipient identity
	// at a new photo path and returns the set of paths it displaced.
	UpdatePhotoForRecipient(ctx context.Context, name, phone, photoPath string) ([]string, error)
	// ReferencedPhotoPaths returns every photo path any ledger row points at.
	ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error)
}

// LedgerListParams holds filter and pagination parameters for listing
// movements.
type LedgerListParams struct {
	Barcode   string
	Direction string
	Recipient string
	Search    string
	DateFrom  string
	DateTo    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// LedgerListResult holds one page of movements.
type LedgerListResult struct {
	Entries    []domain.LedgerEntry `json:"transactions"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalCount int64                `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
}

// ProductRepository defines the persistence port for the product catalog.
type ProductRepository interface {
	Save(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	Delete(ctx context.Context, barcode string) error
	List(ctx context.Context, params ProductListParams) (*ProductListResult, error)
	Count(ctx context.Context) (int64, error)
	ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error)
}

// ProductListParams holds filter and pagination parameters for the catalog.
type ProductListParams struct {
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ProductListResult holds one page of products.
type ProductListResult struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int64            `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}

// CustomerRepository defines the persistence port for recipients. Phone is
// the unique key; saving a duplicate phone yields domain.ErrConflict.
type CustomerRepository interface {
	Save(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string) ([]domain.Customer, error)
	ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error)
}

// StatsSummary is the dashboard snapshot: catalog totals, movement volume
// and the latest activity. Quantity totals come from the cached product
// aggregates, not from replaying the ledger.
type StatsSummary struct {
	TotalProducts      int64                `json:"total_products"`
	TotalQuantity      int64                `json:"total_quantity"`
	TransactionCount   int64                `json:"transaction_count"`
	LowStockCount      int64                `json:"low_stock_count"`
	RecentTransactions []domain.LedgerEntry `json:"recent_transactions"`
}

// StatsRepository defines the read-only reporting port.
type StatsRepository interface {
	Summary(ctx context.Context) (*StatsSummary, error)
}

// LocationRepository defines the persistence port for storage locations and
// their ordered find-photos.
type LocationRepository interface {
	Save(ctx context.Context, l *domain.Location) error
	Update(ctx context.Context, l *domain.Location) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Location, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string) ([]domain.Location, error)
	AddPhoto(ctx context.Context, p *domain.LocationPhoto) error
	DeletePhoto(ctx context.Context, photoID uuid.UUID) (string, error)
	CountByPhoto(ctx context.Context, photoPath string) (int64, error)
	ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error)
}
