// internal/core/services/sales.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// SalesService consolidates OUT movements into sale groups at read time.
// Groups are never persisted; every listing recomputes them from the
// ledger, so edits to member entries are reflected immediately.
type SalesService struct {
	repo   ports.LedgerRepository
	logger *slog.Logger
}

var _ ports.SalesService = (*SalesService)(nil)

// NewSalesService creates a new sales consolidation service
func NewSalesService(repo ports.LedgerRepository, logger *slog.Logger) *SalesService {
	return &SalesService{
		repo:   repo,
		logger: logger.With(slog.String("service", "sales")),
	}
}

// ListSales fetches OUT movements matching the filters and folds them into
// sale groups keyed by recipient, memo and minute.
func (s *SalesService) ListSales(ctx context.Context, params ports.LedgerListParams) ([]domain.SaleGroup, error) {
	params.Direction = string(domain.DirectionOut)
	// Grouping needs the full result set: a page boundary through the
	// middle of a sale would split it into two groups.
	params.Page = 0
	params.PageSize = 0
	if params.SortBy == "" {
		params.SortBy = "created_at"
		params.SortOrder = "desc"
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	groups := domain.GroupSales(result.Entries)

	s.logger.DebugContext(ctx, "consolidated sales",
		slog.Int("entries", len(result.Entries)),
		slog.Int("groups", len(groups)))

	return groups, nil
}
