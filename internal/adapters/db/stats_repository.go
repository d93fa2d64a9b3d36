// internal/adapters/db/stats_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// A product at or below this quantity counts as low stock.
const lowStockThreshold = 5

// statsRepository implements ports.StatsRepository
type statsRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *Database, logger *slog.Logger) ports.StatsRepository {
	return &statsRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "stats")),
	}
}

// Summary assembles the dashboard snapshot. Quantity totals come from the
// products table, which the ledger keeps in sync transactionally, so no
// history replay is needed here.
func (r *statsRepository) Summary(ctx context.Context) (*ports.StatsSummary, error) {
	summary := &ports.StatsSummary{}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM products`,
	).Scan(&summary.TotalProducts, &summary.TotalQuantity)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to aggregate products: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM ledger_entries`,
	).Scan(&summary.TransactionCount)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE quantity <= $1`, lowStockThreshold,
	).Scan(&summary.LowStockCount)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to count low stock: %w", err)
	}

	recent, err := r.recentTransactions(ctx, 10)
	if err != nil {
		return nil, err
	}
	summary.RecentTransactions = recent

	return summary, nil
}

func (r *statsRepository) recentTransactions(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	query := `SELECT` + ledgerColumns + `FROM ledger_entries ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, limit)
	for rows.Next() {
		entry, err := scanLedgerRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}
