// internal/workers/audit_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/anvikram/stocktrack-be/internal/adapters/db"
)

// AuditProcessor verifies that cached product quantities still agree with
// the ledger history. It reports drift, it never repairs it: a mismatch
// means a bug or manual surgery, and either deserves eyes first.
type AuditProcessor struct {
	db     *db.Database
	logger *slog.Logger
}

// NewAuditProcessor creates a new audit processor
func NewAuditProcessor(db *db.Database, logger *slog.Logger) *AuditProcessor {
	return &AuditProcessor{
		db:     db,
		logger: logger.With(slog.String("processor", "audit")),
	}
}

// AuditLedger recomputes each product's quantity from its full movement
// history and logs every row where the cached value disagrees.
func (p *AuditProcessor) AuditLedger(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "starting ledger audit")

	query := `
		SELECT p.barcode, p.quantity,
			COALESCE(SUM(
				CASE WHEN l.direction = 'IN' THEN l.quantity ELSE -l.quantity END
			), 0) AS ledger_quantity
		FROM products p
		LEFT JOIN ledger_entries l ON l.barcode = p.barcode
		GROUP BY p.barcode, p.quantity
		HAVING p.quantity != COALESCE(SUM(
			CASE WHEN l.direction = 'IN' THEN l.quantity ELSE -l.quantity END
		), 0)`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to audit ledger: %w", err)
	}
	defer rows.Close()

	var drifted int
	for rows.Next() {
		var barcode string
		var cached, computed int64
		if err := rows.Scan(&barcode, &cached, &computed); err != nil {
			return fmt.Errorf("failed to scan audit row: %w", err)
		}

		drifted++
		p.logger.WarnContext(ctx, "quantity drift detected",
			slog.String("barcode", barcode),
			slog.Int64("cached_quantity", cached),
			slog.Int64("ledger_quantity", computed))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating audit rows: %w", err)
	}

	if drifted == 0 {
		p.logger.InfoContext(ctx, "ledger audit clean")
	} else {
		p.logger.WarnContext(ctx, "ledger audit found drift",
			slog.Int("products", drifted))
	}

	return nil
}
