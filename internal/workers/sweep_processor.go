// internal/workers/sweep_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

const (
	TypePhotoSweep  = "photos:sweep"
	TypeLedgerAudit = "ledger:audit"
)

// SweepProcessor removes photo files no record references anymore
type SweepProcessor struct {
	tracker ports.ReferenceTracker
	logger  *slog.Logger
}

// NewSweepProcessor creates a new sweep processor
func NewSweepProcessor(tracker ports.ReferenceTracker, logger *slog.Logger) *SweepProcessor {
	return &SweepProcessor{
		tracker: tracker,
		logger:  logger.With(slog.String("processor", "sweep")),
	}
}

// SweepOrphans walks the asset root and deletes every file no ledger entry,
// product, customer or location photo still points at.
func (p *SweepProcessor) SweepOrphans(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "starting orphan photo sweep")

	report, err := p.tracker.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("photo sweep failed: %w", err)
	}

	p.logger.InfoContext(ctx, "orphan photo sweep complete",
		slog.Int("scanned", report.Scanned),
		slog.Int("referenced", report.Referenced),
		slog.Int("deleted", report.Deleted),
		slog.Int("failed", len(report.Failed)))

	for _, path := range report.Failed {
		p.logger.WarnContext(ctx, "orphan left behind",
			slog.String("path", path))
	}

	return nil
}
