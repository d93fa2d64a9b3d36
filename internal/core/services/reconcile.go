// internal/core/services/reconcile.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// saleDateLayouts are accepted timestamp formats for reconciliation rows,
// most specific first.
var saleDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReconcileService applies a bulk sales reconciliation: a client-side sheet
// of sale rows is pushed back and merged into the ledger. Rows naming a
// live entry get metadata-only updates; rows naming a missing or stale
// entry become fresh OUT movements. Each row succeeds or fails on its own.
type ReconcileService struct {
	repo    ports.LedgerRepository
	photos  ports.PhotoStore
	tracker ports.ReferenceTracker
	logger  *slog.Logger
}

var _ ports.ReconcileService = (*ReconcileService)(nil)

// NewReconcileService creates a new bulk reconciliation service
func NewReconcileService(repo ports.LedgerRepository, photos ports.PhotoStore, tracker ports.ReferenceTracker, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		repo:    repo,
		photos:  photos,
		tracker: tracker,
		logger:  logger.With(slog.String("service", "reconcile")),
	}
}

// Reconcile merges the given rows into the ledger. It never aborts the
// batch: every row is attempted and failures are reported per row.
func (s *ReconcileService) Reconcile(ctx context.Context, items []ports.ReconcileItem) (*ports.ReconcileResult, error) {
	// An empty sheet reconciles to nothing.
	if len(items) == 0 {
		return &ports.ReconcileResult{}, nil
	}

	result := &ports.ReconcileResult{}
	for i, item := range items {
		created, err := s.reconcileOne(ctx, &item)
		switch {
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d (%s): %v", i, item.Barcode, err))
			s.logger.WarnContext(ctx, "reconcile item failed",
				slog.Int("index", i),
				slog.String("barcode", item.Barcode),
				slog.String("error", err.Error()))
		case created:
			result.Created++
		default:
			result.Updated++
		}
	}

	s.logger.InfoContext(ctx, "reconcile finished",
		slog.Int("updated", result.Updated),
		slog.Int("created", result.Created),
		slog.Int("failed", result.Failed))

	return result, nil
}

// reconcileOne applies a single row and reports whether it produced a new
// entry rather than updating an existing one.
func (s *ReconcileService) reconcileOne(ctx context.Context, item *ports.ReconcileItem) (bool, error) {
	if id, err := uuid.Parse(item.EntryID); err == nil {
		existing, err := s.repo.FindByID(ctx, id)
		if err == nil {
			return false, s.updateMetadata(ctx, existing, item)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
		// Stale id: the entry was deleted since the sheet was exported.
	}
	return true, s.createEntry(ctx, item)
}

// updateMetadata rewrites quantity, recipient identity, memo and notes on a
// live entry. The row follows the sheet, but the product is never
// re-adjusted: stock already moved when the sale was recorded.
func (s *ReconcileService) updateMetadata(ctx context.Context, existing *domain.LedgerEntry, item *ports.ReconcileItem) error {
	if item.Quantity > 0 {
		existing.Quantity = item.Quantity
	}
	existing.RecipientName = item.RecipientName
	existing.RecipientPhone = item.RecipientPhone
	existing.Memo = item.Memo
	existing.Notes = item.Notes

	if err := s.repo.UpdateMetadata(ctx, existing); err != nil {
		return fmt.Errorf("metadata update: %w", err)
	}

	return s.propagatePhoto(ctx, existing, item.RecipientPhoto)
}

// createEntry records a fresh OUT movement for a row with no live entry.
func (s *ReconcileService) createEntry(ctx context.Context, item *ports.ReconcileItem) error {
	entry := &domain.LedgerEntry{
		Barcode:        item.Barcode,
		Direction:      domain.DirectionOut,
		Quantity:       item.Quantity,
		RecipientName:  item.RecipientName,
		RecipientPhone: item.RecipientPhone,
		Memo:           item.Memo,
		Notes:          item.Notes,
		CreatedAt:      parseSaleDate(item.SaleDate),
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	entry.PrepareForStorage()

	if err := s.repo.Save(ctx, entry); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	return s.propagatePhoto(ctx, entry, item.RecipientPhoto)
}

// propagatePhoto persists an inbound payload if needed and repoints every
// entry of the recipient identity at the resulting path. Displaced files
// are force-deleted; one photo per recipient.
func (s *ReconcileService) propagatePhoto(ctx context.Context, entry *domain.LedgerEntry, photo string) error {
	if photo == "" {
		return nil
	}

	path := photo
	if domain.IsEncodedPayload(photo) {
		key := entry.RecipientPhone
		if key == "" {
			key = entry.Barcode
		}
		var err error
		path, err = s.photos.Persist(ctx, domain.CategoryCustomer, key, photo)
		if err != nil {
			return fmt.Errorf("persist photo: %w", err)
		}
	}

	if err := s.tracker.ForceSupersede(ctx, entry.RecipientName, entry.RecipientPhone, path); err != nil {
		return fmt.Errorf("supersede photo: %w", err)
	}
	return nil
}

func parseSaleDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
