// internal/core/services/ledger.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// LedgerService handles stock movement business logic. It orchestrates the
// photo asset store around the repository so that asset files are durable
// before any record references them, and never deleted while referenced.
type LedgerService struct {
	repo    ports.LedgerRepository
	photos  ports.PhotoStore
	tracker ports.ReferenceTracker
	logger  *slog.Logger
}

// Statically assert that *LedgerService implements the LedgerService interface.
var _ ports.LedgerService = (*LedgerService)(nil)

// NewLedgerService creates a new ledger service
func NewLedgerService(repo ports.LedgerRepository, photos ports.PhotoStore, tracker ports.ReferenceTracker, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		repo:    repo,
		photos:  photos,
		tracker: tracker,
		logger:  logger.With(slog.String("service", "ledger")),
	}
}

// Record validates and persists a new movement. The product quantity delta
// is applied atomically with the entry insert; barcodes without a catalog
// product are accepted and affect nothing.
func (s *LedgerService) Record(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	entry.PrepareForStorage()

	path, err := s.persistRecipientPhoto(ctx, entry)
	if err != nil {
		return err
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		s.discardPersisted(ctx, path)
		return fmt.Errorf("failed to save entry: %w", err)
	}

	s.logger.InfoContext(ctx, "recorded movement",
		slog.String("entry_id", entry.ID.String()),
		slog.String("barcode", entry.Barcode),
		slog.String("transaction_type", string(entry.Direction)),
		slog.Int("quantity", entry.Quantity))

	return nil
}

// UpdateEntry rewrites a stored movement. The repository applies the
// quantity differential atomically; only after the update is durable does
// the displaced photo become a deletion candidate, and then only through
// the reference tracker.
func (s *LedgerService) UpdateEntry(ctx context.Context, id uuid.UUID, entry *domain.LedgerEntry) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load entry: %w", err)
	}

	entry.ID = id
	entry.CreatedAt = existing.CreatedAt

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	path, err := s.persistRecipientPhoto(ctx, entry)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		s.discardPersisted(ctx, path)
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if old := existing.RecipientPhoto; old != "" && old != entry.RecipientPhoto && !domain.IsEncodedPayload(old) {
		if _, err := s.tracker.SafeDelete(ctx, old, id); err != nil {
			s.logger.WarnContext(ctx, "displaced photo cleanup failed",
				slog.String("path", old), slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "updated movement",
		slog.String("entry_id", id.String()),
		slog.Int("quantity", entry.Quantity))

	return nil
}

// DeleteEntry removes a movement, reversing its quantity effect exactly.
func (s *LedgerService) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load entry: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if p := existing.RecipientPhoto; p != "" && !domain.IsEncodedPayload(p) {
		if _, err := s.tracker.SafeDelete(ctx, p, uuid.Nil); err != nil {
			s.logger.WarnContext(ctx, "photo cleanup failed",
				slog.String("path", p), slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "deleted movement", slog.String("entry_id", id.String()))

	return nil
}

// GetByID retrieves a movement by id
func (s *LedgerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// List retrieves movements with filtering and pagination
func (s *LedgerService) List(ctx context.Context, params ports.LedgerListParams) (*ports.LedgerListResult, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return result, nil
}

// persistRecipientPhoto writes an inbound encoded payload to the asset
// store and swaps the entry's photo field to the stored relative path. It
// returns the new path, or "" when nothing was persisted.
func (s *LedgerService) persistRecipientPhoto(ctx context.Context, entry *domain.LedgerEntry) (string, error) {
	if !domain.IsEncodedPayload(entry.RecipientPhoto) {
		return "", nil
	}

	key := entry.RecipientPhone
	if key == "" {
		key = entry.Barcode
	}

	path, err := s.photos.Persist(ctx, domain.CategoryCustomer, key, entry.RecipientPhoto)
	if err != nil {
		return "", fmt.Errorf("failed to persist recipient photo: %w", err)
	}
	entry.RecipientPhoto = path
	return path, nil
}

// discardPersisted removes a freshly written asset after its record write
// failed. Failures here only leave an orphan for the next sweep.
func (s *LedgerService) discardPersisted(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.photos.Remove(ctx, path); err != nil {
		s.logger.WarnContext(ctx, "orphaned photo left for sweep",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}
