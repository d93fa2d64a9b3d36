// internal/adapters/photostore/tracker.go
package photostore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// Tracker guards shared photo assets. Several records may point at the
// same file, so no caller deletes an asset directly: deletion goes through
// SafeDelete (refuses while referenced), ForceSupersede (the deliberate
// one-photo-per-customer override) or Sweep (orphan collection).
type Tracker struct {
	store     ports.PhotoStore
	ledger    ports.LedgerRepository
	products  ports.ProductRepository
	customers ports.CustomerRepository
	locations ports.LocationRepository
	logger    *slog.Logger
}

var _ ports.ReferenceTracker = (*Tracker)(nil)

// NewTracker creates a reference tracker over every record type that can
// hold a photo path.
func NewTracker(
	store ports.PhotoStore,
	ledger ports.LedgerRepository,
	products ports.ProductRepository,
	customers ports.CustomerRepository,
	locations ports.LocationRepository,
	logger *slog.Logger,
) *Tracker {
	return &Tracker{
		store:     store,
		ledger:    ledger,
		products:  products,
		customers: customers,
		locations: locations,
		logger:    logger.With(slog.String("component", "phototracker")),
	}
}

// References counts records pointing at relPath across all record types,
// excluding at most one ledger entry.
func (t *Tracker) References(ctx context.Context, relPath string, excludeEntry uuid.UUID) (int64, error) {
	count, err := t.ledger.CountByPhoto(ctx, relPath, excludeEntry)
	if err != nil {
		return 0, fmt.Errorf("ledger references: %w", err)
	}

	locCount, err := t.locations.CountByPhoto(ctx, relPath)
	if err != nil {
		return 0, fmt.Errorf("location references: %w", err)
	}
	count += locCount

	for _, paths := range []func(context.Context) (map[string]struct{}, error){
		t.products.ReferencedPhotoPaths,
		t.customers.ReferencedPhotoPaths,
	} {
		m, err := paths(ctx)
		if err != nil {
			return 0, err
		}
		if _, ok := m[relPath]; ok {
			count++
		}
	}

	return count, nil
}

// SafeDelete removes the file only when nothing references it. Returns
// whether the file was actually deleted.
func (t *Tracker) SafeDelete(ctx context.Context, relPath string, excludeEntry uuid.UUID) (bool, error) {
	refs, err := t.References(ctx, relPath, excludeEntry)
	if err != nil {
		return false, err
	}
	if refs > 0 {
		t.logger.DebugContext(ctx, "photo still referenced, keeping",
			slog.String("path", relPath),
			slog.Int64("references", refs))
		return false, nil
	}

	if err := t.store.Remove(ctx, relPath); err != nil {
		return false, fmt.Errorf("failed to remove asset: %w", err)
	}

	t.logger.InfoContext(ctx, "photo deleted", slog.String("path", relPath))
	return true, nil
}

// ForceSupersede repoints every ledger entry of one recipient identity at
// newPath, then deletes each displaced file that no longer has any
// reference left. A customer keeps exactly one current photo.
func (t *Tracker) ForceSupersede(ctx context.Context, name, phone, newPath string) error {
	displaced, err := t.ledger.UpdatePhotoForRecipient(ctx, name, phone, newPath)
	if err != nil {
		return fmt.Errorf("failed to supersede photos: %w", err)
	}

	for _, old := range displaced {
		// The repoint already dropped the ledger references; anything left
		// is a product, customer or location still using the file.
		if _, err := t.SafeDelete(ctx, old, uuid.Nil); err != nil {
			t.logger.WarnContext(ctx, "displaced photo cleanup failed",
				slog.String("path", old), slog.String("error", err.Error()))
		}
	}

	t.logger.InfoContext(ctx, "recipient photo superseded",
		slog.String("recipient", name),
		slog.String("photo", newPath),
		slog.Int("displaced", len(displaced)))

	return nil
}

// Sweep walks the asset root and deletes every file no record references.
// Orphans are the expected residue of crash windows between file write and
// record write; the sweep is how they get reclaimed.
func (t *Tracker) Sweep(ctx context.Context) (*ports.SweepReport, error) {
	referenced := make(map[string]struct{})
	for _, paths := range []func(context.Context) (map[string]struct{}, error){
		t.ledger.ReferencedPhotoPaths,
		t.products.ReferencedPhotoPaths,
		t.customers.ReferencedPhotoPaths,
		t.locations.ReferencedPhotoPaths,
	} {
		m, err := paths(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to collect references: %w", err)
		}
		for p := range m {
			referenced[p] = struct{}{}
		}
	}

	report := &ports.SweepReport{}
	err := t.store.Walk(ctx, func(relPath string) error {
		report.Scanned++
		if _, ok := referenced[relPath]; ok {
			report.Referenced++
			return nil
		}
		if err := t.store.Remove(ctx, relPath); err != nil {
			report.Failed = append(report.Failed, relPath)
			t.logger.WarnContext(ctx, "sweep failed to remove orphan",
				slog.String("path", relPath), slog.String("error", err.Error()))
			return nil
		}
		report.Deleted++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweep walk failed: %w", err)
	}

	t.logger.InfoContext(ctx, "asset sweep finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("referenced", report.Referenced),
		slog.Int("deleted", report.Deleted),
		slog.Int("failed", len(report.Failed)))

	return report, nil
}
