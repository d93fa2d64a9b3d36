// internal/core/ports/photo.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
)

// PhotoStore defines the port for the shared photo asset store. Assets live
// under a single configurable root, one subdirectory per category, and are
// always addressed by category-relative path.
type PhotoStore interface {
	// Persist decodes an inbound data: payload, compresses it and writes it
	// under the category directory with a collision-free name derived from
	// the owner key. It returns the relative path to store in records.
	// Undecodable payloads yield domain.ErrProcessingFailed.
	Persist(ctx context.Context, category domain.PhotoCategory, ownerKey, payload string) (string, error)
	// Remove deletes the file behind a relative path. Missing files are not
	// an error.
	Remove(ctx context.Context, relPath string) error
	// Walk visits every persisted asset path, relative to the root.
	Walk(ctx context.Context, visit func(relPath string) error) error
}

// SweepReport summarizes one orphan sweep over the asset root.
type SweepReport struct {
	Scanned    int      `json:"scanned"`
	Referenced int      `json:"referenced"`
	Deleted    int      `json:"deleted"`
	Failed     []string `json:"failed,omitempty"`
}

// ReferenceTracker defines the port that guards shared photo assets.
// Deletion of an asset file is only ever performed through it.
type ReferenceTracker interface {
	// References counts how many records point at a path, excluding at most
	// one ledger entry by id.
	References(ctx context.Context, relPath string, excludeEntry uuid.UUID) (int64, error)
	// SafeDelete removes the file only when no record besides the excluded
	// entry references it. It reports whether the file was deleted.
	SafeDelete(ctx context.Context, relPath string, excludeEntry uuid.UUID) (bool, error)
	// ForceSupersede repoints every record of one recipient identity at
	// newPath and deletes the displaced files unconditionally.
	ForceSupersede(ctx context.Context, name, phone, newPath string) error
	// Sweep walks the asset root and deletes every file no record references.
	Sweep(ctx context.Context) (*SweepReport, error)
}
