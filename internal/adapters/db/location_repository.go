// internal/adapters/db/location_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// locationRepository implements ports.LocationRepository
type locationRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *Database, logger *slog.Logger) ports.LocationRepository {
	return &locationRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "location")),
	}
}

// Save creates a new storage location
func (r *locationRepository) Save(ctx context.Context, l *domain.Location) error {
	query := `
		INSERT INTO locations (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, l.ID, l.Name, l.Description, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}

	r.logger.DebugContext(ctx, "location saved", slog.String("location_id", l.ID.String()))

	return nil
}

// Update updates a location's name and description
func (r *locationRepository) Update(ctx context.Context, l *domain.Location) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE locations SET name = $2, description = $3 WHERE id = $1`,
		l.ID, l.Name, l.Description)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: location %s", domain.ErrNotFound, l.ID)
	}

	return nil
}

// FindByID retrieves a location with its photos, ordered by position.
func (r *locationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	var l domain.Location
	var description sql.NullString
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM locations WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &description, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: location %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find location: %w", err)
	}
	l.Description = description.String

	photos, err := r.photosFor(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Photos = photos

	return &l, nil
}

// Delete removes a location and its photo rows. The photo files themselves
// stay on disk until the tracker decides they are unreferenced.
func (r *locationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM location_photos WHERE location_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete location photos: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: location %s", domain.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "location deleted", slog.String("location_id", id.String()))

	return nil
}

// List retrieves locations with their photos, optionally filtered by name.
func (r *locationRepository) List(ctx context.Context, search string) ([]domain.Location, error) {
	query := `SELECT id, name, description, created_at FROM locations`
	var args []interface{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var l domain.Location
		var description sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &description, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		l.Description = description.String
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range locations {
		photos, err := r.photosFor(ctx, locations[i].ID)
		if err != nil {
			return nil, err
		}
		locations[i].Photos = photos
	}

	return locations, nil
}

// AddPhoto appends a find-photo to a location. Position is assigned after
// the current last photo when unset.
func (r *locationRepository) AddPhoto(ctx context.Context, p *domain.LocationPhoto) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if p.Position == 0 {
			err := tx.QueryRow(ctx,
				`SELECT COALESCE(MAX(position), 0) + 1 FROM location_photos WHERE location_id = $1`,
				p.LocationID,
			).Scan(&p.Position)
			if err != nil {
				return fmt.Errorf("failed to assign position: %w", err)
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO location_photos (id, location_id, photo_path, position, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			p.ID, p.LocationID, p.PhotoPath, p.Position, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to add location photo: %w", err)
		}
		return nil
	})
}

// DeletePhoto removes one find-photo row and returns its path so the
// caller can hand the file to the reference tracker.
func (r *locationRepository) DeletePhoto(ctx context.Context, photoID uuid.UUID) (string, error) {
	var path string
	err := r.db.QueryRow(ctx,
		`DELETE FROM location_photos WHERE id = $1 RETURNING photo_path`, photoID,
	).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: location photo %s", domain.ErrNotFound, photoID)
		}
		return "", fmt.Errorf("failed to delete location photo: %w", err)
	}
	return path, nil
}

// CountByPhoto counts location photo rows referencing a path.
func (r *locationRepository) CountByPhoto(ctx context.Context, photoPath string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM location_photos WHERE photo_path = $1`, photoPath,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count photo references: %w", err)
	}
	return count, nil
}

// ReferencedPhotoPaths returns every photo path any location points at.
func (r *locationRepository) ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT photo_path FROM location_photos`)
	if err != nil {
		return nil, fmt.Errorf("failed to query photo references: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan photo path: %w", err)
		}
		paths[p] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return paths, nil
}

func (r *locationRepository) photosFor(ctx context.Context, locationID uuid.UUID) ([]domain.LocationPhoto, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, location_id, photo_path, position, created_at
		FROM location_photos WHERE location_id = $1
		ORDER BY position ASC`, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query location photos: %w", err)
	}
	defer rows.Close()

	var photos []domain.LocationPhoto
	for rows.Next() {
		var p domain.LocationPhoto
		if err := rows.Scan(&p.ID, &p.LocationID, &p.PhotoPath, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return photos, nil
}
