// internal/core/domain/location.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Location is a physical storage spot ("where is it stored") with an
// ordered collection of find-photos.
type Location struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Photos      []LocationPhoto `json:"photos,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LocationPhoto is one image of a location, ordered by Position.
type LocationPhoto struct {
	ID         uuid.UUID `json:"id"`
	LocationID uuid.UUID `json:"location_id"`
	PhotoPath  string    `json:"photo_path"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate performs domain validation on the location
func (l *Location) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

// PrepareForStorage assigns an identity and creation timestamp if unset.
func (l *Location) PrepareForStorage() {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
}
