// internal/core/domain/customer.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Customer represents a known sale recipient. Phone is the unique key; the
// photo path, when set, is the single current photo for this identity
// (older ones are force-superseded on replacement).
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	PhotoPath string    `json:"photo_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate performs domain validation on the customer
func (c *Customer) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if c.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return nil
}

// PrepareForStorage assigns an identity and creation timestamp if unset.
func (c *Customer) PrepareForStorage() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
}
