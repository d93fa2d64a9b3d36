// internal/adapters/db/customer_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// customerRepository implements ports.CustomerRepository
type customerRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *Database, logger *slog.Logger) ports.CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "customer")),
	}
}

// Save creates a new customer. Phone is unique across customers.
func (r *customerRepository) Save(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, phone, photo_path, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Phone, c.PhotoPath, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: phone %s already registered", domain.ErrConflict, c.Phone)
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}

	r.logger.DebugContext(ctx, "customer saved", slog.String("customer_id", c.ID.String()))

	return nil
}

// Update updates an existing customer
func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name = $2, phone = $3, photo_path = $4 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Phone, c.PhotoPath)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: phone %s already registered", domain.ErrConflict, c.Phone)
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %s", domain.ErrNotFound, c.ID)
	}

	return nil
}

// FindByID retrieves a customer by id
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, phone, photo_path, created_at FROM customers WHERE id = $1`, id)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return c, nil
}

// FindByPhone retrieves a customer by phone number
func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, phone, photo_path, created_at FROM customers WHERE phone = $1`, phone)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer with phone %s", domain.ErrNotFound, phone)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return c, nil
}

// Delete removes a customer
func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %s", domain.ErrNotFound, id)
	}

	r.logger.InfoContext(ctx, "customer deleted", slog.String("customer_id", id.String()))

	return nil
}

// List retrieves customers, optionally filtered by a name or phone search.
func (r *customerRepository) List(ctx context.Context, search string) ([]domain.Customer, error) {
	query := `SELECT id, name, phone, photo_path, created_at FROM customers`
	var args []interface{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	customers, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Customer, error) {
		return scanCustomer(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan customers: %w", err)
	}

	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		out = append(out, *c)
	}
	return out, nil
}

// ReferencedPhotoPaths returns every photo path any customer points at.
func (r *customerRepository) ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT photo_path FROM customers WHERE photo_path IS NOT NULL AND photo_path != ''`)
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

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var photoPath sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &photoPath, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.PhotoPath = photoPath.String
	return &c, nil
}
