// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// productRepository implements ports.ProductRepository
type productRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *Database, logger *slog.Logger) ports.ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "product")),
	}
}

// Save creates a new catalog product
func (r *productRepository) Save(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (barcode, name, mrp, quantity, image_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		p.Barcode, p.Name, p.Price, p.Quantity, p.ImagePath, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: product %s already exists", domain.ErrConflict, p.Barcode)
		}
		return fmt.Errorf("failed to save product: %w", err)
	}

	r.logger.DebugContext(ctx, "product saved", slog.String("barcode", p.Barcode))

	return nil
}

// Update updates an existing product. Quantity is not written here; only
// ledger movements move stock.
func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products SET name = $2, mrp = $3, image_path = $4
		WHERE barcode = $1`

	tag, err := r.db.Exec(ctx, query, p.Barcode, p.Name, p.Price, p.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, p.Barcode)
	}

	return nil
}

// FindByBarcode retrieves a product by its barcode
func (r *productRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	query := `
		SELECT barcode, name, mrp, quantity, image_path, created_at
		FROM products WHERE barcode = $1`

	var p domain.Product
	var imagePath sql.NullString
	err := r.db.QueryRow(ctx, query, barcode).Scan(
		&p.Barcode, &p.Name, &p.Price, &p.Quantity, &imagePath, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, barcode)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	p.ImagePath = imagePath.String

	return &p, nil
}

// Delete removes a product. Ledger entries for its barcode stay behind as
// dangling movements.
func (r *productRepository) Delete(ctx context.Context, barcode string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE barcode = $1`, barcode)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, barcode)
	}

	r.logger.InfoContext(ctx, "product deleted", slog.String("barcode", barcode))

	return nil
}

// List retrieves products with search and pagination
func (r *productRepository) List(ctx context.Context, params ports.ProductListParams) (*ports.ProductListResult, error) {
	qb := squirrel.Select("barcode", "name", "mrp", "quantity", "image_path", "created_at").
		From("products").
		PlaceholderFormat(squirrel.Dollar)

	if params.Search != "" {
		like := "%" + params.Search + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"barcode": like},
			squirrel.ILike{"name": like},
		})
	}

	countQb := qb.Column("COUNT(*) OVER()").Limit(1)
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	err = r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy := "created_at DESC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}
		switch params.SortBy {
		case "name":
			orderBy = fmt.Sprintf("name %s", direction)
		case "quantity":
			orderBy = fmt.Sprintf("quantity %s", direction)
		case "price":
			orderBy = fmt.Sprintf("mrp %s", direction)
		default:
			orderBy = fmt.Sprintf("created_at %s", direction)
		}
	}
	qb = qb.OrderBy(orderBy)

	if params.PageSize > 0 {
		qb = qb.Limit(uint64(params.PageSize))
		if params.Page > 1 {
			qb = qb.Offset(uint64((params.Page - 1) * params.PageSize))
		}
	}

	listSQL, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var imagePath sql.NullString
		err := rows.Scan(&p.Barcode, &p.Name, &p.Price, &p.Quantity, &imagePath, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.ImagePath = imagePath.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	var totalPages int
	if params.PageSize > 0 {
		totalPages = int(totalCount) / params.PageSize
		if int(totalCount)%params.PageSize > 0 {
			totalPages++
		}
	}

	return &ports.ProductListResult{
		Products:   products,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// Count returns the total number of products
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// ReferencedPhotoPaths returns every image path any product points at.
func (r *productRepository) ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT image_path FROM products WHERE image_path IS NOT NULL AND image_path != ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query image references: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan image path: %w", err)
		}
		paths[p] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return paths, nil
}
