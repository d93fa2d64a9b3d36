// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// ledgerRepository implements ports.LedgerRepository
type ledgerRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *Database, logger *slog.Logger) ports.LedgerRepository {
	return &ledgerRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

// ledgerColumns is spliced between SELECT and FROM literals, so it carries
// its own surrounding whitespace.
const ledgerColumns = `
	id, barcode, direction, quantity,
	recipient_name, recipient_phone, recipient_photo,
	memo, notes, created_at
	`

// Save inserts the entry and adjusts the product quantity in one
// transaction. A barcode with no catalog row updates zero rows, which is
// fine: movements for unknown barcodes are first-class.
func (r *ledgerRepository) Save(ctx context.Context, entry *domain.LedgerEntry) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO ledger_entries (
				id, barcode, direction, quantity,
				recipient_name, recipient_phone, recipient_photo,
				memo, notes, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err := tx.Exec(ctx, query,
			entry.ID, entry.Barcode, entry.Direction, entry.Quantity,
			entry.RecipientName, entry.RecipientPhone, entry.RecipientPhoto,
			entry.Memo, entry.Notes, entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}

		return applyProductDelta(ctx, tx, entry.Barcode, entry.QuantityDelta())
	})
	if err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "ledger entry saved",
		slog.String("entry_id", entry.ID.String()),
		slog.String("barcode", entry.Barcode))

	return nil
}

// Update rewrites the entry and applies only the differential quantity
// effect, sign(direction) * (new - old), to the product. Rewriting the
// same quantity is a no-op on stock.
func (r *ledgerRepository) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var oldDirection string
		var oldQuantity int
		err := tx.QueryRow(ctx,
			`SELECT direction, quantity FROM ledger_entries WHERE id = $1 FOR UPDATE`,
			entry.ID,
		).Scan(&oldDirection, &oldQuantity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: entry %s", domain.ErrNotFound, entry.ID)
			}
			return fmt.Errorf("failed to lock entry: %w", err)
		}

		query := `
			UPDATE ledger_entries SET
				barcode = $2, direction = $3, quantity = $4,
				recipient_name = $5, recipient_phone = $6, recipient_photo = $7,
				memo = $8, notes = $9
			WHERE id = $1`

		_, err = tx.Exec(ctx, query,
			entry.ID, entry.Barcode, entry.Direction, entry.Quantity,
			entry.RecipientName, entry.RecipientPhone, entry.RecipientPhoto,
			entry.Memo, entry.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		old := domain.LedgerEntry{Direction: domain.Direction(oldDirection), Quantity: oldQuantity}
		delta := entry.QuantityDelta() - old.QuantityDelta()
		return applyProductDelta(ctx, tx, entry.Barcode, delta)
	})
	if err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "ledger entry updated",
		slog.String("entry_id", entry.ID.String()))

	return nil
}

// UpdateMetadata rewrites the row, quantity included, without touching the
// product. Barcode and direction stay fixed so the row's original stock
// effect remains accounted for.
func (r *ledgerRepository) UpdateMetadata(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
		UPDATE ledger_entries SET
			quantity = $2,
			recipient_name = $3, recipient_phone = $4, recipient_photo = $5,
			memo = $6, notes = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		entry.ID, entry.Quantity,
		entry.RecipientName, entry.RecipientPhone, entry.RecipientPhoto,
		entry.Memo, entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s", domain.ErrNotFound, entry.ID)
	}

	r.logger.DebugContext(ctx, "ledger entry metadata updated",
		slog.String("entry_id", entry.ID.String()))

	return nil
}

// Delete removes the entry after reversing its original effect, so a
// record followed by its deletion leaves the product quantity untouched.
func (r *ledgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var barcode, direction string
		var quantity int
		err := tx.QueryRow(ctx,
			`SELECT barcode, direction, quantity FROM ledger_entries WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&barcode, &direction, &quantity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: entry %s", domain.ErrNotFound, id)
			}
			return fmt.Errorf("failed to lock entry: %w", err)
		}

		old := domain.LedgerEntry{Direction: domain.Direction(direction), Quantity: quantity}
		if err := applyProductDelta(ctx, tx, barcode, -old.QuantityDelta()); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "ledger entry deleted", slog.String("entry_id", id.String()))

	return nil
}

// applyProductDelta shifts the product quantity by delta. Zero rows
// affected means the barcode has no catalog product; the movement still
// stands on its own.
func applyProductDelta(ctx context.Context, tx pgx.Tx, barcode string, delta int) error {
	if delta == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`UPDATE products SET quantity = quantity + $2 WHERE barcode = $1`,
		barcode, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust product quantity: %w", err)
	}
	return nil
}

// FindByID retrieves a ledger entry by id
func (r *ledgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query := `SELECT` + ledgerColumns + `FROM ledger_entries WHERE id = $1`

	entry, err := scanLedgerRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entry %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	return entry, nil
}

// List retrieves ledger entries with filtering and pagination, joined with
// the catalog for display names.
func (r *ledgerRepository) List(ctx context.Context, params ports.LedgerListParams) (*ports.LedgerListResult, error) {
	qb := squirrel.Select(
		"l.id", "l.barcode", "l.direction", "l.quantity",
		"l.recipient_name", "l.recipient_phone", "l.recipient_photo",
		"l.memo", "l.notes", "l.created_at",
		"p.name",
	).From("ledger_entries l").
		LeftJoin("products p ON p.barcode = l.barcode").
		PlaceholderFormat(squirrel.Dollar)

	if params.Barcode != "" {
		qb = qb.Where(squirrel.Eq{"l.barcode": params.Barcode})
	}
	if params.Direction != "" {
		qb = qb.Where(squirrel.Eq{"l.direction": params.Direction})
	}
	if params.Recipient != "" {
		qb = qb.Where(squirrel.Or{
			squirrel.Eq{"l.recipient_name": params.Recipient},
			squirrel.Eq{"l.recipient_phone": params.Recipient},
		})
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"l.barcode": like},
			squirrel.ILike{"l.recipient_name": like},
			squirrel.ILike{"l.memo": like},
			squirrel.ILike{"p.name": like},
		})
	}
	if params.DateFrom != "" {
		qb = qb.Where("l.created_at >= ?", params.DateFrom)
	}
	if params.DateTo != "" {
		qb = qb.Where("l.created_at <= ?", params.DateTo)
	}

	countQb := qb.Column("COUNT(*) OVER()").Limit(1)
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	err = r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	orderBy := "l.created_at DESC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}
		switch params.SortBy {
		case "barcode":
			orderBy = fmt.Sprintf("l.barcode %s", direction)
		case "quantity":
			orderBy = fmt.Sprintf("l.quantity %s", direction)
		case "recipient":
			orderBy = fmt.Sprintf("l.recipient_name %s", direction)
		default:
			orderBy = fmt.Sprintf("l.created_at %s", direction)
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
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var recipientName, recipientPhone, recipientPhoto sql.NullString
		var memo, notes, productName sql.NullString

		err := rows.Scan(
			&e.ID, &e.Barcode, &e.Direction, &e.Quantity,
			&recipientName, &recipientPhone, &recipientPhoto,
			&memo, &notes, &e.CreatedAt,
			&productName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		e.RecipientName = recipientName.String
		e.RecipientPhone = recipientPhone.String
		e.RecipientPhoto = recipientPhoto.String
		e.Memo = memo.String
		e.Notes = notes.String
		e.ProductName = productName.String

		entries = append(entries, e)
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

	return &ports.LedgerListResult{
		Entries:    entries,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// CountByPhoto counts entries referencing a photo path, excluding at most
// one entry by id.
func (r *ledgerRepository) CountByPhoto(ctx context.Context, photoPath string, excludeID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM ledger_entries WHERE recipient_photo = $1 AND id != $2`

	var count int64
	err := r.db.QueryRow(ctx, query, photoPath, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count photo references: %w", err)
	}
	return count, nil
}

// UpdatePhotoForRecipient repoints every entry of one recipient identity at
// photoPath and returns the distinct persisted paths it displaced.
func (r *ledgerRepository) UpdatePhotoForRecipient(ctx context.Context, name, phone, photoPath string) ([]string, error) {
	var displaced []string

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT DISTINCT recipient_photo FROM ledger_entries
			WHERE recipient_name = $1 AND recipient_phone = $2
			  AND recipient_photo != '' AND recipient_photo != $3`,
			name, phone, photoPath,
		)
		if err != nil {
			return fmt.Errorf("failed to collect displaced photos: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				return fmt.Errorf("failed to scan photo path: %w", err)
			}
			displaced = append(displaced, p)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating rows: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE ledger_entries SET recipient_photo = $3
			WHERE recipient_name = $1 AND recipient_phone = $2`,
			name, phone, photoPath,
		)
		if err != nil {
			return fmt.Errorf("failed to repoint photos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "recipient photo superseded",
		slog.String("recipient", name),
		slog.Int("displaced", len(displaced)))

	return displaced, nil
}

// ReferencedPhotoPaths returns every photo path any ledger row points at.
func (r *ledgerRepository) ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT recipient_photo FROM ledger_entries WHERE recipient_photo != ''`)
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

func scanLedgerRow(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var recipientName, recipientPhone, recipientPhoto sql.NullString
	var memo, notes sql.NullString

	err := row.Scan(
		&e.ID, &e.Barcode, &e.Direction, &e.Quantity,
		&recipientName, &recipientPhone, &recipientPhoto,
		&memo, &notes, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.RecipientName = recipientName.String
	e.RecipientPhone = recipientPhone.String
	e.RecipientPhoto = recipientPhoto.String
	e.Memo = memo.String
	e.Notes = notes.String

	return &e, nil
}
