// internal/core/services/reconcile_service_test.go
package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
	"github.com/anvikram/stocktrack-be/internal/core/services"
	"github.com/anvikram/stocktrack-be/test/helpers"
	"github.com/anvikram/stocktrack-be/test/mocks"
)

func newReconcileService(t *testing.T) (*services.ReconcileService, ledgerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := ledgerMocks{
		repo:    mocks.NewMockLedgerRepository(ctrl),
		photos:  mocks.NewMockPhotoStore(ctrl),
		tracker: mocks.NewMockReferenceTracker(ctrl),
	}
	svc := services.NewReconcileService(m.repo, m.photos, m.tracker, helpers.TestLogger())
	return svc, m
}

func TestReconcileService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("live_entry_updates_in_place_without_moving_stock", func(t *testing.T) {
		svc, m := newReconcileService(t)
		id := uuid.New()
		existing := helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
			e.ID = id
			e.Direction = domain.DirectionOut
			e.Quantity = 2
		})

		m.repo.EXPECT().FindByID(gomock.Any(), id).Return(existing, nil)
		// UpdateMetadata, not Update: the row follows the sheet but the
		// product quantity is never re-adjusted.
		m.repo.EXPECT().
			UpdateMetadata(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *domain.LedgerEntry) error {
				assert.Equal(t, 5, e.Quantity)
				assert.Equal(t, domain.DirectionOut, e.Direction)
				assert.Equal(t, "Bob", e.RecipientName)
				assert.Equal(t, "corrected memo", e.Memo)
				return nil
			})

		result, err := svc.Reconcile(ctx, []ports.ReconcileItem{{
			EntryID:        id.String(),
			Barcode:        existing.Barcode,
			Quantity:       5,
			RecipientName:  "Bob",
			RecipientPhone: "555-0200",
			Memo:           "corrected memo",
		}})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
		assert.Zero(t, result.Created)
		assert.Zero(t, result.Failed)
	})

	t.Run("stale_entry_id_creates_fresh_out_movement", func(t *testing.T) {
		svc, m := newReconcileService(t)
		stale := uuid.New()

		m.repo.EXPECT().FindByID(gomock.Any(), stale).
			Return(nil, fmt.Errorf("%w: entry %s", domain.ErrNotFound, stale))
		m.repo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *domain.LedgerEntry) error {
				assert.Equal(t, domain.DirectionOut, e.Direction)
				assert.Equal(t, 2, e.Quantity)
				assert.Equal(t, "8901234567890", e.Barcode)
				return nil
			})

		result, err := svc.Reconcile(ctx, []ports.ReconcileItem{{
			EntryID:        stale.String(),
			Barcode:        "8901234567890",
			Quantity:       2,
			RecipientName:  "Alice",
			RecipientPhone: "555-0100",
		}})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
	})

	t.Run("photo_propagation_force_supersedes", func(t *testing.T) {
		svc, m := newReconcileService(t)
		id := uuid.New()
		existing := helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
			e.ID = id
			e.Direction = domain.DirectionOut
		})

		m.repo.EXPECT().FindByID(gomock.Any(), id).Return(existing, nil)
		m.repo.EXPECT().UpdateMetadata(gomock.Any(), gomock.Any()).Return(nil)
		m.photos.EXPECT().
			Persist(gomock.Any(), domain.CategoryCustomer, "555-0100", gomock.Any()).
			Return("customer_photos/555-0100_20240101_000000.jpg", nil)
		m.tracker.EXPECT().
			ForceSupersede(gomock.Any(), "Alice", "555-0100", "customer_photos/555-0100_20240101_000000.jpg").
			Return(nil)

		result, err := svc.Reconcile(ctx, []ports.ReconcileItem{{
			EntryID:        id.String(),
			Barcode:        existing.Barcode,
			RecipientName:  "Alice",
			RecipientPhone: "555-0100",
			RecipientPhoto: "data:image/jpeg;base64,AAAA",
		}})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
	})

	t.Run("one_bad_row_does_not_abort_the_batch", func(t *testing.T) {
		svc, m := newReconcileService(t)

		m.repo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(nil)

		result, err := svc.Reconcile(ctx, []ports.ReconcileItem{
			{Barcode: "", Quantity: 1, RecipientName: "Alice"},
			{Barcode: "8901234567890", Quantity: 1, RecipientName: "Bob"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, result.Created)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "barcode is required")
	})

	t.Run("empty_batch_is_a_noop", func(t *testing.T) {
		svc, _ := newReconcileService(t)
		result, err := svc.Reconcile(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, result.Updated)
		assert.Zero(t, result.Created)
		assert.Zero(t, result.Failed)
	})
}

func TestSalesService_ListSales(t *testing.T) {
	t.Run("groups_out_entries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockLedgerRepository(ctrl)
		svc := services.NewSalesService(repo, helpers.TestLogger())

		entries := []domain.LedgerEntry{
			*helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
				e.Direction = domain.DirectionOut
				e.RecipientName = "Alice"
				e.RecipientPhone = "555-0100"
			}),
		}

		repo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, params ports.LedgerListParams) (*ports.LedgerListResult, error) {
				assert.Equal(t, "OUT", params.Direction)
				return &ports.LedgerListResult{Entries: entries}, nil
			})

		groups, err := svc.ListSales(context.Background(), ports.LedgerListParams{})
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Alice", groups[0].RecipientName)
	})

	t.Run("fetches_all_entries_regardless_of_page_params", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockLedgerRepository(ctrl)
		svc := services.NewSalesService(repo, helpers.TestLogger())

		// One sale, two members. Were pagination honored, a page boundary
		// between them would yield two half groups.
		when := time.Date(2024, 3, 1, 12, 30, 10, 0, time.UTC)
		entries := []domain.LedgerEntry{
			*helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
				e.Direction = domain.DirectionOut
				e.RecipientName = "Alice"
				e.RecipientPhone = "555-0100"
				e.CreatedAt = when
			}),
			*helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
				e.ID = uuid.New()
				e.Direction = domain.DirectionOut
				e.RecipientName = "Alice"
				e.RecipientPhone = "555-0100"
				e.CreatedAt = when.Add(20 * time.Second)
			}),
		}

		repo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, params ports.LedgerListParams) (*ports.LedgerListResult, error) {
				assert.Zero(t, params.Page)
				assert.Zero(t, params.PageSize)
				return &ports.LedgerListResult{Entries: entries}, nil
			})

		groups, err := svc.ListSales(context.Background(), ports.LedgerListParams{Page: 2, PageSize: 50})
		require.NoError(t, err)
		require.Len(t, groups, 1)
	})
}
