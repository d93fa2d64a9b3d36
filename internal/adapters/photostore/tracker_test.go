package photostore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anvikram/stocktrack-be/internal/adapters/photostore"
	"github.com/anvikram/stocktrack-be/test/helpers"
	"github.com/anvikram/stocktrack-be/test/mocks"
)

type trackerMocks struct {
	store     *mocks.MockPhotoStore
	ledger    *mocks.MockLedgerRepository
	products  *mocks.MockProductRepository
	customers *mocks.MockCustomerRepository
	locations *mocks.MockLocationRepository
}

func newTracker(t *testing.T) (*photostore.Tracker, trackerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := trackerMocks{
		store:     mocks.NewMockPhotoStore(ctrl),
		ledger:    mocks.NewMockLedgerRepository(ctrl),
		products:  mocks.NewMockProductRepository(ctrl),
		customers: mocks.NewMockCustomerRepository(ctrl),
		locations: mocks.NewMockLocationRepository(ctrl),
	}
	tracker := photostore.NewTracker(
		m.store, m.ledger, m.products, m.customers, m.locations, helpers.TestLogger())
	return tracker, m
}

func TestTracker_SafeDelete(t *testing.T) {
	ctx := context.Background()
	path := "customer_photos/a_20240101_000000.jpg"

	t.Run("keeps_file_while_referenced", func(t *testing.T) {
		tracker, m := newTracker(t)

		m.ledger.EXPECT().CountByPhoto(gomock.Any(), path, uuid.Nil).Return(int64(2), nil)
		m.locations.EXPECT().CountByPhoto(gomock.Any(), path).Return(int64(0), nil)
		m.products.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)
		m.customers.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)

		deleted, err := tracker.SafeDelete(ctx, path, uuid.Nil)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("deletes_when_no_references_remain", func(t *testing.T) {
		tracker, m := newTracker(t)

		m.ledger.EXPECT().CountByPhoto(gomock.Any(), path, uuid.Nil).Return(int64(0), nil)
		m.locations.EXPECT().CountByPhoto(gomock.Any(), path).Return(int64(0), nil)
		m.products.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)
		m.customers.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)
		m.store.EXPECT().Remove(gomock.Any(), path).Return(nil)

		deleted, err := tracker.SafeDelete(ctx, path, uuid.Nil)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("counts_customer_record_as_reference", func(t *testing.T) {
		tracker, m := newTracker(t)

		m.ledger.EXPECT().CountByPhoto(gomock.Any(), path, uuid.Nil).Return(int64(0), nil)
		m.locations.EXPECT().CountByPhoto(gomock.Any(), path).Return(int64(0), nil)
		m.products.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)
		m.customers.EXPECT().ReferencedPhotoPaths(gomock.Any()).
			Return(map[string]struct{}{path: {}}, nil)

		deleted, err := tracker.SafeDelete(ctx, path, uuid.Nil)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestTracker_ForceSupersede(t *testing.T) {
	ctx := context.Background()
	newPath := "customer_photos/a_20240102_000000.jpg"
	oldPath := "customer_photos/a_20240101_000000.jpg"

	tracker, m := newTracker(t)

	m.ledger.EXPECT().
		UpdatePhotoForRecipient(gomock.Any(), "Alice", "555-0100", newPath).
		Return([]string{oldPath}, nil)

	// Displaced path goes through SafeDelete; nothing else references it.
	m.ledger.EXPECT().CountByPhoto(gomock.Any(), oldPath, uuid.Nil).Return(int64(0), nil)
	m.locations.EXPECT().CountByPhoto(gomock.Any(), oldPath).Return(int64(0), nil)
	m.products.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)
	m.customers.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().Remove(gomock.Any(), oldPath).Return(nil)

	require.NoError(t, tracker.ForceSupersede(ctx, "Alice", "555-0100", newPath))
}

func TestTracker_Sweep(t *testing.T) {
	ctx := context.Background()
	tracker, m := newTracker(t)

	referenced := "customer_photos/kept.jpg"
	orphan := "product_photos/orphan.jpg"

	m.ledger.EXPECT().ReferencedPhotoPaths(gomock.Any()).
		Return(map[string]struct{}{referenced: {}}, nil)
	m.products.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)
	m.customers.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)
	m.locations.EXPECT().ReferencedPhotoPaths(gomock.Any()).Return(nil, nil)

	m.store.EXPECT().Walk(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, visit func(string) error) error {
			require.NoError(t, visit(referenced))
			require.NoError(t, visit(orphan))
			return nil
		})
	m.store.EXPECT().Remove(gomock.Any(), orphan).Return(nil)

	report, err := tracker.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Referenced)
	assert.Equal(t, 1, report.Deleted)
	assert.Empty(t, report.Failed)
}
