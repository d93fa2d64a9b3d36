// internal/core/services/ledger_service_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/services"
	"github.com/anvikram/stocktrack-be/test/helpers"
	"github.com/anvikram/stocktrack-be/test/mocks"
)

type ledgerMocks struct {
	repo    *mocks.MockLedgerRepository
	photos  *mocks.MockPhotoStore
	tracker *mocks.MockReferenceTracker
}

func newLedgerService(t *testing.T) (*services.LedgerService, ledgerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := ledgerMocks{
		repo:    mocks.NewMockLedgerRepository(ctrl),
		photos:  mocks.NewMockPhotoStore(ctrl),
		tracker: mocks.NewMockReferenceTracker(ctrl),
	}
	svc := services.NewLedgerService(m.repo, m.photos, m.tracker, helpers.TestLogger())
	return svc, m
}

func TestLedgerService_Record(t *testing.T) {
	tests := []struct {
		name          string
		entry         *domain.LedgerEntry
		setupMocks    func(m ledgerMocks)
		expectedError bool
		errorContains string
	}{
		{
			name:  "successful_record_without_photo",
			entry: helpers.CreateTestLedgerEntry(),
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "validation_fails_for_missing_barcode",
			entry: helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
				e.Barcode = ""
			}),
			setupMocks:    func(m ledgerMocks) {},
			expectedError: true,
			errorContains: "barcode is required",
		},
		{
			name: "encoded_photo_is_persisted_before_save",
			entry: helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
				e.RecipientPhoto = "data:image/jpeg;base64,AAAA"
			}),
			setupMocks: func(m ledgerMocks) {
				m.photos.EXPECT().
					Persist(gomock.Any(), domain.CategoryCustomer, gomock.Any(), "data:image/jpeg;base64,AAAA").
					Return("customer_photos/p_20240101_000000.jpg", nil)
				m.repo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, e *domain.LedgerEntry) error {
						assert.Equal(t, "customer_photos/p_20240101_000000.jpg", e.RecipientPhoto)
						return nil
					})
			},
		},
		{
			name: "undecodable_photo_fails_before_any_write",
			entry: helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
				e.RecipientPhoto = "data:image/jpeg;base64,???"
			}),
			setupMocks: func(m ledgerMocks) {
				m.photos.EXPECT().
					Persist(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", fmt.Errorf("%w: invalid base64", domain.ErrProcessingFailed))
			},
			expectedError: true,
			errorContains: "persist recipient photo",
		},
		{
			name: "failed_save_discards_fresh_photo",
			entry: helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
				e.RecipientPhoto = "data:image/jpeg;base64,AAAA"
			}),
			setupMocks: func(m ledgerMocks) {
				m.photos.EXPECT().
					Persist(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("customer_photos/p_20240101_000000.jpg", nil)
				m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
					Return(errors.New("connection reset"))
				m.photos.EXPECT().
					Remove(gomock.Any(), "customer_photos/p_20240101_000000.jpg").
					Return(nil)
			},
			expectedError: true,
			errorContains: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedgerService(t)
			tt.setupMocks(m)

			err := svc.Record(context.Background(), tt.entry)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, tt.entry.ID)
			}
		})
	}
}

func TestLedgerService_UpdateEntry(t *testing.T) {
	t.Run("displaced_photo_goes_through_safe_delete", func(t *testing.T) {
		svc, m := newLedgerService(t)
		id := uuid.New()
		existing := helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
			e.ID = id
			e.RecipientPhoto = "customer_photos/old_20240101_000000.jpg"
		})

		m.repo.EXPECT().FindByID(gomock.Any(), id).Return(existing, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.tracker.EXPECT().
			SafeDelete(gomock.Any(), "customer_photos/old_20240101_000000.jpg", id).
			Return(true, nil)

		updated := helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
			e.RecipientPhoto = ""
			e.Quantity = 9
		})
		require.NoError(t, svc.UpdateEntry(context.Background(), id, updated))
		assert.Equal(t, id, updated.ID)
	})

	t.Run("unchanged_photo_is_left_alone", func(t *testing.T) {
		svc, m := newLedgerService(t)
		id := uuid.New()
		existing := helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
			e.ID = id
			e.RecipientPhoto = "customer_photos/same.jpg"
		})

		m.repo.EXPECT().FindByID(gomock.Any(), id).Return(existing, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		updated := helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
			e.RecipientPhoto = "customer_photos/same.jpg"
		})
		require.NoError(t, svc.UpdateEntry(context.Background(), id, updated))
	})

	t.Run("missing_entry_is_not_found", func(t *testing.T) {
		svc, m := newLedgerService(t)
		id := uuid.New()

		m.repo.EXPECT().FindByID(gomock.Any(), id).
			Return(nil, fmt.Errorf("%w: entry %s", domain.ErrNotFound, id))

		err := svc.UpdateEntry(context.Background(), id, helpers.CreateTestLedgerEntry())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLedgerService_DeleteEntry(t *testing.T) {
	t.Run("photo_cleanup_runs_after_durable_delete", func(t *testing.T) {
		svc, m := newLedgerService(t)
		id := uuid.New()
		existing := helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
			e.ID = id
			e.RecipientPhoto = "customer_photos/a.jpg"
		})

		gomock.InOrder(
			m.repo.EXPECT().FindByID(gomock.Any(), id).Return(existing, nil),
			m.repo.EXPECT().Delete(gomock.Any(), id).Return(nil),
			m.tracker.EXPECT().
				SafeDelete(gomock.Any(), "customer_photos/a.jpg", uuid.Nil).
				Return(false, nil),
		)

		require.NoError(t, svc.DeleteEntry(context.Background(), id))
	})

	t.Run("failed_delete_never_touches_the_photo", func(t *testing.T) {
		svc, m := newLedgerService(t)
		id := uuid.New()
		existing := helpers.CreateTestLedgerEntry(func(e *domain.LedgerEntry) {
			e.ID = id
			e.RecipientPhoto = "customer_photos/a.jpg"
		})

		m.repo.EXPECT().FindByID(gomock.Any(), id).Return(existing, nil)
		m.repo.EXPECT().Delete(gomock.Any(), id).Return(errors.New("deadlock detected"))

		err := svc.DeleteEntry(context.Background(), id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deadlock detected")
	})
}
