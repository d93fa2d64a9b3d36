// internal/handlers/sales_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
	"github.com/anvikram/stocktrack-be/internal/handlers"
	"github.com/anvikram/stocktrack-be/test/helpers"
	"github.com/anvikram/stocktrack-be/test/mocks"
)

func newSalesHandler(t *testing.T) (*handlers.SalesHandler, *mocks.MockSalesService, *mocks.MockReconcileService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockSales := mocks.NewMockSalesService(ctrl)
	mockReconcile := mocks.NewMockReconcileService(ctrl)
	handler := handlers.NewSalesHandler(mockSales, mockReconcile, nil, helpers.TestLogger())
	return handler, mockSales, mockReconcile
}

func TestSalesHandler_ListSales(t *testing.T) {
	t.Run("returns_grouped_sales", func(t *testing.T) {
		handler, mockSales, _ := newSalesHandler(t)

		groups := []domain.SaleGroup{
			{RecipientName: "Alice", RecipientPhone: "555-0100"},
			{RecipientName: "Bob", RecipientPhone: "555-0101"},
		}
		mockSales.EXPECT().
			ListSales(gomock.Any(), gomock.Any()).
			Return(groups, nil)

		req := httptest.NewRequest("GET", "/api/v1/sales", nil)
		w := httptest.NewRecorder()

		handler.ListSales(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		var count int
		require.NoError(t, json.Unmarshal(response["count"], &count))
		assert.Equal(t, 2, count)
	})

	t.Run("service_error", func(t *testing.T) {
		handler, mockSales, _ := newSalesHandler(t)

		mockSales.EXPECT().
			ListSales(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("database connection failed"))

		req := httptest.NewRequest("GET", "/api/v1/sales", nil)
		w := httptest.NewRecorder()

		handler.ListSales(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSalesHandler_BulkReconcile(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockReconcileService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "mixed_outcome_returns_ok",
			body: `{"items":[{"barcode":"8901234567890","quantity":2,"recipient_name":"Alice","recipient_phone":"555-0100"},{"barcode":"BAD","quantity":0,"recipient_name":"","recipient_phone":""}]}`,
			setupMocks: func(m *mocks.MockReconcileService) {
				m.EXPECT().
					Reconcile(gomock.Any(), gomock.Len(2)).
					Return(&ports.ReconcileResult{Updated: 1, Failed: 1, Errors: []string{"row 2: missing recipient"}}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var result ports.ReconcileResult
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Equal(t, 1, result.Updated)
				assert.Equal(t, 1, result.Failed)
			},
		},
		{
			name: "all_rows_failed_returns_unprocessable",
			body: `{"items":[{"barcode":"BAD","quantity":0}]}`,
			setupMocks: func(m *mocks.MockReconcileService) {
				m.EXPECT().
					Reconcile(gomock.Any(), gomock.Any()).
					Return(&ports.ReconcileResult{Failed: 1, Errors: []string{"row 1: quantity must be positive"}}, nil)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "empty_items_is_a_noop",
			body: `{"items":[]}`,
			setupMocks: func(m *mocks.MockReconcileService) {
				m.EXPECT().
					Reconcile(gomock.Any(), gomock.Len(0)).
					Return(&ports.ReconcileResult{}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var result ports.ReconcileResult
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Zero(t, result.Updated)
				assert.Zero(t, result.Created)
				assert.Zero(t, result.Failed)
			},
		},
		{
			name:           "malformed_body",
			body:           `{"items":`,
			setupMocks:     func(m *mocks.MockReconcileService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service_error",
			body: `{"items":[{"barcode":"8901234567890","quantity":2}]}`,
			setupMocks: func(m *mocks.MockReconcileService) {
				m.EXPECT().
					Reconcile(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database connection failed"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, mockReconcile := newSalesHandler(t)
			tt.setupMocks(mockReconcile)

			req := httptest.NewRequest("PUT", "/api/v1/sales/bulk", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.BulkReconcile(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}
