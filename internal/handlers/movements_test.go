// internal/handlers/movements_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
	"github.com/anvikram/stocktrack-be/internal/handlers"
	"github.com/anvikram/stocktrack-be/test/helpers"
	"github.com/anvikram/stocktrack-be/test/mocks"
)

func newMovementHandler(t *testing.T) (*handlers.MovementHandler, *mocks.MockLedgerService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockLedgerService(ctrl)
	handler := handlers.NewMovementHandler(mockService, nil, helpers.TestLogger())
	return handler, mockService
}

func TestMovementHandler_CreateMovement(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockLedgerService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "successfully_records_movement",
			body: `{"barcode":"8901234567890","transaction_type":"out","quantity":2,"recipient_name":"Alice","recipient_phone":"555-0100"}`,
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					Record(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ interface{}, entry *domain.LedgerEntry) error {
						assert.Equal(t, "8901234567890", entry.Barcode)
						assert.Equal(t, domain.DirectionOut, entry.Direction)
						assert.Equal(t, 2, entry.Quantity)
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var response domain.LedgerEntry
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "8901234567890", response.Barcode)
			},
		},
		{
			name:           "malformed_body",
			body:           `{"barcode":`,
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "validation_error_from_service",
			body: `{"barcode":"8901234567890","transaction_type":"SIDEWAYS","quantity":2}`,
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					Record(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("%w: direction must be IN or OUT", domain.ErrValidation))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service_error",
			body: `{"barcode":"8901234567890","transaction_type":"IN","quantity":5}`,
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					Record(gomock.Any(), gomock.Any()).
					Return(errors.New("database connection failed"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "Failed to record transaction", response["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := newMovementHandler(t)
			tt.setupMocks(mockService)

			req := httptest.NewRequest("POST", "/api/v1/transactions", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.CreateMovement(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestMovementHandler_GetMovement(t *testing.T) {
	testEntry := helpers.CreateTestLedgerEntry()

	tests := []struct {
		name           string
		entryID        string
		setupMocks     func(*mocks.MockLedgerService)
		expectedStatus int
	}{
		{
			name:    "successfully_retrieves_movement",
			entryID: testEntry.ID.String(),
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					GetByID(gomock.Any(), testEntry.ID).
					Return(testEntry, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_uuid_format",
			entryID:        "not-a-uuid",
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "entry_not_found",
			entryID: uuid.New().String(),
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					GetByID(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: ledger entry", domain.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := newMovementHandler(t)
			tt.setupMocks(mockService)

			req := httptest.NewRequest("GET", "/api/v1/transactions/"+tt.entryID, nil)
			req.SetPathValue("id", tt.entryID)
			w := httptest.NewRecorder()

			handler.GetMovement(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestMovementHandler_ListMovements(t *testing.T) {
	handler, mockService := newMovementHandler(t)

	entries := []domain.LedgerEntry{*helpers.CreateTestLedgerEntry()}
	mockService.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, params ports.LedgerListParams) (*ports.LedgerListResult, error) {
			assert.Equal(t, "8901234567890", params.Barcode)
			assert.Equal(t, "OUT", params.Direction)
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, 25, params.PageSize)
			return &ports.LedgerListResult{
				Entries:    entries,
				Page:       params.Page,
				PageSize:   params.PageSize,
				TotalCount: 1,
				TotalPages: 1,
			}, nil
		})

	req := httptest.NewRequest("GET",
		"/api/v1/transactions?barcode=8901234567890&type=out&page=2&limit=25", nil)
	w := httptest.NewRecorder()

	handler.ListMovements(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response ports.LedgerListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Entries, 1)
}

func TestMovementHandler_UpdateMovement(t *testing.T) {
	entryID := uuid.New()

	handler, mockService := newMovementHandler(t)
	mockService.EXPECT().
		UpdateEntry(gomock.Any(), entryID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ uuid.UUID, entry *domain.LedgerEntry) error {
			assert.Equal(t, 7, entry.Quantity)
			return nil
		})

	body := `{"barcode":"8901234567890","transaction_type":"OUT","quantity":7}`
	req := httptest.NewRequest("PUT", "/api/v1/transactions/"+entryID.String(), bytes.NewBufferString(body))
	req.SetPathValue("id", entryID.String())
	w := httptest.NewRecorder()

	handler.UpdateMovement(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMovementHandler_DeleteMovement(t *testing.T) {
	entryID := uuid.New()

	tests := []struct {
		name           string
		setupMocks     func(*mocks.MockLedgerService)
		expectedStatus int
	}{
		{
			name: "successfully_deletes_movement",
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					DeleteEntry(gomock.Any(), entryID).
					Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "entry_not_found",
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					DeleteEntry(gomock.Any(), entryID).
					Return(fmt.Errorf("%w: ledger entry", domain.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := newMovementHandler(t)
			tt.setupMocks(mockService)

			req := httptest.NewRequest("DELETE", "/api/v1/transactions/"+entryID.String(), nil)
			req.SetPathValue("id", entryID.String())
			w := httptest.NewRecorder()

			handler.DeleteMovement(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
