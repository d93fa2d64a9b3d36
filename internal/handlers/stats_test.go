// internal/handlers/stats_test.go
package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anvikram/stocktrack-be/internal/core/ports"
	"github.com/anvikram/stocktrack-be/internal/handlers"
	"github.com/anvikram/stocktrack-be/test/helpers"
	"github.com/anvikram/stocktrack-be/test/mocks"
)

// passthroughGetOrSet runs the fetch function and copies its result into
// dest, mimicking a cache miss.
func passthroughGetOrSet(cache *mocks.MockCacheRepository) {
	cache.EXPECT().
		GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, _ string, dest interface{}, fetch func() (interface{}, error), _ time.Duration) error {
			value, err := fetch()
			if err != nil {
				return err
			}
			data, err := json.Marshal(value)
			if err != nil {
				return err
			}
			return json.Unmarshal(data, dest)
		})
}

func TestStatsHandler_GetStats(t *testing.T) {
	t.Run("returns_summary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStats := mocks.NewMockStatsRepository(ctrl)
		mockCache := mocks.NewMockCacheRepository(ctrl)

		passthroughGetOrSet(mockCache)
		mockStats.EXPECT().
			Summary(gomock.Any()).
			Return(&ports.StatsSummary{
				TotalProducts:    12,
				TotalQuantity:    340,
				TransactionCount: 87,
				LowStockCount:    3,
			}, nil)

		handler := handlers.NewStatsHandler(mockStats, mockCache, helpers.TestLogger())

		req := httptest.NewRequest("GET", "/api/v1/stats", nil)
		w := httptest.NewRecorder()

		handler.GetStats(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var summary ports.StatsSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, int64(12), summary.TotalProducts)
		assert.Equal(t, int64(340), summary.TotalQuantity)
		assert.Equal(t, int64(3), summary.LowStockCount)
	})

	t.Run("repository_error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStats := mocks.NewMockStatsRepository(ctrl)
		mockCache := mocks.NewMockCacheRepository(ctrl)

		passthroughGetOrSet(mockCache)
		mockStats.EXPECT().
			Summary(gomock.Any()).
			Return(nil, errors.New("database connection failed"))

		handler := handlers.NewStatsHandler(mockStats, mockCache, helpers.TestLogger())

		req := httptest.NewRequest("GET", "/api/v1/stats", nil)
		w := httptest.NewRecorder()

		handler.GetStats(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
