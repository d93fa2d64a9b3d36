// internal/handlers/sales.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	redis_a "github.com/anvikram/stocktrack-be/internal/adapters/redis_adapter"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// SalesHandler serves the consolidated sales view and the bulk
// reconciliation endpoint.
type SalesHandler struct {
	sales     ports.SalesService
	reconcile ports.ReconcileService
	cache     *redis_a.CacheManager
	logger    *slog.Logger
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(sales ports.SalesService, reconcile ports.ReconcileService, cache *redis_a.CacheManager, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{
		sales:     sales,
		reconcile: reconcile,
		cache:     cache,
		logger:    logger.With(slog.String("handler", "sales")),
	}
}

// ListSales handles GET /api/v1/sales
func (h *SalesHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := parseLedgerListParams(r)

	groups, err := h.sales.ListSales(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sales",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list sales")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"sales": groups,
		"count": len(groups),
	})
}

// BulkReconcileRequest is the request body for PUT /api/v1/sales/bulk
type BulkReconcileRequest struct {
	Items []ports.ReconcileItem `json:"items"`
}

// BulkReconcile handles PUT /api/v1/sales/bulk
func (h *SalesHandler) BulkReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BulkReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.reconcile.Reconcile(ctx, req.Items)
	if err != nil {
		h.logger.ErrorContext(ctx, "bulk reconcile failed",
			slog.Int("items", len(req.Items)),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to reconcile sales")
		return
	}

	if h.cache != nil && result.Updated+result.Created > 0 {
		if err := h.cache.InvalidateLedgerCache(ctx, ""); err != nil {
			h.logger.WarnContext(ctx, "cache invalidation failed",
				slog.String("error", err.Error()))
		}
	}

	status := http.StatusOK
	if result.Failed > 0 && result.Updated+result.Created == 0 {
		status = http.StatusUnprocessableEntity
	}

	respondJSON(h.logger, w, status, result)
}
