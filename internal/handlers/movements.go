// internal/handlers/movements.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	redis_a "github.com/anvikram/stocktrack-be/internal/adapters/redis_adapter"
	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// MovementHandler handles stock movement (transaction) HTTP requests
type MovementHandler struct {
	service ports.LedgerService
	cache   *redis_a.CacheManager
	logger  *slog.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(service ports.LedgerService, cache *redis_a.CacheManager, logger *slog.Logger) *MovementHandler {
	return &MovementHandler{
		service: service,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "movements")),
	}
}

// CreateMovement handles POST /api/v1/transactions
func (h *MovementHandler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry := req.ToDomain()

	if err := h.service.Record(ctx, entry); err != nil {
		h.logger.ErrorContext(ctx, "failed to record movement",
			slog.String("barcode", req.Barcode),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to record transaction")
		return
	}

	h.invalidateCache(r, entry.Barcode)

	respondJSON(h.logger, w, http.StatusCreated, entry)
}

// GetMovement handles GET /api/v1/transactions/{id}
func (h *MovementHandler) GetMovement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	entry, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get movement",
			slog.String("entry_id", idStr),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to retrieve transaction")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, entry)
}

// ListMovements handles GET /api/v1/transactions
func (h *MovementHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := parseLedgerListParams(r)

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list movements",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, result)
}

// UpdateMovement handles PUT /api/v1/transactions/{id}
func (h *MovementHandler) UpdateMovement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry := req.ToDomain()

	if err := h.service.UpdateEntry(ctx, id, entry); err != nil {
		h.logger.ErrorContext(ctx, "failed to update movement",
			slog.String("entry_id", idStr),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to update transaction")
		return
	}

	h.invalidateCache(r, entry.Barcode)

	respondJSON(h.logger, w, http.StatusOK, entry)
}

// DeleteMovement handles DELETE /api/v1/transactions/{id}
func (h *MovementHandler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	if err := h.service.DeleteEntry(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete movement",
			slog.String("entry_id", idStr),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to delete transaction")
		return
	}

	h.invalidateCache(r, "")

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message": "Transaction deleted successfully",
		"id":      idStr,
	})
}

// invalidateCache drops every cached view a ledger write can stale out.
// Failures are logged, never surfaced: the write already committed.
func (h *MovementHandler) invalidateCache(r *http.Request, barcode string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateLedgerCache(r.Context(), barcode); err != nil {
		h.logger.WarnContext(r.Context(), "cache invalidation failed",
			slog.String("error", err.Error()))
	}
}

// parseLedgerListParams parses query parameters shared by the movement and
// sales listings.
func parseLedgerListParams(r *http.Request) ports.LedgerListParams {
	params := ports.LedgerListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	// Parse pagination
	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 500 {
				params.PageSize = 500
			} else {
				params.PageSize = l
			}
		}
	}

	// Parse filters
	params.Barcode = r.URL.Query().Get("barcode")
	params.Recipient = r.URL.Query().Get("recipient")
	params.Search = r.URL.Query().Get("search")
	params.DateFrom = r.URL.Query().Get("date_from")
	params.DateTo = r.URL.Query().Get("date_to")

	if dir := r.URL.Query().Get("type"); dir != "" {
		params.Direction = strings.ToUpper(dir)
	}

	// Parse sorting
	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}

	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// MovementRequest is the request body for creating or updating a movement
type MovementRequest struct {
	Barcode         string `json:"barcode"`
	TransactionType string `json:"transaction_type"`
	Quantity        int    `json:"quantity"`
	RecipientName   string `json:"recipient_name,omitempty"`
	RecipientPhone  string `json:"recipient_phone,omitempty"`
	RecipientPhoto  string `json:"recipient_photo,omitempty"`
	Memo            string `json:"memo,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// ToDomain converts the request to a domain model. Field validation is the
// domain's job; the service rejects bad entries with ErrValidation.
func (r *MovementRequest) ToDomain() *domain.LedgerEntry {
	return &domain.LedgerEntry{
		Barcode:        strings.TrimSpace(r.Barcode),
		Direction:      domain.Direction(strings.ToUpper(strings.TrimSpace(r.TransactionType))),
		Quantity:       r.Quantity,
		RecipientName:  strings.TrimSpace(r.RecipientName),
		RecipientPhone: strings.TrimSpace(r.RecipientPhone),
		RecipientPhoto: r.RecipientPhoto,
		Memo:           r.Memo,
		Notes:          r.Notes,
	}
}
