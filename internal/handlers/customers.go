// internal/handlers/customers.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// CustomerHandler handles recipient record HTTP requests
type CustomerHandler struct {
	customers ports.CustomerRepository
	photos    ports.PhotoStore
	tracker   ports.ReferenceTracker
	logger    *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customers ports.CustomerRepository, photos ports.PhotoStore, tracker ports.ReferenceTracker, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		photos:    photos,
		tracker:   tracker,
		logger:    logger.With(slog.String("handler", "customers")),
	}
}

// CustomerRequest is the request body for creating or updating a customer
type CustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Photo string `json:"photo,omitempty"`
}

// CreateCustomer handles POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer := &domain.Customer{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
	}
	if err := customer.Validate(); err != nil {
		respondDomainError(h.logger, w, err, "Invalid customer")
		return
	}
	customer.PrepareForStorage()

	photoPath, err := h.persistPhoto(ctx, customer.Phone, req.Photo)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to process customer photo")
		return
	}
	customer.PhotoPath = photoPath

	if err := h.customers.Save(ctx, customer); err != nil {
		h.discardPhoto(ctx, photoPath)
		h.logger.ErrorContext(ctx, "failed to create customer",
			slog.String("phone", customer.Phone),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to create customer")
		return
	}

	respondJSON(h.logger, w, http.StatusCreated, customer)
}

// GetCustomer handles GET /api/v1/customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	customer, err := h.customers.FindByID(ctx, id)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve customer")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, customer)
}

// ListCustomers handles GET /api/v1/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customers, err := h.customers.List(ctx, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list customers",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list customers")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"customers": customers,
		"count":     len(customers),
	})
}

// UpdateCustomer handles PUT /api/v1/customers/{id}. A replaced photo is
// force-superseded across the recipient's ledger history: one photo per
// identity.
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := h.customers.FindByID(ctx, id)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve customer")
		return
	}

	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		existing.Phone = strings.TrimSpace(req.Phone)
	}
	if err := existing.Validate(); err != nil {
		respondDomainError(h.logger, w, err, "Invalid customer")
		return
	}

	oldPhoto := existing.PhotoPath
	newPhoto, err := h.persistPhoto(ctx, existing.Phone, req.Photo)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to process customer photo")
		return
	}
	if newPhoto != "" {
		existing.PhotoPath = newPhoto
	}

	if err := h.customers.Update(ctx, existing); err != nil {
		h.discardPhoto(ctx, newPhoto)
		h.logger.ErrorContext(ctx, "failed to update customer",
			slog.String("customer_id", id.String()),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to update customer")
		return
	}

	if newPhoto != "" && oldPhoto != newPhoto {
		if err := h.tracker.ForceSupersede(ctx, existing.Name, existing.Phone, newPhoto); err != nil {
			h.logger.WarnContext(ctx, "photo supersede failed",
				slog.String("customer_id", id.String()),
				slog.String("error", err.Error()))
		}
	}

	respondJSON(h.logger, w, http.StatusOK, existing)
}

// DeleteCustomer handles DELETE /api/v1/customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	existing, err := h.customers.FindByID(ctx, id)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve customer")
		return
	}

	if err := h.customers.Delete(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete customer",
			slog.String("customer_id", id.String()),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to delete customer")
		return
	}

	if existing.PhotoPath != "" {
		if _, err := h.tracker.SafeDelete(ctx, existing.PhotoPath, uuid.Nil); err != nil {
			h.logger.WarnContext(ctx, "customer photo cleanup failed",
				slog.String("path", existing.PhotoPath),
				slog.String("error", err.Error()))
		}
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message": "Customer deleted successfully",
		"id":      id.String(),
	})
}

func (h *CustomerHandler) persistPhoto(ctx context.Context, phone, photo string) (string, error) {
	if !domain.IsEncodedPayload(photo) {
		return "", nil
	}
	return h.photos.Persist(ctx, domain.CategoryCustomer, phone, photo)
}

func (h *CustomerHandler) discardPhoto(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := h.photos.Remove(ctx, path); err != nil {
		h.logger.WarnContext(ctx, "orphaned customer photo left for sweep",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
