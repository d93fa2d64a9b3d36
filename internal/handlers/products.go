// internal/handlers/products.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// ProductHandler handles product catalog HTTP requests. Product images flow
// through the shared photo asset store and are only ever removed through
// the reference tracker.
type ProductHandler struct {
	products ports.ProductRepository
	photos   ports.PhotoStore
	tracker  ports.ReferenceTracker
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products ports.ProductRepository, photos ports.PhotoStore, tracker ports.ReferenceTracker, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		photos:   photos,
		tracker:  tracker,
		logger:   logger.With(slog.String("handler", "products")),
	}
}

// ProductRequest is the request body for creating or updating a product
type ProductRequest struct {
	Barcode  string          `json:"barcode"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"mrp"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product := &domain.Product{
		Barcode:  strings.TrimSpace(req.Barcode),
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	if err := product.Validate(); err != nil {
		respondDomainError(h.logger, w, err, "Invalid product")
		return
	}
	product.PrepareForStorage()

	imagePath, err := h.persistImage(ctx, product.Barcode, req.Image)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to process product image")
		return
	}
	product.ImagePath = imagePath

	if err := h.products.Save(ctx, product); err != nil {
		h.discardImage(ctx, imagePath)
		h.logger.ErrorContext(ctx, "failed to create product",
			slog.String("barcode", product.Barcode),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to create product")
		return
	}

	h.logger.InfoContext(ctx, "product created",
		slog.String("barcode", product.Barcode),
		slog.String("name", product.Name))

	respondJSON(h.logger, w, http.StatusCreated, product)
}

// GetProduct handles GET /api/v1/products/{barcode}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	barcode := r.PathValue("barcode")

	product, err := h.products.FindByBarcode(ctx, barcode)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve product")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, product)
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.products.List(ctx, h.parseListParams(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, result)
}

// SearchProducts handles GET /api/v1/products/search/{query}
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)
	params.Search = r.PathValue("query")

	result, err := h.products.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "product search failed",
			slog.String("query", params.Search),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to search products")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, result)
}

// UpdateProduct handles PUT /api/v1/products/{barcode}. Quantity is owned by
// the ledger and never writable here.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	barcode := r.PathValue("barcode")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := h.products.FindByBarcode(ctx, barcode)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve product")
		return
	}

	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	if !req.Price.IsZero() {
		existing.Price = req.Price
	}
	if err := existing.Validate(); err != nil {
		respondDomainError(h.logger, w, err, "Invalid product")
		return
	}

	oldImage := existing.ImagePath
	newImage, err := h.persistImage(ctx, existing.Barcode, req.Image)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to process product image")
		return
	}
	if newImage != "" {
		existing.ImagePath = newImage
	}

	if err := h.products.Update(ctx, existing); err != nil {
		h.discardImage(ctx, newImage)
		h.logger.ErrorContext(ctx, "failed to update product",
			slog.String("barcode", barcode),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to update product")
		return
	}

	if newImage != "" && oldImage != "" && oldImage != newImage {
		if _, err := h.tracker.SafeDelete(ctx, oldImage, uuid.Nil); err != nil {
			h.logger.WarnContext(ctx, "displaced product image cleanup failed",
				slog.String("path", oldImage),
				slog.String("error", err.Error()))
		}
	}

	respondJSON(h.logger, w, http.StatusOK, existing)
}

// DeleteProduct handles DELETE /api/v1/products/{barcode}. Ledger history
// for the barcode survives; only the catalog row and its image go.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	barcode := r.PathValue("barcode")

	existing, err := h.products.FindByBarcode(ctx, barcode)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve product")
		return
	}

	if err := h.products.Delete(ctx, barcode); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete product",
			slog.String("barcode", barcode),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to delete product")
		return
	}

	if existing.ImagePath != "" {
		if _, err := h.tracker.SafeDelete(ctx, existing.ImagePath, uuid.Nil); err != nil {
			h.logger.WarnContext(ctx, "product image cleanup failed",
				slog.String("path", existing.ImagePath),
				slog.String("error", err.Error()))
		}
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message": "Product deleted successfully",
		"barcode": barcode,
	})
}

func (h *ProductHandler) parseListParams(r *http.Request) ports.ProductListParams {
	params := ports.ProductListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

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

	params.Search = r.URL.Query().Get("search")

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}

	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// persistImage writes an inbound encoded payload under product_photos and
// returns its relative path. Plain paths and empty payloads pass through
// untouched.
func (h *ProductHandler) persistImage(ctx context.Context, barcode, image string) (string, error) {
	if !domain.IsEncodedPayload(image) {
		return "", nil
	}
	return h.photos.Persist(ctx, domain.CategoryProduct, barcode, image)
}

func (h *ProductHandler) discardImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := h.photos.Remove(ctx, path); err != nil {
		h.logger.WarnContext(ctx, "orphaned product image left for sweep",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
