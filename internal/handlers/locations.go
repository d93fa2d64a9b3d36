// internal/handlers/locations.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// LocationHandler handles storage location HTTP requests, including the
// ordered find-photo collections that show where stock physically sits.
type LocationHandler struct {
	locations ports.LocationRepository
	photos    ports.PhotoStore
	tracker   ports.ReferenceTracker
	logger    *slog.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations ports.LocationRepository, photos ports.PhotoStore, tracker ports.ReferenceTracker, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		locations: locations,
		photos:    photos,
		tracker:   tracker,
		logger:    logger.With(slog.String("handler", "locations")),
	}
}

// LocationRequest is the request body for creating or updating a location
type LocationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateLocation handles POST /api/v1/locations
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	location := &domain.Location{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := location.Validate(); err != nil {
		respondDomainError(h.logger, w, err, "Invalid location")
		return
	}
	location.PrepareForStorage()

	if err := h.locations.Save(ctx, location); err != nil {
		h.logger.ErrorContext(ctx, "failed to create location",
			slog.String("name", location.Name),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to create location")
		return
	}

	respondJSON(h.logger, w, http.StatusCreated, location)
}

// GetLocation handles GET /api/v1/locations/{id}
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid location ID format")
		return
	}

	location, err := h.locations.FindByID(ctx, id)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve location")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, location)
}

// ListLocations handles GET /api/v1/locations
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	locations, err := h.locations.List(ctx, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list locations",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list locations")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"locations": locations,
		"count":     len(locations),
	})
}

// UpdateLocation handles PUT /api/v1/locations/{id}
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid location ID format")
		return
	}

	var req LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := h.locations.FindByID(ctx, id)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve location")
		return
	}

	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	existing.Description = req.Description

	if err := existing.Validate(); err != nil {
		respondDomainError(h.logger, w, err, "Invalid location")
		return
	}

	if err := h.locations.Update(ctx, existing); err != nil {
		h.logger.ErrorContext(ctx, "failed to update location",
			slog.String("location_id", id.String()),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to update location")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, existing)
}

// DeleteLocation handles DELETE /api/v1/locations/{id}. The photo rows go
// with the location; the files go only if nothing else references them.
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid location ID format")
		return
	}

	existing, err := h.locations.FindByID(ctx, id)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve location")
		return
	}

	if err := h.locations.Delete(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete location",
			slog.String("location_id", id.String()),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to delete location")
		return
	}

	for _, photo := range existing.Photos {
		if _, err := h.tracker.SafeDelete(ctx, photo.PhotoPath, uuid.Nil); err != nil {
			h.logger.WarnContext(ctx, "find-photo cleanup failed",
				slog.String("path", photo.PhotoPath),
				slog.String("error", err.Error()))
		}
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message": "Location deleted successfully",
		"id":      id.String(),
	})
}

// FindPhotoRequest is the request body for adding a find-photo
type FindPhotoRequest struct {
	Photo string `json:"photo"`
}

// AddFindPhoto handles POST /api/v1/locations/{id}/photos
func (h *LocationHandler) AddFindPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid location ID format")
		return
	}

	var req FindPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !domain.IsEncodedPayload(req.Photo) {
		respondError(h.logger, w, http.StatusBadRequest, "photo must be a base64 data payload")
		return
	}

	location, err := h.locations.FindByID(ctx, id)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to retrieve location")
		return
	}

	path, err := h.photos.Persist(ctx, domain.CategoryFind, location.Name, req.Photo)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to process photo")
		return
	}

	photo := &domain.LocationPhoto{
		ID:         uuid.New(),
		LocationID: id,
		PhotoPath:  path,
	}
	if err := h.locations.AddPhoto(ctx, photo); err != nil {
		if removeErr := h.photos.Remove(ctx, path); removeErr != nil {
			h.logger.WarnContext(ctx, "orphaned find-photo left for sweep",
				slog.String("path", path),
				slog.String("error", removeErr.Error()))
		}
		h.logger.ErrorContext(ctx, "failed to add find-photo",
			slog.String("location_id", id.String()),
			slog.String("error", err.Error()))
		respondDomainError(h.logger, w, err, "Failed to add photo")
		return
	}

	respondJSON(h.logger, w, http.StatusCreated, photo)
}

// DeleteFindPhoto handles DELETE /api/v1/locations/{id}/photos/{photoId}
func (h *LocationHandler) DeleteFindPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photoID, err := uuid.Parse(r.PathValue("photoId"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid photo ID format")
		return
	}

	path, err := h.locations.DeletePhoto(ctx, photoID)
	if err != nil {
		respondDomainError(h.logger, w, err, "Failed to delete photo")
		return
	}

	if path != "" {
		if _, err := h.tracker.SafeDelete(ctx, path, uuid.Nil); err != nil {
			h.logger.WarnContext(ctx, "find-photo cleanup failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message": "Photo deleted successfully",
		"id":      photoID.String(),
	})
}
