// Package http provides HTTP handlers for the document store API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GophRoster/internal/models"
	"github.com/atinyakov/GophRoster/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes bounds create and patch payloads.
const maxBodyBytes = 1 << 20

// DocumentService defines the document operations required by the
// DocumentHandler.
type DocumentService interface {
	// ListAll returns every document of the collection.
	ListAll(ctx context.Context, collection string) ([]models.Document, error)
	// Create stores a new document and returns its id.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	// UpdateFields merges fields into the document with the given id.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document with the given id.
	Delete(ctx context.Context, collection, id string) error
}

// DocumentHandler handles HTTP requests for documents of a collection.
type DocumentHandler struct {
	// DocumentService performs the underlying store operations.
	DocumentService DocumentService
	// Logger receives internal errors. Nil disables logging.
	Logger *zap.Logger
}

// CreateResponse is the JSON body returned by Create.
type CreateResponse struct {
	ID string `json:"id"`
}

// List handles GET /api/collections/{collection}/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.DocumentService.ListAll(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Create handles POST /api/collections/{collection}/documents.
// The body is a JSON object of fields; the response carries the new id.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	id, err := h.DocumentService.Create(r.Context(), chi.URLParam(r, "collection"), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateResponse{ID: id})
}

// Update handles PATCH /api/collections/{collection}/documents/{id}.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	err := h.DocumentService.UpdateFields(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/collections/{collection}/documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.DocumentService.Delete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var fields map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&fields); err != nil || fields == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return nil, false
	}
	return fields, true
}

func (h *DocumentHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidCollection), errors.Is(err, service.ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		if h.Logger != nil {
			h.Logger.Error("document store failure", zap.Error(err))
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
