package handlers

import (
	"context"

	"github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
	"github.com/maruel/colldb/internal/storage"
)

// CollectionHandler handles collection CRUD requests.
type CollectionHandler struct {
	collectionService *storage.CollectionService
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(collectionService *storage.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// CreateCollectionRequest is a request to create a collection.
type CreateCollectionRequest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	CustomFields map[string]string `json:"customFields"`
}

// CreateCollection creates a collection owned by the caller.
func (h *CollectionHandler) CreateCollection(ctx context.Context, req CreateCollectionRequest) (*models.Collection, error) {
	user, ok := models.UserFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized()
	}
	return h.collectionService.Create(user.ID, req.Name, req.Description, req.Category, req.CustomFields)
}

// ListCollectionsRequest is the (empty) request to list all collections.
type ListCollectionsRequest struct{}

// ListCollections returns every collection with full nested detail. Public.
func (h *CollectionHandler) ListCollections(ctx context.Context, _ ListCollectionsRequest) (*[]models.Collection, error) {
	cols, err := h.collectionService.ListAll()
	if err != nil {
		return nil, err
	}
	return &cols, nil
}

// ListMyCollectionsRequest is the (empty) request to list the caller's collections.
type ListMyCollectionsRequest struct{}

// ListMyCollections returns the collections owned by the caller.
func (h *CollectionHandler) ListMyCollections(ctx context.Context, _ ListMyCollectionsRequest) (*[]models.Collection, error) {
	user, ok := models.UserFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized()
	}
	cols, err := h.collectionService.ListByOwner(user.ID)
	if err != nil {
		return nil, err
	}
	return &cols, nil
}

// UpdateCollectionRequest is a partial update; empty fields are left unchanged.
type UpdateCollectionRequest struct {
	ID string `path:"id"`
	storage.CollectionUpdate
}

// UpdateCollection applies a partial update to a collection owned by the caller.
func (h *CollectionHandler) UpdateCollection(ctx context.Context, req UpdateCollectionRequest) (*models.Collection, error) {
	user, ok := models.UserFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized()
	}
	return h.collectionService.UpdateCollection(req.ID, user.ID, req.CollectionUpdate)
}

// DeleteCollectionRequest identifies the collection to delete.
type DeleteCollectionRequest struct {
	ID string `path:"id"`
}

// MessageResponse is a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeleteCollection deletes a collection owned by the caller.
func (h *CollectionHandler) DeleteCollection(ctx context.Context, req DeleteCollectionRequest) (*MessageResponse, error) {
	user, ok := models.UserFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized()
	}
	if err := h.collectionService.DeleteCollection(req.ID, user.ID); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: "Collection deleted"}, nil
}
