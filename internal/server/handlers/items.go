package handlers

import (
	"context"

	"github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
	"github.com/maruel/colldb/internal/storage"
)

// ItemHandler handles item requests nested under collections.
type ItemHandler struct {
	collectionService *storage.CollectionService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(collectionService *storage.CollectionService) *ItemHandler {
	return &ItemHandler{collectionService: collectionService}
}

// AddItemRequest is a request to add an item to a collection.
type AddItemRequest struct {
	CollectionID      string            `path:"id"`
	Title             string            `json:"title"`
	Tags              []string          `json:"tags"`
	CustomFieldValues map[string]string `json:"customFieldValues"`
}

// AddItem appends a new item to a collection owned by the caller.
func (h *ItemHandler) AddItem(ctx context.Context, req AddItemRequest) (*models.Item, error) {
	user, ok := models.UserFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized()
	}
	return h.collectionService.AddItem(req.CollectionID, user.ID, req.Title, req.Tags, req.CustomFieldValues)
}

// GetItemRequest identifies an item by collection and item id.
type GetItemRequest struct {
	CollectionID string `path:"id"`
	ItemID       string `path:"itemId"`
}

// GetItem fetches any item by its id pair. Public, no ownership check.
func (h *ItemHandler) GetItem(ctx context.Context, req GetItemRequest) (*models.Item, error) {
	return h.collectionService.GetItemPublic(req.CollectionID, req.ItemID)
}

// UpdateItemRequest is a partial item update; empty fields are left unchanged.
type UpdateItemRequest struct {
	CollectionID string `path:"id"`
	ItemID       string `path:"itemId"`
	storage.ItemUpdate
}

// UpdateItem applies a partial update to an item of a collection owned by the caller.
func (h *ItemHandler) UpdateItem(ctx context.Context, req UpdateItemRequest) (*models.Item, error) {
	user, ok := models.UserFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized()
	}
	return h.collectionService.UpdateItem(req.CollectionID, user.ID, req.ItemID, req.ItemUpdate)
}

// DeleteItemRequest identifies the item to delete.
type DeleteItemRequest struct {
	CollectionID string `path:"id"`
	ItemID       string `path:"itemId"`
}

// DeleteItem removes an item from a collection owned by the caller.
func (h *ItemHandler) DeleteItem(ctx context.Context, req DeleteItemRequest) (*MessageResponse, error) {
	user, ok := models.UserFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized()
	}
	if err := h.collectionService.RemoveItem(req.CollectionID, user.ID, req.ItemID); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: "Item deleted"}, nil
}
