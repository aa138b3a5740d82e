package storage

import (
	"maps"
	"path/filepath"

	"github.com/google/uuid"
	apierrors "github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
)

// CollectionService handles collections and their nested items and
// comments over the collections table. Like UserService, every operation
// is an independent load-modify-save cycle.
type CollectionService struct {
	table *Table[models.Collection]
}

// NewCollectionService creates a new collection service storing its table under dataDir.
func NewCollectionService(dataDir string) (*CollectionService, error) {
	table, err := NewTable[models.Collection](filepath.Join(dataDir, "db", "collections.json"))
	if err != nil {
		return nil, err
	}
	return &CollectionService{table: table}, nil
}

// CollectionUpdate carries a partial update for a collection. Zero values
// ("" for strings, nil for the map) mean "leave the field unchanged"; a
// non-nil empty map does overwrite.
type CollectionUpdate struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	CustomFields map[string]string `json:"customFields"`
}

// ItemUpdate carries a partial update for an item, with the same
// zero-value-means-unchanged semantics as CollectionUpdate.
type ItemUpdate struct {
	Title             string            `json:"title"`
	Tags              []string          `json:"tags"`
	CustomFieldValues map[string]string `json:"customFieldValues"`
}

// findOwned returns a pointer into cols for the collection matching both id
// and owner. A collection that exists but belongs to someone else is
// indistinguishable from one that does not exist.
func findOwned(cols []models.Collection, id, ownerID string) *models.Collection {
	for i := range cols {
		if cols[i].ID == id && cols[i].UserID == ownerID {
			return &cols[i]
		}
	}
	return nil
}

// Create makes a new empty collection owned by ownerID.
func (s *CollectionService) Create(ownerID, name, description, category string, customFields map[string]string) (*models.Collection, error) {
	cols, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	col := models.Collection{
		ID:           uuid.NewString(),
		UserID:       ownerID,
		Name:         name,
		Description:  description,
		Category:     category,
		CustomFields: customFields,
		Items:        []models.Item{},
	}

	if err := s.table.Save(append(cols, col)); err != nil {
		return nil, apierrors.Storage(err)
	}
	return &col, nil
}

// AddItem appends a new item to an owned collection.
func (s *CollectionService) AddItem(collectionID, ownerID, title string, tags []string, customFieldValues map[string]string) (*models.Item, error) {
	cols, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	col := findOwned(cols, collectionID, ownerID)
	if col == nil {
		return nil, apierrors.CollectionNotFound()
	}

	item := models.Item{
		ID:                uuid.NewString(),
		Title:             title,
		Tags:              tags,
		CustomFieldValues: customFieldValues,
		Comments:          []models.Comment{},
	}
	col.Items = append(col.Items, item)

	if err := s.table.Save(cols); err != nil {
		return nil, apierrors.Storage(err)
	}
	return &item, nil
}

// RemoveItem deletes an item from an owned collection. A missing item is
// reported distinctly from a missing (or foreign) collection.
func (s *CollectionService) RemoveItem(collectionID, ownerID, itemID string) error {
	cols, err := s.table.Load()
	if err != nil {
		return apierrors.Storage(err)
	}

	col := findOwned(cols, collectionID, ownerID)
	if col == nil {
		return apierrors.CollectionNotFound()
	}

	kept := col.Items[:0:0]
	for _, it := range col.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(col.Items) {
		return apierrors.ItemNotFound()
	}
	col.Items = kept

	if err := s.table.Save(cols); err != nil {
		return apierrors.Storage(err)
	}
	return nil
}

// UpdateCollection applies a partial update to an owned collection and
// returns the updated collection.
func (s *CollectionService) UpdateCollection(collectionID, ownerID string, upd CollectionUpdate) (*models.Collection, error) {
	cols, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	col := findOwned(cols, collectionID, ownerID)
	if col == nil {
		return nil, apierrors.CollectionNotFound()
	}

	if upd.Name != "" {
		col.Name = upd.Name
	}
	if upd.Description != "" {
		col.Description = upd.Description
	}
	if upd.Category != "" {
		col.Category = upd.Category
	}
	if upd.CustomFields != nil {
		col.CustomFields = upd.CustomFields
	}

	if err := s.table.Save(cols); err != nil {
		return nil, apierrors.Storage(err)
	}
	out := *col
	return &out, nil
}

// UpdateItem applies a partial update to an item of an owned collection and
// returns the updated item.
func (s *CollectionService) UpdateItem(collectionID, ownerID, itemID string, upd ItemUpdate) (*models.Item, error) {
	cols, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	col := findOwned(cols, collectionID, ownerID)
	if col == nil {
		return nil, apierrors.CollectionNotFound()
	}

	var item *models.Item
	for i := range col.Items {
		if col.Items[i].ID == itemID {
			item = &col.Items[i]
			break
		}
	}
	if item == nil {
		return nil, apierrors.ItemNotFound()
	}

	if upd.Title != "" {
		item.Title = upd.Title
	}
	if upd.Tags != nil {
		item.Tags = upd.Tags
	}
	if upd.CustomFieldValues != nil {
		item.CustomFieldValues = upd.CustomFieldValues
	}

	if err := s.table.Save(cols); err != nil {
		return nil, apierrors.Storage(err)
	}
	out := *item
	return &out, nil
}

// DeleteCollection removes an owned collection entirely.
func (s *CollectionService) DeleteCollection(collectionID, ownerID string) error {
	cols, err := s.table.Load()
	if err != nil {
		return apierrors.Storage(err)
	}

	kept := cols[:0:0]
	for _, c := range cols {
		if c.ID != collectionID || c.UserID != ownerID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(cols) {
		return apierrors.CollectionNotFound()
	}

	if err := s.table.Save(kept); err != nil {
		return apierrors.Storage(err)
	}
	return nil
}

// GetItemPublic fetches an item without any ownership check.
func (s *CollectionService) GetItemPublic(collectionID, itemID string) (*models.Item, error) {
	cols, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	for i := range cols {
		if cols[i].ID != collectionID {
			continue
		}
		for _, it := range cols[i].Items {
			if it.ID == itemID {
				return &it, nil
			}
		}
		return nil, apierrors.ItemNotFound()
	}
	return nil, apierrors.CollectionMissing()
}

// ListByOwner returns the collections owned by ownerID.
func (s *CollectionService) ListByOwner(ownerID string) ([]models.Collection, error) {
	cols, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	out := make([]models.Collection, 0)
	for _, c := range cols {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListAll returns every collection, full detail included.
func (s *CollectionService) ListAll() ([]models.Collection, error) {
	cols, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}
	return cols, nil
}

// AppendComment appends a comment to an item, keeping every
// client-supplied field and injecting the author display name and the
// server-side timestamp on top, and returns the updated item. No
// ownership check: any authenticated user may comment on any item.
func (s *CollectionService) AppendComment(collectionID, itemID string, comment models.Comment, authorName string) (*models.Item, error) {
	cols, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	var col *models.Collection
	for i := range cols {
		if cols[i].ID == collectionID {
			col = &cols[i]
			break
		}
	}
	if col == nil {
		return nil, apierrors.CollectionMissing()
	}

	var item *models.Item
	for i := range col.Items {
		if col.Items[i].ID == itemID {
			item = &col.Items[i]
			break
		}
	}
	if item == nil {
		return nil, apierrors.ItemNotFound()
	}

	stored := make(models.Comment, len(comment)+2)
	maps.Copy(stored, comment)
	stored["user"] = authorName
	stored["createdAt"] = models.Now()
	item.Comments = append(item.Comments, stored)

	if err := s.table.Save(cols); err != nil {
		return nil, apierrors.Storage(err)
	}
	out := *item
	return &out, nil
}
