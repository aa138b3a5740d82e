package storage

import (
	"encoding/json"
	"os"
	"reflect"
	"sync"
	"testing"

	apierrors "github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
)

func setupCollectionService(t *testing.T) *CollectionService {
	t.Helper()
	service, err := NewCollectionService(t.TempDir())
	if err != nil {
		t.Fatalf("NewCollectionService failed: %v", err)
	}
	return service
}

func TestCollectionCreateAndList(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "My stamps", "hobby", map[string]string{"year": "number"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if col.ID == "" {
		t.Error("Expected a generated ID")
	}
	if len(col.Items) != 0 {
		t.Error("Expected an empty item list")
	}

	mine, err := service.ListByOwner("u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != col.ID {
		t.Errorf("ListByOwner mismatch: %+v", mine)
	}

	other, err := service.ListByOwner("u2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no collections for u2, got %d", len(other))
	}
}

func TestCollectionOwnershipIsolation(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	// A foreign collection and a missing collection must be observationally
	// identical failures.
	_, errForeign := service.AddItem(col.ID, "u2", "Blue Mauritius", nil, nil)
	_, errMissing := service.AddItem("no-such-id", "u2", "Blue Mauritius", nil, nil)
	if errForeign == nil || errMissing == nil {
		t.Fatal("Expected both AddItem calls to fail")
	}
	if errCode(t, errForeign) != apierrors.ErrCollectionNotFound {
		t.Errorf("Expected COLLECTION_NOT_FOUND, got %s", errCode(t, errForeign))
	}
	if errForeign.Error() != errMissing.Error() || errCode(t, errForeign) != errCode(t, errMissing) {
		t.Errorf("Foreign and missing collections must be indistinguishable: %q vs %q", errForeign, errMissing)
	}

	// Nothing was persisted by the failed attempts.
	cols, err := service.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(cols[0].Items) != 0 {
		t.Error("Failed AddItem must not modify the collection")
	}
}

func TestCollectionAddAndRemoveItem(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	item, err := service.AddItem(col.ID, "u1", "Alpha stamps", []string{"rare"}, map[string]string{"year": "1901"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if item.ID == "" || len(item.Comments) != 0 {
		t.Errorf("Unexpected item: %+v", item)
	}

	if err := service.RemoveItem(col.ID, "u1", "no-such-item"); errCode(t, err) != apierrors.ErrItemNotFound {
		t.Error("Expected ITEM_NOT_FOUND for unknown item")
	}
	if err := service.RemoveItem(col.ID, "u2", item.ID); errCode(t, err) != apierrors.ErrCollectionNotFound {
		t.Error("Expected merged COLLECTION_NOT_FOUND for foreign owner")
	}

	if err := service.RemoveItem(col.ID, "u1", item.ID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	cols, err := service.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(cols[0].Items) != 0 {
		t.Error("Item not removed")
	}
}

func TestCollectionPartialUpdateKeepsEmptyFields(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "old description", "hobby", map[string]string{"year": "number"})
	if err != nil {
		t.Fatal(err)
	}

	// Empty name means "leave unchanged"; only description is overwritten.
	updated, err := service.UpdateCollection(col.ID, "u1", CollectionUpdate{Name: "", Description: "new"})
	if err != nil {
		t.Fatalf("UpdateCollection failed: %v", err)
	}
	if updated.Name != "Stamps" {
		t.Errorf("Empty name must not overwrite: got %q", updated.Name)
	}
	if updated.Description != "new" {
		t.Errorf("Expected description to change: got %q", updated.Description)
	}
	if updated.Category != "hobby" {
		t.Errorf("Untouched field changed: got %q", updated.Category)
	}

	// A nil map leaves custom fields alone; a non-nil one overwrites.
	updated, err = service.UpdateCollection(col.ID, "u1", CollectionUpdate{CustomFields: map[string]string{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.CustomFields) != 0 {
		t.Errorf("Supplied empty map must overwrite: got %v", updated.CustomFields)
	}

	_, err = service.UpdateCollection(col.ID, "u2", CollectionUpdate{Name: "hijack"})
	if errCode(t, err) != apierrors.ErrCollectionNotFound {
		t.Error("Expected merged COLLECTION_NOT_FOUND for foreign owner")
	}
}

func TestItemPartialUpdate(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	item, err := service.AddItem(col.ID, "u1", "Alpha", []string{"rare"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := service.UpdateItem(col.ID, "u1", item.ID, ItemUpdate{Title: "Beta"})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if updated.Title != "Beta" {
		t.Errorf("Expected title Beta, got %q", updated.Title)
	}
	if !reflect.DeepEqual(updated.Tags, []string{"rare"}) {
		t.Errorf("Nil tags must not overwrite: got %v", updated.Tags)
	}

	if _, err := service.UpdateItem(col.ID, "u1", "missing", ItemUpdate{}); errCode(t, err) != apierrors.ErrItemNotFound {
		t.Error("Expected ITEM_NOT_FOUND")
	}
}

func TestCollectionDelete(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := service.DeleteCollection(col.ID, "u2"); errCode(t, err) != apierrors.ErrCollectionNotFound {
		t.Error("Expected merged COLLECTION_NOT_FOUND for foreign owner")
	}
	if err := service.DeleteCollection(col.ID, "u1"); err != nil {
		t.Fatalf("DeleteCollection failed: %v", err)
	}
	cols, err := service.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 0 {
		t.Errorf("Expected empty table, got %d collections", len(cols))
	}
}

func TestGetItemPublicSkipsOwnershipCheck(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	item, err := service.AddItem(col.ID, "u1", "Alpha", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := service.GetItemPublic(col.ID, item.ID)
	if err != nil {
		t.Fatalf("GetItemPublic failed: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("Expected item %s, got %s", item.ID, got.ID)
	}

	if _, err := service.GetItemPublic("missing", item.ID); errCode(t, err) != apierrors.ErrCollectionNotFound {
		t.Error("Expected COLLECTION_NOT_FOUND")
	}
	if _, err := service.GetItemPublic(col.ID, "missing"); errCode(t, err) != apierrors.ErrItemNotFound {
		t.Error("Expected ITEM_NOT_FOUND")
	}
}

func TestAppendCommentInjectsAuthorAndTimestamp(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	item, err := service.AddItem(col.ID, "u1", "Alpha", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := service.AppendComment(col.ID, item.ID, models.Comment{"text": "rare mint"}, "Alice")
	if err != nil {
		t.Fatalf("AppendComment failed: %v", err)
	}
	if len(got.Comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(got.Comments))
	}
	c := got.Comments[0]
	if c.Text() != "rare mint" || c["user"] != "Alice" {
		t.Errorf("Unexpected comment: %+v", c)
	}
	if c["createdAt"] == "" || c["createdAt"] == nil {
		t.Error("Expected a server-side timestamp")
	}

	// Appending is public within authenticated users: no ownership check.
	if _, err := service.AppendComment(col.ID, item.ID, models.Comment{"text": "me too"}, "Bob"); err != nil {
		t.Errorf("AppendComment by non-owner failed: %v", err)
	}

	if _, err := service.AppendComment("missing", item.ID, nil, "A"); errCode(t, err) != apierrors.ErrCollectionNotFound {
		t.Error("Expected COLLECTION_NOT_FOUND")
	}
	if _, err := service.AppendComment(col.ID, "missing", nil, "A"); errCode(t, err) != apierrors.ErrItemNotFound {
		t.Error("Expected ITEM_NOT_FOUND")
	}
}

func TestAppendCommentKeepsClientFields(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	item, err := service.AddItem(col.ID, "u1", "Alpha", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Fields beyond "text" survive the round trip untouched; the server
	// only adds user and createdAt.
	sent := models.Comment{"text": "rare", "rating": 5, "pinned": true}
	got, err := service.AppendComment(col.ID, item.ID, sent, "Alice")
	if err != nil {
		t.Fatalf("AppendComment failed: %v", err)
	}
	c := got.Comments[0]
	if c["rating"] != 5 || c["pinned"] != true {
		t.Errorf("Client fields were dropped: %+v", c)
	}
	if c["user"] != "Alice" || c["createdAt"] == nil {
		t.Errorf("Server fields missing: %+v", c)
	}
	if _, ok := sent["user"]; ok {
		t.Error("AppendComment must not mutate the caller's comment")
	}
}

func TestListAllIsIdempotent(t *testing.T) {
	service := setupCollectionService(t)

	if _, err := service.Create("u1", "Stamps", "", "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := service.Create("u2", "Coins", "", "", nil); err != nil {
		t.Fatal(err)
	}

	first, err := service.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	second, err := service.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Two ListAll calls without mutations must return identical results")
	}
}

// Two interleaved update cycles may lose one writer's change; the only
// guarantee is that the table file stays a well-formed JSON array.
func TestConcurrentUpdatesKeepTableWellFormed(t *testing.T) {
	service := setupCollectionService(t)

	col, err := service.Create("u1", "Stamps", "old", "hobby", nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = service.UpdateCollection(col.ID, "u1", CollectionUpdate{Description: "from writer A"})
		}()
		go func() {
			defer wg.Done()
			_, _ = service.UpdateCollection(col.ID, "u1", CollectionUpdate{Category: "from writer B"})
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(service.table.Path())
	if err != nil {
		t.Fatal(err)
	}
	var cols []models.Collection
	if err := json.Unmarshal(data, &cols); err != nil {
		t.Fatalf("Table file is malformed after concurrent updates: %v", err)
	}
	if len(cols) != 1 {
		t.Errorf("Expected 1 collection, got %d", len(cols))
	}
}
