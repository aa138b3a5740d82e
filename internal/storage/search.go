package storage

import (
	"math/rand/v2"
	"strings"

	"github.com/maruel/colldb/internal/models"
)

// SearchService provides substring search across collections, items and comments.
type SearchService struct {
	collections *CollectionService
}

// NewSearchService creates a new search service.
func NewSearchService(collections *CollectionService) *SearchService {
	return &SearchService{collections: collections}
}

// SearchResult is an item annotated with the collection it belongs to.
type SearchResult struct {
	models.Item
	CollectionID string `json:"collectionId"`
}

// Search scans every item of every collection and returns, in encounter
// order, the items whose title or comment text contains the query
// (case-insensitive). A collection whose own name matches additionally
// contributes one uniformly random item, with no deduplication against the
// per-item matches. No ranking or pagination.
func (s *SearchService) Search(query string) ([]SearchResult, error) {
	cols, err := s.collections.ListAll()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	results := []SearchResult{}

	for _, col := range cols {
		for _, item := range col.Items {
			if itemMatches(item, query) {
				results = append(results, SearchResult{Item: item, CollectionID: col.ID})
			}
		}

		if strings.Contains(strings.ToLower(col.Name), query) && len(col.Items) > 0 {
			pick := col.Items[rand.IntN(len(col.Items))]
			results = append(results, SearchResult{Item: pick, CollectionID: col.ID})
		}
	}

	return results, nil
}

func itemMatches(item models.Item, query string) bool {
	if strings.Contains(strings.ToLower(item.Title), query) {
		return true
	}
	for _, c := range item.Comments {
		if text := c.Text(); text != "" && strings.Contains(strings.ToLower(text), query) {
			return true
		}
	}
	return false
}
