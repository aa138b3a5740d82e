package handlers

import (
	"context"

	"github.com/maruel/colldb/internal/storage"
)

// SearchHandler handles search requests.
type SearchHandler struct {
	searchService *storage.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService *storage.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchRequest carries the search query.
type SearchRequest struct {
	Query string `query:"q"`
}

// Search runs a case-insensitive substring search across all collections.
func (h *SearchHandler) Search(ctx context.Context, req SearchRequest) (*[]storage.SearchResult, error) {
	results, err := h.searchService.Search(req.Query)
	if err != nil {
		return nil, err
	}
	return &results, nil
}
