package directory

import (
	"encoding/json"

	domain "samaj-directory/internal/domain/directory"
)

// ListPageRequest asks for one page of a collection. A non-blank Query
// searches instead of browsing, and Filter is then ignored.
type ListPageRequest struct {
	Collection domain.Collection
	First      int
	After      string
	Query      string
	Filter     domain.Filter
}

// PageResponse is one page of items in (created_at, id) descending order.
type PageResponse struct {
	Items       []any  `json:"items"`
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor,omitempty"`
}

// GetItemRequest identifies a single item.
type GetItemRequest struct {
	Collection domain.Collection
	ID         string
}

// ItemResponse wraps a single item of any collection.
type ItemResponse struct {
	Item any `json:"item"`
}

// CreateItemRequest carries the JSON body of a new item.
type CreateItemRequest struct {
	Collection domain.Collection
	Payload    json.RawMessage
}

// DeleteItemRequest identifies the item to delete.
type DeleteItemRequest struct {
	Collection domain.Collection
	ID         string
}

// PageSizes bounds the page size accepted from callers.
type PageSizes struct {
	Default int
	Max     int
}

func (p PageSizes) clamp(first int) int {
	if p.Default <= 0 {
		p.Default = domain.DefaultPageSize
	}
	if p.Max <= 0 || p.Max > domain.MaxPageSize {
		p.Max = domain.MaxPageSize
	}
	switch {
	case first <= 0:
		return min(p.Default, p.Max)
	case first > p.Max:
		return p.Max
	}
	return first
}
