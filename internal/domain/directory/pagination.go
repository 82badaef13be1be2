package directory

import (
	"fmt"
	"strings"
)

const (
	// DefaultPageSize is used when a request does not ask for a size.
	DefaultPageSize = 30
	// MaxPageSize caps every page request.
	MaxPageSize = 100
)

// Collection names one of the paginated collections.
type Collection string

const (
	CollectionOrganisations Collection = "organisations"
	CollectionAryaSamajs    Collection = "arya_samajs"
	CollectionFamilies      Collection = "families"
	CollectionMembers       Collection = "members"
	CollectionActivities    Collection = "activities"
)

// Collections lists every collection in a stable order.
var Collections = []Collection{
	CollectionOrganisations,
	CollectionAryaSamajs,
	CollectionFamilies,
	CollectionMembers,
	CollectionActivities,
}

// ParseCollection accepts a collection name, case-insensitively, with either
// '-' or '_' as word separator.
func ParseCollection(s string) (Collection, error) {
	norm := Collection(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, c := range Collections {
		if c == norm {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Filter narrows a browse request. Empty fields match everything.
type Filter struct {
	State        string       `json:"state,omitempty"`
	District     string       `json:"district,omitempty"`
	Vidhansabha  string       `json:"vidhansabha,omitempty"`
	ActivityType ActivityType `json:"activity_type,omitempty"`
}

// IsZero reports whether f matches everything.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// PageRequest asks for up to First items after the opaque cursor After.
// An empty After asks for the first page.
type PageRequest struct {
	First  int
	After  string
	Filter Filter
}

// Normalize clamps First into [1, MaxPageSize], defaulting to DefaultPageSize.
func (r PageRequest) Normalize() PageRequest {
	switch {
	case r.First <= 0:
		r.First = DefaultPageSize
	case r.First > MaxPageSize:
		r.First = MaxPageSize
	}
	return r
}

// Page is one slice of a collection in (created_at, id) descending order.
// EndCursor is empty when HasNextPage is false.
type Page[T any] struct {
	Items       []T
	HasNextPage bool
	EndCursor   string
}
