// Package pagination holds the client-side building blocks of a cursor-paged list:
// the state snapshot, the result stream type and the repository capability.
package pagination

// Keyed is implemented by list items that carry a stable primary key.
// Items with equal keys are considered duplicates when pages are merged.
type Keyed interface {
	Key() string
}

// State is an immutable snapshot of a paged list.
//
// At most one of IsInitialLoading, IsLoadingNextPage and IsSearching is true.
// A non-empty Error implies none of them is.
type State[T any] struct {
	Items             []T    `json:"items"`
	IsInitialLoading  bool   `json:"is_initial_loading"`
	IsLoadingNextPage bool   `json:"is_loading_next_page"`
	IsSearching       bool   `json:"is_searching"`
	HasNextPage       bool   `json:"has_next_page"`
	EndCursor         string `json:"end_cursor,omitempty"`
	HasReachedEnd     bool   `json:"has_reached_end"`
	Error             string `json:"error,omitempty"`
	ShowRetryButton   bool   `json:"show_retry_button"`
	CurrentSearchTerm string `json:"current_search_term,omitempty"`
}

// IsLoading reports whether any fetch is outstanding.
func (s State[T]) IsLoading() bool {
	return s.IsInitialLoading || s.IsLoadingNextPage || s.IsSearching
}

// Clone returns a copy whose Items slice does not alias the receiver's.
func (s State[T]) Clone() State[T] {
	out := s
	if s.Items != nil {
		out.Items = make([]T, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}

// MergeUnique appends next to existing and drops every item whose key was
// already seen, keeping the first occurrence and the original order.
func MergeUnique[T Keyed](existing, next []T) []T {
	out := make([]T, 0, len(existing)+len(next))
	seen := make(map[string]struct{}, len(existing)+len(next))
	for _, batch := range [][]T{existing, next} {
		for _, item := range batch {
			k := item.Key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// CalculatePageSize picks a page size for a viewport width given in
// density-independent pixels.
func CalculatePageSize(widthDp int) int {
	switch {
	case widthDp < 600:
		return 15
	case widthDp < 840:
		return 25
	default:
		return 35
	}
}
