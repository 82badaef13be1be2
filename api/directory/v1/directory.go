// Package directoryv1 defines the directory.v1 gRPC API. Messages travel as
// JSON through the codec in pkg/grpcjson.
package directoryv1

import "encoding/json"

// Filter narrows a ListPage call. Empty fields match everything.
type Filter struct {
	State        string `json:"state,omitempty"`
	District     string `json:"district,omitempty"`
	Vidhansabha  string `json:"vidhansabha,omitempty"`
	ActivityType string `json:"activity_type,omitempty"`
}

// PageRequest asks for one page of a collection. Term is only read by
// SearchPage; Filter only by ListPage.
type PageRequest struct {
	Collection string  `json:"collection"`
	First      int32   `json:"first,omitempty"`
	After      string  `json:"after,omitempty"`
	Term       string  `json:"term,omitempty"`
	Filter     *Filter `json:"filter,omitempty"`
}

func (x *PageRequest) GetCollection() string {
	if x != nil {
		return x.Collection
	}
	return ""
}

func (x *PageRequest) GetFirst() int32 {
	if x != nil {
		return x.First
	}
	return 0
}

func (x *PageRequest) GetAfter() string {
	if x != nil {
		return x.After
	}
	return ""
}

func (x *PageRequest) GetTerm() string {
	if x != nil {
		return x.Term
	}
	return ""
}

func (x *PageRequest) GetFilter() *Filter {
	if x != nil {
		return x.Filter
	}
	return nil
}

// PageResponse carries the items of one page as raw JSON objects.
type PageResponse struct {
	Items       []json.RawMessage `json:"items"`
	HasNextPage bool              `json:"has_next_page"`
	EndCursor   string            `json:"end_cursor,omitempty"`
}

type GetItemRequest struct {
	Collection string `json:"collection"`
	Id         string `json:"id"`
}

type ItemResponse struct {
	Item json.RawMessage `json:"item"`
}

type CountsRequest struct{}

type CountsResponse struct {
	Families int64 `json:"families"`
	Members  int64 `json:"members"`
}
