package client

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	pb "samaj-directory/api/directory/v1"
	domain "samaj-directory/internal/domain/directory"
	"samaj-directory/pkg/logger"
	"samaj-directory/pkg/pagination"
)

// Repository serves one collection as a pagination.Repository.
type Repository[T any] struct {
	client     *Client
	collection domain.Collection
}

var _ pagination.Repository[domain.Member] = (*Repository[domain.Member])(nil)

// NewRepository binds c to collection.
func NewRepository[T any](c *Client, collection domain.Collection) *Repository[T] {
	return &Repository[T]{client: c, collection: collection}
}

// GetItemsPaginated browses the collection. filter may be nil, a
// domain.Filter or a *domain.Filter.
func (r *Repository[T]) GetItemsPaginated(ctx context.Context, pageSize int, cursor string, filter any) <-chan pagination.Result[T] {
	return pagination.Stream(ctx, func(ctx context.Context) pagination.Result[T] {
		f, err := toFilter(filter)
		if err != nil {
			return pagination.Failure[T]{Message: err.Error()}
		}
		req := &pb.PageRequest{
			Collection: string(r.collection),
			First:      pageSizeArg(pageSize),
			After:      cursor,
			Filter:     f,
		}
		return r.fetch(ctx, "ListPage", func(ctx context.Context) (*pb.PageResponse, error) {
			return r.client.api.ListPage(ctx, req)
		})
	})
}

// SearchItemsPaginated runs a search over the collection.
func (r *Repository[T]) SearchItemsPaginated(ctx context.Context, term string, pageSize int, cursor string) <-chan pagination.Result[T] {
	return pagination.Stream(ctx, func(ctx context.Context) pagination.Result[T] {
		req := &pb.PageRequest{
			Collection: string(r.collection),
			First:      pageSizeArg(pageSize),
			After:      cursor,
			Term:       term,
		}
		return r.fetch(ctx, "SearchPage", func(ctx context.Context) (*pb.PageResponse, error) {
			return r.client.api.SearchPage(ctx, req)
		})
	})
}

// pageSizeArg clamps pageSize into the range the server accepts. Zero or
// less asks for the server default.
func pageSizeArg(pageSize int) int32 {
	switch {
	case pageSize <= 0:
		return 0
	case pageSize > domain.MaxPageSize:
		return domain.MaxPageSize
	}
	return int32(pageSize)
}

// GetItem loads a single item by id.
func (r *Repository[T]) GetItem(ctx context.Context, id string) (T, error) {
	var item T
	resp, err := call(ctx, r.client, "GetItem", func(ctx context.Context) (*pb.ItemResponse, error) {
		return r.client.api.GetItem(ctx, &pb.GetItemRequest{Collection: string(r.collection), Id: id})
	})
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(resp.Item, &item); err != nil {
		return item, fmt.Errorf("decode %s item: %w", r.collection, err)
	}
	return item, nil
}

func (r *Repository[T]) fetch(ctx context.Context, method string, fn func(ctx context.Context) (*pb.PageResponse, error)) pagination.Result[T] {
	log := logger.WithContext(ctx, r.client.log).With(
		zap.String("collection", string(r.collection)),
		zap.String("method", method),
	)

	resp, err := call(ctx, r.client, method, fn)
	if err != nil {
		log.Warn("page fetch failed", zap.Error(err))
		return pagination.Failure[T]{Message: Message(err)}
	}

	items := make([]T, 0, len(resp.Items))
	for i, raw := range resp.Items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Error("malformed item in page", zap.Int("index", i), zap.Error(err))
			return pagination.Failure[T]{Message: "malformed response from server"}
		}
		items = append(items, item)
	}

	return pagination.Success[T]{
		Data:        items,
		HasNextPage: resp.HasNextPage,
		EndCursor:   resp.EndCursor,
	}
}

func toFilter(filter any) (*pb.Filter, error) {
	var f domain.Filter
	switch v := filter.(type) {
	case nil:
		return nil, nil
	case domain.Filter:
		f = v
	case *domain.Filter:
		if v == nil {
			return nil, nil
		}
		f = *v
	default:
		return nil, fmt.Errorf("unsupported filter type %T", filter)
	}
	if f.IsZero() {
		return nil, nil
	}
	return &pb.Filter{
		State:        f.State,
		District:     f.District,
		Vidhansabha:  f.Vidhansabha,
		ActivityType: string(f.ActivityType),
	}, nil
}
