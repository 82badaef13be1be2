package directory

import (
	"context"

	domain "samaj-directory/internal/domain/directory"
)

// Usecase defines the directory operations exposed to the transports.
type Usecase interface {
	ListPage(ctx context.Context, in ListPageRequest) (*PageResponse, error)
	GetItem(ctx context.Context, in GetItemRequest) (*ItemResponse, error)
	CreateItem(ctx context.Context, in CreateItemRequest) (*ItemResponse, error)
	DeleteItem(ctx context.Context, in DeleteItemRequest) error
	Counts(ctx context.Context) (*domain.Counts, error)
}

// Repository is the storage contract for one collection.
type Repository[T any] interface {
	Create(ctx context.Context, item T) (T, error)
	GetByID(ctx context.Context, id string) (T, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, req domain.PageRequest) (domain.Page[T], error)
	Search(ctx context.Context, term string, req domain.PageRequest) (domain.Page[T], error)
}

// CountsCache stores the directory totals. A nil result from Get is a miss.
type CountsCache interface {
	Get(ctx context.Context) (*domain.Counts, error)
	Set(ctx context.Context, counts domain.Counts) error
	Invalidate(ctx context.Context) error
}

// Repositories bundles one repository per collection.
type Repositories struct {
	Organisations Repository[domain.Organisation]
	AryaSamajs    Repository[domain.AryaSamaj]
	Members       Repository[domain.Member]
	Families      Repository[domain.Family]
	Activities    Repository[domain.Activity]
}

var _ Usecase = (*Service)(nil)
