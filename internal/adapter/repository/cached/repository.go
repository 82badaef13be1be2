package cached

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"samaj-directory/internal/adapter/cache"
	domain "samaj-directory/internal/domain/directory"
	"samaj-directory/internal/usecase/directory"
)

// loadTimeout bounds a coalesced load. The load outlives any single caller,
// so it cannot use a caller's deadline.
const loadTimeout = 30 * time.Second

// Repository implements directory.Repository[T] with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type Repository[T cache.Keyed] struct {
	dbRepo directory.Repository[T]
	cache  cache.EntityCache[T]
	name   string
	log    *zap.Logger
	group  singleflight.Group
}

// New creates a caching decorator. A nil cache disables caching but keeps
// request coalescing.
func New[T cache.Keyed](dbRepo directory.Repository[T], c cache.EntityCache[T], name string, log *zap.Logger) *Repository[T] {
	return &Repository[T]{
		dbRepo: dbRepo,
		cache:  c,
		name:   name,
		log:    log.With(zap.String("collection", name)),
	}
}

// Create stores the item and primes the cache with it.
func (r *Repository[T]) Create(ctx context.Context, item T) (T, error) {
	created, err := r.dbRepo.Create(ctx, item)
	if err != nil {
		return created, err
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, created); err != nil {
			r.log.Warn("failed to cache created item", zap.String("id", created.Key()), zap.Error(err))
		}
	}
	return created, nil
}

// GetByID retrieves an item by ID using Cache-Aside pattern.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, error) {
	// Try to get from cache first
	if r.cache != nil {
		cachedItem, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
		} else if cachedItem != nil {
			r.log.Debug("item retrieved from cache", zap.String("id", id))
			return *cachedItem, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	key := fmt.Sprintf("%s:%s", r.name, id)
	item, _, err := coalesce(ctx, &r.group, key, func(ctx context.Context) (T, error) {
		// Double-check cache in case another request populated it while we were waiting
		if r.cache != nil {
			cachedItem, err := r.cache.Get(ctx, id)
			if err == nil && cachedItem != nil {
				r.log.Debug("item retrieved from cache after single-flight wait", zap.String("id", id))
				return *cachedItem, nil
			}
		}

		// Only one request hits database
		item, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return item, err
		}

		// Store in cache for future requests
		if r.cache != nil {
			if err := r.cache.Set(ctx, item); err != nil {
				r.log.Warn("failed to cache item", zap.String("id", id), zap.Error(err))
			}
		}
		return item, nil
	})
	return item, err
}

// Delete deletes the item from DB and invalidates the cache.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}

	// Invalidate cache after successful deletion
	if r.cache != nil {
		if err := r.cache.Delete(ctx, id); err != nil {
			r.log.Warn("failed to invalidate cache after delete", zap.String("id", id), zap.Error(err))
		}
	}

	return nil
}

// Count delegates to the DB repository.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	return r.dbRepo.Count(ctx)
}

// List coalesces identical concurrent page loads into one query.
func (r *Repository[T]) List(ctx context.Context, req domain.PageRequest) (domain.Page[T], error) {
	key := fmt.Sprintf("list:%d:%s:%+v", req.First, req.After, req.Filter)
	return r.page(ctx, key, func(ctx context.Context) (domain.Page[T], error) {
		return r.dbRepo.List(ctx, req)
	})
}

// Search coalesces identical concurrent searches into one query.
func (r *Repository[T]) Search(ctx context.Context, term string, req domain.PageRequest) (domain.Page[T], error) {
	key := fmt.Sprintf("search:%d:%s:%q", req.First, req.After, term)
	return r.page(ctx, key, func(ctx context.Context) (domain.Page[T], error) {
		return r.dbRepo.Search(ctx, term, req)
	})
}

func (r *Repository[T]) page(ctx context.Context, key string, load func(context.Context) (domain.Page[T], error)) (domain.Page[T], error) {
	p, shared, err := coalesce(ctx, &r.group, key, load)
	if err != nil {
		return domain.Page[T]{}, err
	}
	if shared {
		r.log.Debug("page load shared", zap.String("key", key))
	}
	return p, nil
}

// coalesce runs load once per key for all concurrent callers. The load keeps
// the first caller's values but not its cancellation, and each caller stops
// waiting when its own ctx ends.
func coalesce[V any](ctx context.Context, g *singleflight.Group, key string, load func(context.Context) (V, error)) (V, bool, error) {
	ch := g.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return load(loadCtx)
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Shared, res.Err
		}
		return res.Val.(V), res.Shared, nil
	}
}

var _ directory.Repository[domain.Family] = (*Repository[domain.Family])(nil)
