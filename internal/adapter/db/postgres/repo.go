package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"samaj-directory/internal/domain/directory"
	apperrors "samaj-directory/pkg/errors"
	"samaj-directory/pkg/security"
)

type keyed interface {
	Key() string
}

type schema interface {
	TableName() string
	cursorKey() (time.Time, string)
}

// mapping binds a domain entity to its table.
type mapping[T keyed, S schema] struct {
	resource      string
	searchColumns []string
	fromDomain    func(item T, id string, createdAt time.Time) S
	toDomain      func(row S) T
	filter        func(tx *gorm.DB, f directory.Filter) *gorm.DB
}

// CollectionRepo stores one collection and pages it by keyset
// (created_at DESC, id DESC).
type CollectionRepo[T keyed, S schema] struct {
	db  *gorm.DB
	log *zap.Logger
	m   mapping[T, S]
}

func newCollectionRepo[T keyed, S schema](db *gorm.DB, log *zap.Logger, m mapping[T, S]) *CollectionRepo[T, S] {
	return &CollectionRepo[T, S]{
		db:  db,
		log: log.With(zap.String("collection", m.resource)),
		m:   m,
	}
}

// Create inserts item with a server-assigned creation time. A missing ID is
// replaced with a new UUID.
func (r *CollectionRepo[T, S]) Create(ctx context.Context, item T) (T, error) {
	id := item.Key()
	if id == "" {
		id = uuid.NewString()
	}
	row := r.m.fromDomain(item, id, time.Now().UTC().Truncate(time.Microsecond))

	res := r.db.WithContext(ctx).Create(&row)
	if res.Error != nil {
		var zero T
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return zero, apperrors.NewAlreadyExistsError(r.m.resource,
				fmt.Sprintf("%s already exists: id=%s", r.m.resource, id))
		}
		r.log.Error("failed to create row", zap.Error(res.Error), zap.String("id", id))
		return zero, fmt.Errorf("failed to create %s: %w", r.m.resource, res.Error)
	}

	r.log.Info("row created", zap.String("id", id))
	return r.m.toDomain(row), nil
}

// GetByID loads one item.
func (r *CollectionRepo[T, S]) GetByID(ctx context.Context, id string) (T, error) {
	var (
		row  S
		zero T
	)
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("row not found", zap.String("id", id))
			return zero, apperrors.NewNotFoundError(r.m.resource,
				fmt.Sprintf("%s not found: id=%s", r.m.resource, id))
		}
		r.log.Error("failed to get row", zap.Error(err), zap.String("id", id))
		return zero, fmt.Errorf("failed to get %s: %w", r.m.resource, err)
	}
	return r.m.toDomain(row), nil
}

// Delete removes one item.
func (r *CollectionRepo[T, S]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(S))
	if res.Error != nil {
		r.log.Error("failed to delete row", zap.Error(res.Error), zap.String("id", id))
		return fmt.Errorf("failed to delete %s: %w", r.m.resource, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError(r.m.resource,
			fmt.Sprintf("%s not found: id=%s", r.m.resource, id))
	}

	r.log.Info("row deleted", zap.String("id", id))
	return nil
}

// Count returns the number of rows in the collection.
func (r *CollectionRepo[T, S]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(new(S)).Count(&n).Error; err != nil {
		r.log.Error("failed to count rows", zap.Error(err))
		return 0, fmt.Errorf("failed to count %s: %w", r.m.resource, err)
	}
	return n, nil
}

// List returns one page of the collection narrowed by req.Filter.
func (r *CollectionRepo[T, S]) List(ctx context.Context, req directory.PageRequest) (directory.Page[T], error) {
	req = req.Normalize()
	tx := r.db.WithContext(ctx).Model(new(S))
	if r.m.filter != nil && !req.Filter.IsZero() {
		tx = r.m.filter(tx, req.Filter)
	}
	return r.page(tx, req, zap.Any("filter", req.Filter))
}

// Search returns one page of items whose search columns contain term,
// ignoring case. A blank term matches everything.
func (r *CollectionRepo[T, S]) Search(ctx context.Context, term string, req directory.PageRequest) (directory.Page[T], error) {
	q, err := security.ValidateSearchQuery(term)
	if err != nil {
		return directory.Page[T]{}, apperrors.NewValidationError("q", err.Error())
	}

	req = req.Normalize()
	tx := r.db.WithContext(ctx).Model(new(S))
	if q != "" && len(r.m.searchColumns) > 0 {
		pattern := security.ContainsPattern(q)
		conds := make([]string, len(r.m.searchColumns))
		args := make([]any, len(r.m.searchColumns))
		for i, col := range r.m.searchColumns {
			conds[i] = fmt.Sprintf(`LOWER(%s) LIKE LOWER(?) ESCAPE '\'`, col)
			args[i] = pattern
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return r.page(tx, req, zap.String("query", q))
}

func (r *CollectionRepo[T, S]) page(tx *gorm.DB, req directory.PageRequest, field zap.Field) (directory.Page[T], error) {
	if req.After != "" {
		at, id, err := decodeCursor(req.After)
		if err != nil {
			return directory.Page[T]{}, err
		}
		tx = tx.Where("(created_at < ? OR (created_at = ? AND id < ?))", at, at, id)
	}

	var rows []S
	if err := tx.Order("created_at DESC").Order("id DESC").Limit(req.First + 1).Find(&rows).Error; err != nil {
		r.log.Error("failed to list rows", zap.Error(err), field, zap.Int("first", req.First))
		return directory.Page[T]{}, fmt.Errorf("failed to list %s: %w", r.m.resource, err)
	}

	var page directory.Page[T]
	if len(rows) > req.First {
		rows = rows[:req.First]
		page.HasNextPage = true
		page.EndCursor = encodeCursor(rows[len(rows)-1].cursorKey())
	}
	page.Items = make([]T, len(rows))
	for i, row := range rows {
		page.Items[i] = r.m.toDomain(row)
	}

	r.log.Debug("page loaded", field, zap.Int("items", len(page.Items)), zap.Bool("has_next_page", page.HasNextPage))
	return page, nil
}
