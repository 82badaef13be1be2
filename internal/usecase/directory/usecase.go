package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "samaj-directory/internal/domain/directory"
	apperrors "samaj-directory/pkg/errors"
)

// collection is the type-erased view of one entityService.
type collection interface {
	list(ctx context.Context, req domain.PageRequest, query string) (*PageResponse, error)
	get(ctx context.Context, id string) (any, error)
	create(ctx context.Context, payload json.RawMessage) (any, error)
	delete(ctx context.Context, id string) error
}

// Service implements Usecase on top of one repository per collection.
type Service struct {
	collections map[domain.Collection]collection
	families    Repository[domain.Family]
	members     Repository[domain.Member]
	counts      CountsCache
	sizes       PageSizes
	log         *zap.Logger
}

// New creates the directory usecase. counts may be nil, which disables
// caching of the totals.
func New(repos Repositories, counts CountsCache, sizes PageSizes, log *zap.Logger) *Service {
	v := validator.New()
	s := &Service{
		families: repos.Families,
		members:  repos.Members,
		counts:   counts,
		sizes:    sizes,
		log:      log,
	}

	affectsCounts := func(ctx context.Context) {
		if s.counts == nil {
			return
		}
		if err := s.counts.Invalidate(ctx); err != nil {
			s.log.Warn("failed to invalidate counts cache", zap.Error(err))
		}
	}

	s.collections = map[domain.Collection]collection{
		domain.CollectionOrganisations: &entityService[domain.Organisation]{
			name: domain.CollectionOrganisations, repo: repos.Organisations, validate: v, log: log,
		},
		domain.CollectionAryaSamajs: &entityService[domain.AryaSamaj]{
			name: domain.CollectionAryaSamajs, repo: repos.AryaSamajs, validate: v, log: log,
		},
		domain.CollectionMembers: &entityService[domain.Member]{
			name: domain.CollectionMembers, repo: repos.Members, validate: v, log: log, onChange: affectsCounts,
		},
		domain.CollectionFamilies: &entityService[domain.Family]{
			name: domain.CollectionFamilies, repo: repos.Families, validate: v, log: log, onChange: affectsCounts,
		},
		domain.CollectionActivities: &entityService[domain.Activity]{
			name: domain.CollectionActivities, repo: repos.Activities, validate: v, log: log, check: checkActivity,
		},
	}
	return s
}

func (s *Service) collection(c domain.Collection) (collection, error) {
	coll, ok := s.collections[c]
	if !ok {
		return nil, apperrors.NewValidationError("collection", fmt.Sprintf("unknown collection %q", c))
	}
	return coll, nil
}

// ListPage browses or searches one collection.
func (s *Service) ListPage(ctx context.Context, in ListPageRequest) (*PageResponse, error) {
	coll, err := s.collection(in.Collection)
	if err != nil {
		return nil, err
	}
	if in.Filter.ActivityType != "" && !in.Filter.ActivityType.Valid() {
		return nil, apperrors.NewValidationError("type", fmt.Sprintf("unknown activity type %q", in.Filter.ActivityType))
	}

	req := domain.PageRequest{First: s.sizes.clamp(in.First), After: in.After, Filter: in.Filter}
	s.log.Debug("listing page",
		zap.String("collection", string(in.Collection)),
		zap.String("query", in.Query),
		zap.Int("first", req.First),
		zap.Bool("continued", in.After != ""),
	)
	return coll.list(ctx, req, strings.TrimSpace(in.Query))
}

// GetItem returns one item.
func (s *Service) GetItem(ctx context.Context, in GetItemRequest) (*ItemResponse, error) {
	coll, err := s.collection(in.Collection)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ID) == "" {
		return nil, apperrors.NewValidationError("id", "id is required")
	}
	item, err := coll.get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return &ItemResponse{Item: item}, nil
}

// CreateItem validates the payload and stores it. The server assigns the ID
// and the creation time.
func (s *Service) CreateItem(ctx context.Context, in CreateItemRequest) (*ItemResponse, error) {
	coll, err := s.collection(in.Collection)
	if err != nil {
		return nil, err
	}
	item, err := coll.create(ctx, in.Payload)
	if err != nil {
		return nil, err
	}
	return &ItemResponse{Item: item}, nil
}

// DeleteItem removes one item.
func (s *Service) DeleteItem(ctx context.Context, in DeleteItemRequest) error {
	coll, err := s.collection(in.Collection)
	if err != nil {
		return err
	}
	if strings.TrimSpace(in.ID) == "" {
		return apperrors.NewValidationError("id", "id is required")
	}
	return coll.delete(ctx, in.ID)
}

// Counts returns the family and member totals, served from cache when possible.
func (s *Service) Counts(ctx context.Context) (*domain.Counts, error) {
	if s.counts != nil {
		cached, err := s.counts.Get(ctx)
		if err != nil {
			s.log.Warn("counts cache get error, falling back to database", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.RefreshCounts(ctx)
}

// RefreshCounts recomputes the totals and stores them in the cache.
func (s *Service) RefreshCounts(ctx context.Context) (*domain.Counts, error) {
	families, err := s.families.Count(ctx)
	if err != nil {
		s.log.Error("failed to count families", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to count families", err)
	}
	members, err := s.members.Count(ctx)
	if err != nil {
		s.log.Error("failed to count members", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to count members", err)
	}

	counts := domain.Counts{Families: families, Members: members}
	if s.counts != nil {
		if err := s.counts.Set(ctx, counts); err != nil {
			s.log.Warn("failed to cache counts", zap.Error(err))
		}
	}
	return &counts, nil
}

// entityService adapts a typed repository to the collection interface.
type entityService[T interface{ Key() string }] struct {
	name     domain.Collection
	repo     Repository[T]
	validate *validator.Validate
	check    func(T) error
	onChange func(ctx context.Context)
	log      *zap.Logger
}

func (e *entityService[T]) list(ctx context.Context, req domain.PageRequest, query string) (*PageResponse, error) {
	var (
		page domain.Page[T]
		err  error
	)
	if query != "" {
		page, err = e.repo.Search(ctx, query, req)
	} else {
		page, err = e.repo.List(ctx, req)
	}
	if err != nil {
		return nil, e.wrap(err, "failed to list items")
	}

	items := make([]any, len(page.Items))
	for i, it := range page.Items {
		items[i] = it
	}
	return &PageResponse{Items: items, HasNextPage: page.HasNextPage, EndCursor: page.EndCursor}, nil
}

func (e *entityService[T]) get(ctx context.Context, id string) (any, error) {
	item, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, e.wrap(err, "failed to get item")
	}
	return item, nil
}

func (e *entityService[T]) create(ctx context.Context, payload json.RawMessage) (any, error) {
	var item T
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&item); err != nil {
		e.log.Warn("decode failed", zap.String("collection", string(e.name)), zap.Error(err))
		return nil, apperrors.NewValidationError("body", "malformed JSON body")
	}
	if item.Key() != "" {
		return nil, apperrors.NewValidationError("id", "id is assigned by the server")
	}
	if err := e.validate.Struct(item); err != nil {
		e.log.Warn("validate failed", zap.String("collection", string(e.name)), zap.Error(err))
		return nil, formatValidationError(err)
	}
	if e.check != nil {
		if err := e.check(item); err != nil {
			return nil, err
		}
	}

	created, err := e.repo.Create(ctx, item)
	if err != nil {
		return nil, e.wrap(err, "failed to create item")
	}
	e.log.Info("item created", zap.String("collection", string(e.name)), zap.String("id", created.Key()))
	if e.onChange != nil {
		e.onChange(ctx)
	}
	return created, nil
}

func (e *entityService[T]) delete(ctx context.Context, id string) error {
	if err := e.repo.Delete(ctx, id); err != nil {
		return e.wrap(err, "failed to delete item")
	}
	e.log.Info("item deleted", zap.String("collection", string(e.name)), zap.String("id", id))
	if e.onChange != nil {
		e.onChange(ctx)
	}
	return nil
}

// wrap passes typed errors through and hides everything else behind an
// InternalError.
func (e *entityService[T]) wrap(err error, msg string) error {
	var (
		ve *apperrors.ValidationError
		nf *apperrors.NotFoundError
		ae *apperrors.AlreadyExistsError
		ue *apperrors.UnavailableError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &nf), errors.As(err, &ae), errors.As(err, &ue):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	e.log.Error(msg, zap.String("collection", string(e.name)), zap.Error(err))
	return apperrors.NewInternalError(msg, err)
}

func checkActivity(a domain.Activity) error {
	if !a.StartsAt.IsZero() && !a.EndsAt.IsZero() && a.EndsAt.Before(a.StartsAt) {
		return apperrors.NewValidationError("ends_at", "ends_at must not be before starts_at")
	}
	return nil
}

// formatValidationError converts validator.ValidationErrors into a human-readable error.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewValidationError("", err.Error())
	}

	var (
		messages []string
		field    string
	)
	for _, e := range validationErrors {
		if field == "" {
			field = e.Field()
		}
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "url":
			messages = append(messages, fmt.Sprintf("%s must be a valid URL", e.Field()))
		case "uuid":
			messages = append(messages, fmt.Sprintf("%s must be a valid UUID", e.Field()))
		case "numeric":
			messages = append(messages, fmt.Sprintf("%s must contain only digits", e.Field()))
		case "len":
			messages = append(messages, fmt.Sprintf("%s must be exactly %s characters", e.Field(), e.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	if len(validationErrors) > 1 {
		field = ""
	}
	return apperrors.NewValidationError(field, strings.Join(messages, ", "))
}
