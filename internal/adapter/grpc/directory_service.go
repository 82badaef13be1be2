package grpc

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	pb "samaj-directory/api/directory/v1"
	domain "samaj-directory/internal/domain/directory"
	"samaj-directory/internal/usecase/directory"
	apperrors "samaj-directory/pkg/errors"
	"samaj-directory/pkg/logger"
)

// PageObserver records served pages. *metrics.Metrics implements it.
type PageObserver interface {
	ObservePage(collection string, search bool, items int)
}

// DirectoryServer implements the gRPC directory service
type DirectoryServer struct {
	pb.UnimplementedDirectoryServer
	uc    directory.Usecase
	pages PageObserver
	log   *zap.Logger
}

// NewDirectoryServer creates a new gRPC directory service server. pages may be nil.
func NewDirectoryServer(uc directory.Usecase, pages PageObserver, log *zap.Logger) *DirectoryServer {
	return &DirectoryServer{uc: uc, pages: pages, log: log}
}

// ListPage handles gRPC ListPage request
func (s *DirectoryServer) ListPage(ctx context.Context, req *pb.PageRequest) (*pb.PageResponse, error) {
	return s.page(ctx, req, false)
}

// SearchPage handles gRPC SearchPage request. A blank term browses.
func (s *DirectoryServer) SearchPage(ctx context.Context, req *pb.PageRequest) (*pb.PageResponse, error) {
	return s.page(ctx, req, true)
}

func (s *DirectoryServer) page(ctx context.Context, req *pb.PageRequest, search bool) (*pb.PageResponse, error) {
	coll, err := domain.ParseCollection(req.GetCollection())
	if err != nil {
		return nil, apperrors.ToGRPC(apperrors.NewValidationError("collection", err.Error()))
	}
	ctx = logger.WithCollection(ctx, string(coll))

	in := directory.ListPageRequest{
		Collection: coll,
		First:      int(req.GetFirst()),
		After:      req.GetAfter(),
	}
	if search {
		in.Query = req.GetTerm()
	} else if f := req.GetFilter(); f != nil {
		in.Filter = domain.Filter{
			State:        f.State,
			District:     f.District,
			Vidhansabha:  f.Vidhansabha,
			ActivityType: domain.ActivityType(f.ActivityType),
		}
	}

	resp, err := s.uc.ListPage(ctx, in)
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("page request failed", zap.Bool("search", search), zap.Error(err))
		return nil, apperrors.ToGRPC(err)
	}

	items := make([]json.RawMessage, len(resp.Items))
	for i, it := range resp.Items {
		b, err := json.Marshal(it)
		if err != nil {
			return nil, apperrors.ToGRPC(apperrors.NewInternalError("failed to encode item", err))
		}
		items[i] = b
	}

	if s.pages != nil {
		s.pages.ObservePage(string(coll), search && in.Query != "", len(items))
	}

	return &pb.PageResponse{
		Items:       items,
		HasNextPage: resp.HasNextPage,
		EndCursor:   resp.EndCursor,
	}, nil
}

// GetItem handles gRPC GetItem request
func (s *DirectoryServer) GetItem(ctx context.Context, req *pb.GetItemRequest) (*pb.ItemResponse, error) {
	coll, err := domain.ParseCollection(req.Collection)
	if err != nil {
		return nil, apperrors.ToGRPC(apperrors.NewValidationError("collection", err.Error()))
	}

	resp, err := s.uc.GetItem(logger.WithCollection(ctx, string(coll)), directory.GetItemRequest{Collection: coll, ID: req.Id})
	if err != nil {
		return nil, apperrors.ToGRPC(err)
	}

	b, err := json.Marshal(resp.Item)
	if err != nil {
		return nil, apperrors.ToGRPC(apperrors.NewInternalError("failed to encode item", err))
	}
	return &pb.ItemResponse{Item: b}, nil
}

// Counts handles gRPC Counts request
func (s *DirectoryServer) Counts(ctx context.Context, _ *pb.CountsRequest) (*pb.CountsResponse, error) {
	counts, err := s.uc.Counts(ctx)
	if err != nil {
		return nil, apperrors.ToGRPC(err)
	}
	return &pb.CountsResponse{Families: counts.Families, Members: counts.Members}, nil
}
