package directoryv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"samaj-directory/pkg/grpcjson"
)

const (
	Directory_ListPage_FullMethodName   = "/directory.v1.Directory/ListPage"
	Directory_SearchPage_FullMethodName = "/directory.v1.Directory/SearchPage"
	Directory_GetItem_FullMethodName    = "/directory.v1.Directory/GetItem"
	Directory_Counts_FullMethodName     = "/directory.v1.Directory/Counts"
)

// DirectoryClient is the client API for the Directory service.
type DirectoryClient interface {
	ListPage(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (*PageResponse, error)
	SearchPage(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (*PageResponse, error)
	GetItem(ctx context.Context, in *GetItemRequest, opts ...grpc.CallOption) (*ItemResponse, error)
	Counts(ctx context.Context, in *CountsRequest, opts ...grpc.CallOption) (*CountsResponse, error)
}

type directoryClient struct {
	cc grpc.ClientConnInterface
}

// NewDirectoryClient returns a client that always sends with the JSON codec.
func NewDirectoryClient(cc grpc.ClientConnInterface) DirectoryClient {
	return &directoryClient{cc}
}

func (c *directoryClient) ListPage(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (*PageResponse, error) {
	out := new(PageResponse)
	if err := c.cc.Invoke(ctx, Directory_ListPage_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *directoryClient) SearchPage(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (*PageResponse, error) {
	out := new(PageResponse)
	if err := c.cc.Invoke(ctx, Directory_SearchPage_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *directoryClient) GetItem(ctx context.Context, in *GetItemRequest, opts ...grpc.CallOption) (*ItemResponse, error) {
	out := new(ItemResponse)
	if err := c.cc.Invoke(ctx, Directory_GetItem_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *directoryClient) Counts(ctx context.Context, in *CountsRequest, opts ...grpc.CallOption) (*CountsResponse, error) {
	out := new(CountsResponse)
	if err := c.cc.Invoke(ctx, Directory_Counts_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(grpcjson.Name)}, opts...)
}

// DirectoryServer is the server API for the Directory service.
// Implementations must embed UnimplementedDirectoryServer.
type DirectoryServer interface {
	ListPage(context.Context, *PageRequest) (*PageResponse, error)
	SearchPage(context.Context, *PageRequest) (*PageResponse, error)
	GetItem(context.Context, *GetItemRequest) (*ItemResponse, error)
	Counts(context.Context, *CountsRequest) (*CountsResponse, error)
	mustEmbedUnimplementedDirectoryServer()
}

// UnimplementedDirectoryServer answers every method with codes.Unimplemented.
type UnimplementedDirectoryServer struct{}

func (UnimplementedDirectoryServer) ListPage(context.Context, *PageRequest) (*PageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListPage not implemented")
}
func (UnimplementedDirectoryServer) SearchPage(context.Context, *PageRequest) (*PageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SearchPage not implemented")
}
func (UnimplementedDirectoryServer) GetItem(context.Context, *GetItemRequest) (*ItemResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetItem not implemented")
}
func (UnimplementedDirectoryServer) Counts(context.Context, *CountsRequest) (*CountsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Counts not implemented")
}
func (UnimplementedDirectoryServer) mustEmbedUnimplementedDirectoryServer() {}

// RegisterDirectoryServer registers srv on s.
func RegisterDirectoryServer(s grpc.ServiceRegistrar, srv DirectoryServer) {
	s.RegisterService(&Directory_ServiceDesc, srv)
}

func _Directory_ListPage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).ListPage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Directory_ListPage_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).ListPage(ctx, req.(*PageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Directory_SearchPage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).SearchPage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Directory_SearchPage_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).SearchPage(ctx, req.(*PageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Directory_GetItem_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetItemRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).GetItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Directory_GetItem_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).GetItem(ctx, req.(*GetItemRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Directory_Counts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CountsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).Counts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Directory_Counts_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).Counts(ctx, req.(*CountsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Directory_ServiceDesc is the grpc.ServiceDesc for the Directory service.
var Directory_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "directory.v1.Directory",
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPage", Handler: _Directory_ListPage_Handler},
		{MethodName: "SearchPage", Handler: _Directory_SearchPage_Handler},
		{MethodName: "GetItem", Handler: _Directory_GetItem_Handler},
		{MethodName: "Counts", Handler: _Directory_Counts_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "directory/v1/directory.go",
}
