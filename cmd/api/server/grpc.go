package server

import (
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pb "samaj-directory/api/directory/v1"
	grpcadapter "samaj-directory/internal/adapter/grpc"
	"samaj-directory/internal/adapter/grpc/middleware"
	"samaj-directory/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(directoryServer *grpcadapter.DirectoryServer, rateLimiter *middleware.RateLimiter, l *zap.Logger) *grpc.Server {
	grpc_prometheus.EnableHandlingTimeHistogram()

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			logger.AccessLogInterceptor(l),
			grpc_prometheus.UnaryServerInterceptor,
			rateLimiter.UnaryInterceptor(),
		),
	)
	pb.RegisterDirectoryServer(grpcServer, directoryServer)

	hs := health.NewServer()
	hs.SetServingStatus(pb.Directory_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	grpc_prometheus.Register(grpcServer)
	return grpcServer
}
