package server

import (
	grpcadapter "user-fixture-service/internal/adapter/grpc"
	"user-fixture-service/internal/adapter/grpc/middleware"
	"user-fixture-service/internal/usecase/user"
	"user-fixture-service/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(userUC user.Usecase, l *zap.Logger, rateLimiter *middleware.RateLimiter) *grpc.Server {
	// Request ID first so later interceptors log with it
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			logger.AccessLogInterceptor(l),
			rateLimiter.UnaryInterceptor(),
		),
	)
	grpcadapter.Register(grpcServer, grpcadapter.NewUserServiceServer(userUC, l))

	return grpcServer
}
