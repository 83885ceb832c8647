package server

import (
	"fmt"
	"net/http"
	"time"

	"user-fixture-service/internal/adapter/gateway"
	grpcadapter "user-fixture-service/internal/adapter/grpc"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const swaggerJSONPath = "/swagger/user.swagger.json"

// SetupHTTPGateway creates the HTTP gateway server and the client connection
// it uses to reach the gRPC server at grpcTarget.
func SetupHTTPGateway(grpcTarget, httpAddr, swaggerFile string, l *zap.Logger) (*http.Server, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(grpcTarget, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gateway client: %w", err)
	}

	mux, err := gateway.NewMux(grpcadapter.NewUserServiceClient(conn), l)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to register gateway: %w", err)
	}

	// Main mux serves both the API and Swagger UI
	httpMux := http.NewServeMux()

	httpMux.HandleFunc(swaggerJSONPath, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, swaggerFile)
	})
	httpMux.HandleFunc("/swagger/", httpSwagger.Handler(
		httpSwagger.URL(swaggerJSONPath),
	))

	httpMux.Handle("/", mux)

	l.Info("REST gateway configured",
		zap.String("address", httpAddr),
		zap.String("grpc_target", grpcTarget),
		zap.String("swagger", swaggerJSONPath),
	)

	return &http.Server{
		Addr:              httpAddr,
		Handler:           httpMux,
		ReadHeaderTimeout: 2 * time.Second,
	}, conn, nil
}
