package server

import (
	"net/http"
	"time"

	ginhandler "user-fixture-service/internal/adapter/gin/handler"
	ginrouter "user-fixture-service/internal/adapter/gin/router"
	"user-fixture-service/pkg/ratelimit"

	"go.uber.org/zap"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handler *ginhandler.UserHandler,
	limiter *ratelimit.Limiter,
	serviceName string,
	ginAddr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, limiter, serviceName, l)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
